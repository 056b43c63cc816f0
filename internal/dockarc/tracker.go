// Package dockarc holds the only state in this system that must survive
// across requests, to avoid losing the moment a vessel actually docked.
// Per route, per slot, it remembers the previous snapshot's {atDock,
// dockStartTime, dockStartIsSynthetic} and uses that memory to decide
// the current lane's dock-start instant and dock-arc fraction.
package dockarc

import (
	"sync"
	"time"

	"github.com/abw750/ferryAPI3/internal/models"
)

// arcTTL bounds how long a lane's elapsed-at-dock fraction keeps rising
// before saturating: dockArcFraction = min(1, elapsedSeconds / 3600).
const arcTTL = time.Hour

type key struct {
	routeID int
	slot    models.Slot
}

type memory struct {
	atDock        bool
	dockStartTime *time.Time
	synthetic     bool
}

// Tracker is the process-wide, mutex-guarded dock memory.
type Tracker struct {
	mu    sync.Mutex
	byKey map[key]memory
}

// New builds an empty Tracker.
func New() *Tracker {
	return &Tracker{byKey: make(map[key]memory)}
}

// Update mutates lane in place, filling DockStartTime,
// DockStartIsSynthetic, and DockArcFraction, and records the new
// memory for next time.
//
// skipArcSynthesis covers a lane whose AtDock was forced true by the
// Vessel Fuser's stale-snap rule (stale and past its ETA): whether the
// dock arc should start accumulating in that case is left undecided,
// so this tracker does not invent a dock-start instant — it leaves
// DockStartTime nil and waits for the next live observation.
func (t *Tracker) Update(routeID int, lane *models.Lane, now time.Time, skipArcSynthesis bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{routeID, lane.Slot}
	prev, hadMemory := t.byKey[k]

	if !lane.AtDock {
		lane.DockStartTime = nil
		lane.DockStartIsSynthetic = false
		lane.DockArcFraction = nil
		t.byKey[k] = memory{atDock: false}
		return
	}

	if skipArcSynthesis {
		lane.DockStartTime = nil
		lane.DockStartIsSynthetic = false
		lane.DockArcFraction = nil
		t.byKey[k] = memory{atDock: true}
		return
	}

	var start time.Time
	synthetic := false

	switch {
	case hadMemory && prev.atDock && prev.dockStartTime != nil:
		// Still docked since we last saw it: keep the original start.
		start = *prev.dockStartTime
		synthetic = prev.synthetic

	case hadMemory && !prev.atDock:
		// A real transition just happened.
		start = now

	default:
		// Boot, or previously unknown: synthesize a boot estimate.
		if lane.ScheduledDeparture != nil {
			start = lane.ScheduledDeparture.Add(-25 * time.Minute)
			if start.After(now) {
				start = now
			}
		} else {
			start = now
		}
		synthetic = true
	}

	lane.DockStartTime = &start
	lane.DockStartIsSynthetic = synthetic

	elapsed := now.Sub(start).Seconds()
	fraction := elapsed / arcTTL.Seconds()
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	lane.DockArcFraction = &fraction

	t.byKey[k] = memory{atDock: true, dockStartTime: &start, synthetic: synthetic}
}
