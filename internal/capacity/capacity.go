// Package capacity derives, per side (west, east), the next departing
// vessel's drive-on availability, applying sticky per-vessel maxima
// and falling back to last-good capacity within a TTL.
package capacity

import (
	"sort"
	"sync"
	"time"

	"github.com/abw750/ferryAPI3/internal/models"
	"github.com/abw750/ferryAPI3/internal/upstream"
)

// TTL matches the Last-Good Lane Cache's TTL.
const TTL = 10 * time.Minute

type sideKey struct {
	routeID    int
	terminalID int
}

type lastGoodEntry struct {
	capacity models.Capacity
	observed time.Time
}

// Deriver holds the process-wide, mutex-guarded state that must survive
// across requests: the sticky per-vessel maximum map and the last-good
// capacity cache, one entry per route+side.
type Deriver struct {
	mu        sync.Mutex
	stickyMax map[string]int
	lastGood  map[sideKey]lastGoodEntry
}

// New builds an empty Deriver.
func New() *Deriver {
	return &Deriver{
		stickyMax: make(map[string]int),
		lastGood:  make(map[sideKey]lastGoodEntry),
	}
}

// tuple is a flattened {depTime, vesselId, vesselName, rawMax, driveUp}
// candidate.
type tuple struct {
	depTime    time.Time
	vesselID   string
	vesselName string
	rawMax     int
	driveUp    *int
}

// Derive produces the Capacity for one side of a route. terminalID is
// this side's terminal; oppositeTerminalID is the other side's, used to
// filter SpaceForArrivalTerminals entries to only those bound for this
// route. scheduledVesselID is the schedule-chosen lane's vessel ID for
// this side, used as the preferred match (may be empty if unresolved).
func (d *Deriver) Derive(
	routeID int,
	terminalID, oppositeTerminalID int,
	scheduledVesselID string,
	spaces []upstream.TerminalSpace,
	now time.Time,
) *models.Capacity {
	tuples := enumerate(terminalID, oppositeTerminalID, spaces)
	tuples = futureOnly(tuples, now)
	sort.Slice(tuples, func(i, j int) bool { return tuples[i].depTime.Before(tuples[j].depTime) })

	key := sideKey{routeID: routeID, terminalID: terminalID}

	chosen, matchedSchedule, ok := choose(tuples, scheduledVesselID)
	if !ok {
		return d.fallbackToLastGood(key, now)
	}

	staleFromFallback := scheduledVesselID != "" && !matchedSchedule

	maxAuto := d.stickyMaxFor(chosen.vesselID, chosen.rawMax)

	availAuto := chosen.driveUp
	stale := staleFromFallback
	if availAuto == nil {
		if last, ok := d.lastGoodAvail(key, now); ok {
			availAuto = last
			stale = true
		}
	}

	vesselID := chosen.vesselID
	vesselName := chosen.vesselName
	result := models.Capacity{
		TerminalID:  terminalID,
		VesselID:    &vesselID,
		VesselName:  &vesselName,
		MaxAuto:     maxAuto,
		AvailAuto:   availAuto,
		LastUpdated: now,
		IsStale:     stale,
	}

	d.mu.Lock()
	d.lastGood[key] = lastGoodEntry{capacity: result, observed: now}
	d.mu.Unlock()

	return &result
}

func (d *Deriver) lastGoodAvail(key sideKey, now time.Time) (*int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.lastGood[key]
	if !ok || now.Sub(last.observed) > TTL {
		return nil, false
	}
	return last.capacity.AvailAuto, true
}

func enumerate(terminalID, oppositeTerminalID int, spaces []upstream.TerminalSpace) []tuple {
	var out []tuple
	for _, t := range spaces {
		if t.TerminalID != terminalID {
			continue
		}
		for _, dep := range t.DepartingSpaces {
			if dep.Departure == nil {
				continue
			}
			for _, arr := range dep.SpaceForArrivalTerminals {
				if arr.ArrivalTerminalID != oppositeTerminalID {
					continue
				}
				out = append(out, tuple{
					depTime:    *dep.Departure,
					vesselID:   dep.VesselID,
					vesselName: dep.VesselName,
					rawMax:     arr.MaxSpaceCount,
					driveUp:    arr.DriveUpSpaceCount,
				})
			}
		}
	}
	return out
}

func futureOnly(tuples []tuple, now time.Time) []tuple {
	out := make([]tuple, 0, len(tuples))
	for _, t := range tuples {
		if !t.depTime.Before(now) {
			out = append(out, t)
		}
	}
	return out
}

// choose prefers the earliest tuple matching the scheduled vessel with
// a finite driveUp; otherwise the earliest tuple with any finite
// driveUp. matchedSchedule reports which branch was taken, needed for
// the staleness rule in Derive.
func choose(tuples []tuple, scheduledVesselID string) (tuple, bool, bool) {
	if scheduledVesselID != "" {
		for _, t := range tuples {
			if t.vesselID == scheduledVesselID && t.driveUp != nil {
				return t, true, true
			}
		}
	}
	for _, t := range tuples {
		if t.driveUp != nil {
			return t, false, true
		}
	}
	return tuple{}, false, false
}

func (d *Deriver) stickyMaxFor(vesselID string, observedMax int) *int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.stickyMax[vesselID]; ok {
		v := existing
		return &v
	}
	if observedMax > 0 {
		d.stickyMax[vesselID] = observedMax
		v := observedMax
		return &v
	}
	return nil
}

func (d *Deriver) fallbackToLastGood(key sideKey, now time.Time) *models.Capacity {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.lastGood[key]
	if !ok || now.Sub(last.observed) > TTL {
		return nil
	}
	result := last.capacity
	result.IsStale = true
	return &result
}
