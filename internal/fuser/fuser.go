// Package fuser joins a schedule-derived lane identity with live
// vessel telemetry, deriving direction, dock state, position, and
// arrival estimates, and falling back to the Last-Good Lane Cache when
// no live vessel matches.
package fuser

import (
	"time"

	"github.com/abw750/ferryAPI3/internal/lanecache"
	"github.com/abw750/ferryAPI3/internal/models"
)

// Route is the subset of route data the fuser needs: terminal IDs for
// direction matching and the nominal crossing duration for ETA
// synthesis.
type Route struct {
	WestTerminalID  *int
	EastTerminalID  *int
	CrossingMinutes int
}

// Result is a fused lane plus the bookkeeping the assembler needs to
// populate Meta and to tell the Dock-Arc Tracker whether this lane's
// AtDock was forced by the stale-snap rule.
type Result struct {
	Lane             models.Lane
	Source           models.LaneSource
	StaleSnapApplied bool
}

// Fuse produces one lane. identity may be nil if the Schedule Lane
// Resolver did not resolve this slot; byVesselID is an index of the
// live vessel feed built by the caller once per request.
func Fuse(
	slot models.Slot,
	identity *models.LaneIdentity,
	byVesselID map[string]models.LiveVessel,
	route Route,
	cache *lanecache.Cache,
	routeID int,
	now time.Time,
) Result {
	var live *models.LiveVessel
	if identity != nil {
		if v, ok := byVesselID[identity.VesselID]; ok {
			live = &v
		}
	}

	if live == nil {
		return fuseMissing(slot, identity, cache, routeID, now)
	}

	lane := fuseLive(slot, *live, route, now)
	return Result{Lane: lane, Source: models.LaneSourceLive}
}

func fuseLive(slot models.Slot, live models.LiveVessel, route Route, now time.Time) models.Lane {
	direction := resolveDirection(slot, live, route)

	leftDock := live.LeftDock
	if leftDock == nil {
		leftDock = live.ScheduledDeparture
	}

	eta := live.Eta
	if eta == nil && leftDock != nil && route.CrossingMinutes > 0 {
		t := leftDock.Add(time.Duration(route.CrossingMinutes) * time.Minute)
		eta = &t
	}

	dotPosition := computeDotPosition(live.AtDock, now, leftDock, eta)

	phase := models.PhaseUnknown
	switch {
	case live.AtDock:
		phase = models.PhaseAtDock
	case eta != nil:
		phase = models.PhaseUnderway
	}

	vesselID := live.VesselID
	lane := models.Lane{
		Slot:                slot,
		VesselID:            &vesselID,
		VesselName:          live.VesselName,
		AtDock:              live.AtDock,
		Direction:           direction,
		DepartureTerminalID: intPtr(live.DepartingTerminalID),
		ArrivalTerminalID:   intPtr(live.ArrivingTerminalID),
		ScheduledDeparture:  live.ScheduledDeparture,
		LeftDock:            leftDock,
		Phase:               phase,
		DotPosition:         dotPosition,
		CurrentArrivalTime:  eta,
		LastUpdatedVessels:  now,
		IsStale:             false,
	}
	return lane
}

// computeDotPosition is zero when at dock, zero when leftDock/eta are
// unusable or now precedes leftDock, zero (not a divide-by-zero) when
// leftDock == eta, and otherwise the clamped fraction of the crossing
// elapsed so far.
func computeDotPosition(atDock bool, now time.Time, leftDock, eta *time.Time) float64 {
	if atDock {
		return 0
	}
	if leftDock == nil || eta == nil {
		return 0
	}
	if now.Before(*leftDock) {
		return 0
	}
	total := eta.Sub(*leftDock)
	if total <= 0 {
		return 0
	}
	frac := now.Sub(*leftDock).Seconds() / total.Seconds()
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac
}

// resolveDirection is an explicit sum type: matched-forward,
// matched-reverse, or unknown-with-fallback. It never silently
// coerces a non-matching pair.
func resolveDirection(slot models.Slot, live models.LiveVessel, route Route) models.Direction {
	switch {
	case route.WestTerminalID != nil && route.EastTerminalID != nil &&
		live.DepartingTerminalID == *route.WestTerminalID && live.ArrivingTerminalID == *route.EastTerminalID:
		return models.DirectionWestToEast // matched-forward

	case route.WestTerminalID != nil && route.EastTerminalID != nil &&
		live.DepartingTerminalID == *route.EastTerminalID && live.ArrivingTerminalID == *route.WestTerminalID:
		return models.DirectionEastToWest // matched-reverse

	default:
		// unknown: fall back to the slot's nominal direction.
		if slot == models.SlotUpper {
			return models.DirectionWestToEast
		}
		return models.DirectionEastToWest
	}
}

func fuseMissing(slot models.Slot, identity *models.LaneIdentity, cache *lanecache.Cache, routeID int, now time.Time) Result {
	if cached, ok := cache.Get(routeID, slot, now); ok {
		cached.LastUpdatedVessels = now
		cached.IsStale = true

		staleSnapApplied := false
		if cached.CurrentArrivalTime != nil && now.After(*cached.CurrentArrivalTime) {
			// A stale lane whose ETA has already passed snaps to docked
			// so the UI never animates a phantom vessel past its arrival.
			cached.AtDock = true
			cached.Phase = models.PhaseAtDock
			cached.DotPosition = 1
			staleSnapApplied = true
		}

		return Result{Lane: cached, Source: models.LaneSourceStale, StaleSnapApplied: staleSnapApplied}
	}

	name := "Unknown"
	var vesselID *string
	if identity != nil {
		id := identity.VesselID
		vesselID = &id
	}

	lane := models.Lane{
		Slot:               slot,
		VesselID:           vesselID,
		VesselName:         name,
		AtDock:             true,
		Direction:          models.DirectionUnknown,
		Phase:              models.PhaseUnknown,
		DotPosition:        0,
		LastUpdatedVessels: now,
		IsStale:            false,
	}
	return Result{Lane: lane, Source: models.LaneSourceMissing}
}

func intPtr(v int) *int { return &v }
