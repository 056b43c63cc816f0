// Package assembler orchestrates the Route Catalog, Terminal Resolver,
// Upstream Client, Schedule Lane Resolver, Vessel Fuser, Dock-Arc
// Tracker, and Capacity Deriver to produce one Snapshot per request.
package assembler

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/abw750/ferryAPI3/internal/capacity"
	"github.com/abw750/ferryAPI3/internal/catalog"
	"github.com/abw750/ferryAPI3/internal/dockarc"
	"github.com/abw750/ferryAPI3/internal/fuser"
	"github.com/abw750/ferryAPI3/internal/lanecache"
	"github.com/abw750/ferryAPI3/internal/models"
	"github.com/abw750/ferryAPI3/internal/schedule"
	"github.com/abw750/ferryAPI3/internal/terminals"
	"github.com/abw750/ferryAPI3/internal/upstream"
)

// Assembler wires together the other eight components. It holds no
// request-scoped state itself; the cache, tracker, and capacity deriver
// it's built with are the process-wide mutable state that outlives any
// single BuildSnapshot call.
type Assembler struct {
	catalog   *catalog.Catalog
	terminals *terminals.Resolver
	fetcher   upstream.Fetcher
	laneCache *lanecache.Cache
	dockArc   *dockarc.Tracker
	capacity  *capacity.Deriver
}

// New builds an Assembler from its six stateful collaborators; the
// Schedule Lane Resolver and Vessel Fuser are package functions it
// calls directly.
func New(
	cat *catalog.Catalog,
	terminalResolver *terminals.Resolver,
	fetcher upstream.Fetcher,
	laneCache *lanecache.Cache,
	dockArc *dockarc.Tracker,
	capacityDeriver *capacity.Deriver,
) *Assembler {
	return &Assembler{
		catalog:   cat,
		terminals: terminalResolver,
		fetcher:   fetcher,
		laneCache: laneCache,
		dockArc:   dockArc,
		capacity:  capacityDeriver,
	}
}

// BuildSnapshot assembles the Snapshot for routeID. It returns
// ferrors.ErrUnknownRoute if routeID is not in the catalog.
func (a *Assembler) BuildSnapshot(ctx context.Context, routeID int) (models.Snapshot, error) {
	route, err := a.catalog.GetRoute(routeID)
	if err != nil {
		return models.Snapshot{}, err
	}

	now := time.Now()
	ids := a.terminals.Resolve(route.WestTerminalName, route.EastTerminalName)

	vessels, vesselsErr, spaces, spacesErr, scheduleResult := a.fetchAll(ctx, route, ids, now)

	if scheduleResult.ScheduleError && scheduleResult.Upper == nil && scheduleResult.Lower == nil {
		log.Printf("route %d: %v", routeID, scheduleResult.Err)
		return syntheticSnapshot(route, ids, now), nil
	}

	byVesselID := make(map[string]models.LiveVessel, len(vessels))
	for _, v := range vessels {
		byVesselID[v.VesselID] = v
	}

	fuserRoute := fuser.Route{WestTerminalID: ids.WestID, EastTerminalID: ids.EastID, CrossingMinutes: route.CrossingMinutes}

	upperResult := fuser.Fuse(models.SlotUpper, scheduleResult.Upper, byVesselID, fuserRoute, a.laneCache, routeID, now)
	lowerResult := fuser.Fuse(models.SlotLower, scheduleResult.Lower, byVesselID, fuserRoute, a.laneCache, routeID, now)

	a.logStaleLane(routeID, upperResult, now)
	a.logStaleLane(routeID, lowerResult, now)

	a.refreshCacheAndDockArc(routeID, &upperResult, now)
	a.refreshCacheAndDockArc(routeID, &lowerResult, now)

	var westCap, eastCap *models.Capacity
	if ids.WestID != nil && ids.EastID != nil {
		westCap = a.capacity.Derive(routeID, *ids.WestID, *ids.EastID, scheduledVesselFor(*ids.WestID, upperResult.Lane, lowerResult.Lane), spaces, now)
		eastCap = a.capacity.Derive(routeID, *ids.EastID, *ids.WestID, scheduledVesselFor(*ids.EastID, upperResult.Lane, lowerResult.Lane), spaces, now)
	}

	snap := models.Snapshot{
		Route: routeEcho(route, ids),
		Lanes: models.Lanes{Upper: upperResult.Lane, Lower: lowerResult.Lane},
		Capacity: models.SideCapacity{
			West: westCap,
			East: eastCap,
		},
		Meta: buildMeta(vesselsErr, spacesErr, scheduleResult.ScheduleError, upperResult, lowerResult, westCap, eastCap),
	}
	return snap, nil
}

// fetchAll invokes the three upstream fetches concurrently: a fetch
// failure flips that feed's stale flag but never short-circuits the
// request.
func (a *Assembler) fetchAll(ctx context.Context, route models.Route, ids terminals.IDs, now time.Time) ([]models.LiveVessel, error, []upstream.TerminalSpace, error, schedule.Result) {
	var wg sync.WaitGroup
	var vessels []models.LiveVessel
	var vesselsErr error
	var spaces []upstream.TerminalSpace
	var spacesErr error
	var scheduleResult schedule.Result

	wg.Add(3)
	go func() {
		defer wg.Done()
		vessels, vesselsErr = a.fetcher.FetchVessels(ctx)
	}()
	go func() {
		defer wg.Done()
		spaces, spacesErr = a.fetcher.FetchTerminalSpaces(ctx)
	}()
	go func() {
		defer wg.Done()
		westID := 0
		if ids.WestID != nil {
			westID = *ids.WestID
		}
		scheduleResult = schedule.Resolve(ctx, a.fetcher, route.RouteID, westID, now)
	}()
	wg.Wait()

	return vessels, vesselsErr, spaces, spacesErr, scheduleResult
}

// refreshCacheAndDockArc writes a fresh live lane into the Last-Good
// Lane Cache and always runs the Dock-Arc Tracker: the cache is
// refreshed on live observations, and dock memory is annotated on
// every lane regardless of source.
func (a *Assembler) refreshCacheAndDockArc(routeID int, result *fuser.Result, now time.Time) {
	if result.Source == models.LaneSourceLive {
		a.laneCache.Put(routeID, result.Lane.Slot, result.Lane, now)
	}
	a.dockArc.Update(routeID, &result.Lane, now, result.StaleSnapApplied)
}

// logStaleLane warns when a lane was not sourced live (stale or
// missing), reporting the Last-Good Lane Cache's observation age in
// human terms (e.g. "6 minutes ago") rather than a raw duration. The
// fused lane's own LastUpdatedVessels is bumped to now, so the age is
// read back from the cache entry.
func (a *Assembler) logStaleLane(routeID int, result fuser.Result, now time.Time) {
	if result.Source == models.LaneSourceLive {
		return
	}
	last := "no fresh cached observation"
	if cached, ok := a.laneCache.Get(routeID, result.Lane.Slot, now); ok {
		last = "last observed " + humanize.Time(cached.LastUpdatedVessels)
	}
	log.Printf("route %d lane %s fell back to %s lane, %s", routeID, result.Lane.Slot, result.Source, last)
}

// scheduledVesselFor returns the vessel ID of whichever fused lane is
// currently departing from terminalID, which the Capacity Deriver uses
// as its preferred-match hint.
func scheduledVesselFor(terminalID int, upper, lower models.Lane) string {
	for _, lane := range []models.Lane{upper, lower} {
		if lane.DepartureTerminalID != nil && *lane.DepartureTerminalID == terminalID && lane.VesselID != nil {
			return *lane.VesselID
		}
	}
	return ""
}

func routeEcho(route models.Route, ids terminals.IDs) models.RouteEcho {
	return models.RouteEcho{
		RouteID:          route.RouteID,
		Description:      route.Description,
		WestTerminalID:   ids.WestID,
		EastTerminalID:   ids.EastID,
		WestDisplayLabel: strings.ToUpper(route.WestTerminalName),
		EastDisplayLabel: strings.ToUpper(route.EastTerminalName),
		CrossingMinutes:  route.CrossingMinutes,
	}
}

// buildMeta derives the fallback mode and reason string from the three
// feed errors and the two fused lanes' sources.
func buildMeta(vesselsErr, spacesErr error, scheduleErr bool, upper, lower fuser.Result, westCap, eastCap *models.Capacity) models.Meta {
	bothLive := upper.Source == models.LaneSourceLive && lower.Source == models.LaneSourceLive
	feedsClean := vesselsErr == nil && spacesErr == nil && !scheduleErr

	mode := models.FallbackPartial
	if bothLive && feedsClean {
		mode = models.FallbackLive
	}

	capacityStale := (westCap != nil && westCap.IsStale) || (eastCap != nil && eastCap.IsStale)

	return models.Meta{
		VesselsStale:       vesselsErr != nil,
		TerminalSpaceStale: spacesErr != nil,
		ScheduleStale:      scheduleErr,
		CapacityStale:      capacityStale,
		Fallback:           models.Fallback{Mode: mode},
		LaneSources:        models.LaneSources{Upper: upper.Source, Lower: lower.Source},
		Reason:             buildReason(vesselsErr, spacesErr, upper.Source, lower.Source),
	}
}

func buildReason(vesselsErr, spacesErr error, upperSource, lowerSource models.LaneSource) string {
	if vesselsErr != nil || spacesErr != nil {
		return models.ReasonAPIError
	}

	missing := upperSource == models.LaneSourceMissing || lowerSource == models.LaneSourceMissing
	stale := upperSource == models.LaneSourceStale || lowerSource == models.LaneSourceStale

	switch {
	case missing && stale:
		return models.ReasonMissingLane + "_" + models.ReasonStaleLane
	case missing:
		return models.ReasonMissingLane
	case stale:
		return models.ReasonStaleLane
	default:
		return models.ReasonOK
	}
}

// syntheticSnapshot builds the fully placeholder snapshot emitted only
// when the schedule is completely unusable: the snapshot schema is
// preserved so the UI never has to handle a "nothing to draw" case.
func syntheticSnapshot(route models.Route, ids terminals.IDs, now time.Time) models.Snapshot {
	eta := now.Add(time.Duration(route.CrossingMinutes) * time.Minute)

	upper := syntheticLane(models.SlotUpper, models.DirectionWestToEast, ids.WestID, ids.EastID, now, eta)
	lower := syntheticLane(models.SlotLower, models.DirectionEastToWest, ids.EastID, ids.WestID, now, eta)

	return models.Snapshot{
		Route: routeEcho(route, ids),
		Lanes: models.Lanes{Upper: upper, Lower: lower},
		Meta: models.Meta{
			VesselsStale:       true,
			TerminalSpaceStale: true,
			ScheduleStale:      true,
			CapacityStale:      true,
			Fallback:           models.Fallback{Mode: models.FallbackSynthetic},
			LaneSources:        models.LaneSources{Upper: models.LaneSourceMissing, Lower: models.LaneSourceMissing},
			Reason:             models.ReasonSyntheticNoLive,
		},
	}
}

func syntheticLane(slot models.Slot, direction models.Direction, depTerminal, arrTerminal *int, now, eta time.Time) models.Lane {
	return models.Lane{
		Slot:                slot,
		VesselName:          "Unknown",
		AtDock:              false,
		Direction:           direction,
		DepartureTerminalID: depTerminal,
		ArrivalTerminalID:   arrTerminal,
		ScheduledDeparture:  &now,
		CurrentArrivalTime:  &eta,
		Phase:               models.PhaseUnderway,
		DotPosition:         0,
		LastUpdatedVessels:  now,
		IsStale:             true,
	}
}
