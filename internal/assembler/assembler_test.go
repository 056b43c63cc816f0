package assembler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abw750/ferryAPI3/internal/capacity"
	"github.com/abw750/ferryAPI3/internal/catalog"
	"github.com/abw750/ferryAPI3/internal/dockarc"
	"github.com/abw750/ferryAPI3/internal/ferrors"
	"github.com/abw750/ferryAPI3/internal/lanecache"
	"github.com/abw750/ferryAPI3/internal/models"
	"github.com/abw750/ferryAPI3/internal/terminals"
	"github.com/abw750/ferryAPI3/internal/upstream"
	"github.com/abw750/ferryAPI3/internal/upstream/upstreamtest"
)

// west=7 (Seattle), east=3 (Bainbridge Island), matching terminals.DefaultTable
// and catalog.Default's route 1.

func newAssembler(f upstream.Fetcher) *Assembler {
	return New(catalog.Default(), terminals.NewResolver(terminals.DefaultTable()), f, lanecache.New(), dockarc.New(), capacity.New())
}

func TestBuildSnapshot_UnknownRouteReturnsError(t *testing.T) {
	a := newAssembler(&upstreamtest.StubFetcher{})
	_, err := a.BuildSnapshot(context.Background(), 9999)
	if !errors.Is(err, ferrors.ErrUnknownRoute) {
		t.Fatalf("err = %v, want ErrUnknownRoute", err)
	}
}

func TestBuildSnapshot_UnusableScheduleReturnsSynthetic(t *testing.T) {
	f := &upstreamtest.StubFetcher{ScheduleErr: errors.New("upstream down")}
	a := newAssembler(f)

	snap, err := a.BuildSnapshot(context.Background(), 1)
	if err != nil {
		t.Fatalf("BuildSnapshot error = %v", err)
	}
	if snap.Meta.Fallback.Mode != models.FallbackSynthetic {
		t.Errorf("Fallback.Mode = %v, want synthetic", snap.Meta.Fallback.Mode)
	}
	if snap.Meta.Reason != models.ReasonSyntheticNoLive {
		t.Errorf("Reason = %q, want %q", snap.Meta.Reason, models.ReasonSyntheticNoLive)
	}
	if snap.Lanes.Upper.VesselName != "Unknown" || snap.Lanes.Lower.VesselName != "Unknown" {
		t.Errorf("expected placeholder vessel names, got %+v / %+v", snap.Lanes.Upper, snap.Lanes.Lower)
	}
}

func TestBuildSnapshot_FullyLiveProducesLiveMode(t *testing.T) {
	now := time.Now()
	leftDockUpper := now.Add(-10 * time.Minute)
	etaUpper := now.Add(25 * time.Minute)
	leftDockLower := now.Add(-5 * time.Minute)
	etaLower := now.Add(30 * time.Minute)

	f := &upstreamtest.StubFetcher{
		ScheduleRows: []upstream.ScheduleRow{
			{DepartingTerminalID: 7, VesselPositionNumber: 1, VesselID: "101", VesselName: "M/V Walla Walla"},
			{DepartingTerminalID: 7, VesselPositionNumber: 2, VesselID: "102", VesselName: "M/V Tacoma"},
		},
		Vessels: []models.LiveVessel{
			{VesselID: "101", VesselName: "M/V Walla Walla", DepartingTerminalID: 7, ArrivingTerminalID: 3, AtDock: false, LeftDock: &leftDockUpper, Eta: &etaUpper},
			{VesselID: "102", VesselName: "M/V Tacoma", DepartingTerminalID: 3, ArrivingTerminalID: 7, AtDock: false, LeftDock: &leftDockLower, Eta: &etaLower},
		},
	}
	a := newAssembler(f)

	snap, err := a.BuildSnapshot(context.Background(), 1)
	if err != nil {
		t.Fatalf("BuildSnapshot error = %v", err)
	}
	if snap.Meta.Fallback.Mode != models.FallbackLive {
		t.Errorf("Fallback.Mode = %v, want live", snap.Meta.Fallback.Mode)
	}
	if snap.Meta.Reason != models.ReasonOK {
		t.Errorf("Reason = %q, want %q", snap.Meta.Reason, models.ReasonOK)
	}
	if snap.Lanes.Upper.Direction != models.DirectionWestToEast {
		t.Errorf("Upper.Direction = %v, want west→east", snap.Lanes.Upper.Direction)
	}
	if snap.Lanes.Lower.Direction != models.DirectionEastToWest {
		t.Errorf("Lower.Direction = %v, want east→west", snap.Lanes.Lower.Direction)
	}
}

func TestBuildSnapshot_TerminalSpaceFailureIsPartialAPIError(t *testing.T) {
	now := time.Now()
	leftDock := now.Add(-10 * time.Minute)
	eta := now.Add(25 * time.Minute)

	f := &upstreamtest.StubFetcher{
		ScheduleRows: []upstream.ScheduleRow{
			{DepartingTerminalID: 7, VesselPositionNumber: 1, VesselID: "101", VesselName: "M/V Walla Walla"},
			{DepartingTerminalID: 7, VesselPositionNumber: 2, VesselID: "102", VesselName: "M/V Tacoma"},
		},
		Vessels: []models.LiveVessel{
			{VesselID: "101", DepartingTerminalID: 7, ArrivingTerminalID: 3, AtDock: false, LeftDock: &leftDock, Eta: &eta},
			{VesselID: "102", DepartingTerminalID: 3, ArrivingTerminalID: 7, AtDock: false, LeftDock: &leftDock, Eta: &eta},
		},
		TerminalsErr: errors.New("terminal space feed down"),
	}
	a := newAssembler(f)

	snap, err := a.BuildSnapshot(context.Background(), 1)
	if err != nil {
		t.Fatalf("BuildSnapshot error = %v", err)
	}
	if snap.Meta.Fallback.Mode != models.FallbackPartial {
		t.Errorf("Fallback.Mode = %v, want partial", snap.Meta.Fallback.Mode)
	}
	if snap.Meta.Reason != models.ReasonAPIError {
		t.Errorf("Reason = %q, want %q", snap.Meta.Reason, models.ReasonAPIError)
	}
	if !snap.Meta.TerminalSpaceStale {
		t.Errorf("TerminalSpaceStale = false, want true")
	}
	if snap.Capacity.West != nil || snap.Capacity.East != nil {
		t.Errorf("expected no capacity without a usable terminal-space feed, got %+v", snap.Capacity)
	}
}

func TestBuildSnapshot_NoLiveVesselsProducesMissingLane(t *testing.T) {
	f := &upstreamtest.StubFetcher{
		ScheduleRows: []upstream.ScheduleRow{
			{DepartingTerminalID: 7, VesselPositionNumber: 1, VesselID: "101", VesselName: "M/V Walla Walla"},
			{DepartingTerminalID: 7, VesselPositionNumber: 2, VesselID: "102", VesselName: "M/V Tacoma"},
		},
	}
	a := newAssembler(f)

	snap, err := a.BuildSnapshot(context.Background(), 1)
	if err != nil {
		t.Fatalf("BuildSnapshot error = %v", err)
	}
	if snap.Meta.Fallback.Mode != models.FallbackPartial {
		t.Errorf("Fallback.Mode = %v, want partial", snap.Meta.Fallback.Mode)
	}
	if snap.Meta.Reason != models.ReasonMissingLane {
		t.Errorf("Reason = %q, want %q", snap.Meta.Reason, models.ReasonMissingLane)
	}
	if snap.Meta.LaneSources.Upper != models.LaneSourceMissing || snap.Meta.LaneSources.Lower != models.LaneSourceMissing {
		t.Errorf("LaneSources = %+v, want both missing", snap.Meta.LaneSources)
	}
}

func TestBuildSnapshot_RouteEchoUppercasesDisplayLabels(t *testing.T) {
	a := newAssembler(&upstreamtest.StubFetcher{ScheduleErr: errors.New("down")})
	snap, err := a.BuildSnapshot(context.Background(), 1)
	if err != nil {
		t.Fatalf("BuildSnapshot error = %v", err)
	}
	if snap.Route.WestDisplayLabel != "SEATTLE" {
		t.Errorf("WestDisplayLabel = %q, want SEATTLE", snap.Route.WestDisplayLabel)
	}
	if snap.Route.EastDisplayLabel != "BAINBRIDGE ISLAND" {
		t.Errorf("EastDisplayLabel = %q, want BAINBRIDGE ISLAND", snap.Route.EastDisplayLabel)
	}
	if snap.Route.WestTerminalID == nil || *snap.Route.WestTerminalID != 7 {
		t.Errorf("WestTerminalID = %v, want 7", snap.Route.WestTerminalID)
	}
}
