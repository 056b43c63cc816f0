// Package upstreamtest provides a Fetcher test double so every other
// component can exercise upstream.Fetcher without a live HTTP call.
package upstreamtest

import (
	"context"

	"github.com/abw750/ferryAPI3/internal/models"
	"github.com/abw750/ferryAPI3/internal/upstream"
)

// StubFetcher is a test double for upstream.Fetcher.
type StubFetcher struct {
	Vessels        []models.LiveVessel
	VesselsErr     error
	TerminalSpaces []upstream.TerminalSpace
	TerminalsErr   error
	ScheduleRows   []upstream.ScheduleRow
	ScheduleErr    error
}

func (s *StubFetcher) FetchVessels(ctx context.Context) ([]models.LiveVessel, error) {
	return s.Vessels, s.VesselsErr
}

func (s *StubFetcher) FetchTerminalSpaces(ctx context.Context) ([]upstream.TerminalSpace, error) {
	return s.TerminalSpaces, s.TerminalsErr
}

func (s *StubFetcher) FetchSchedule(ctx context.Context, routeID int, dateText string) ([]upstream.ScheduleRow, error) {
	return s.ScheduleRows, s.ScheduleErr
}
