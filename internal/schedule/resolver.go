// Package schedule resolves, as a pure function from today's schedule
// rows, which vessel occupies lane slot 1 ("upper") and slot 2
// ("lower"). Lane identity is schedule-derived and stable across the
// day; vessel telemetry is not, which is why lanes are never defined
// by currently-observed direction.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/abw750/ferryAPI3/internal/ferrors"
	"github.com/abw750/ferryAPI3/internal/models"
	"github.com/abw750/ferryAPI3/internal/upstream"
)

// Result is the outcome of resolving today's lane identities for a
// route. Err wraps ferrors.ErrScheduleUnusable whenever ScheduleError is
// true, so callers can classify the failure with errors.Is instead of
// re-deriving it from the bool.
type Result struct {
	Upper         *models.LaneIdentity
	Lower         *models.LaneIdentity
	ScheduleError bool
	Err           error
}

// Resolve fetches today's schedule for routeID and picks the lane
// identities: among rows departing westTerminalID, the first with
// VesselPositionNumber == 1 is upper, the first with
// VesselPositionNumber == 2 is lower. A fetch failure or a schedule
// with no usable rows for either lane sets ScheduleError and Err.
func Resolve(ctx context.Context, fetcher upstream.Fetcher, routeID, westTerminalID int, today time.Time) Result {
	dateText := today.Format("2006-01-02")

	rows, err := fetcher.FetchSchedule(ctx, routeID, dateText)
	if err != nil {
		return Result{
			ScheduleError: true,
			Err:           fmt.Errorf("fetch schedule for route %d: %w: %v", routeID, ferrors.ErrScheduleUnusable, err),
		}
	}

	var upper, lower *models.LaneIdentity
	for _, row := range rows {
		if row.DepartingTerminalID != westTerminalID || row.IsCancelled {
			continue
		}
		switch row.VesselPositionNumber {
		case 1:
			if upper == nil {
				upper = &models.LaneIdentity{
					Slot:       models.SlotUpper,
					VesselID:   row.VesselID,
					VesselName: row.VesselName,
				}
			}
		case 2:
			if lower == nil {
				lower = &models.LaneIdentity{
					Slot:       models.SlotLower,
					VesselID:   row.VesselID,
					VesselName: row.VesselName,
				}
			}
		}
	}

	scheduleError := upper == nil && lower == nil
	var resultErr error
	if scheduleError {
		resultErr = fmt.Errorf("route %d: no usable schedule rows for either lane: %w", routeID, ferrors.ErrScheduleUnusable)
	}

	return Result{
		Upper:         upper,
		Lower:         lower,
		ScheduleError: scheduleError,
		Err:           resultErr,
	}
}
