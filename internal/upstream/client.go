// Package upstream performs HTTP GETs to the three upstream ferry feeds
// (vessel locations, terminal drive-up space, daily route schedule),
// parses the upstream's quirky date format, normalises records, and
// applies retry-with-backoff plus a per-feed circuit breaker on
// transient failures.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/abw750/ferryAPI3/internal/ferrors"
	"github.com/abw750/ferryAPI3/internal/metrics"
	"github.com/abw750/ferryAPI3/internal/models"
)

const requestTimeout = 8 * time.Second

// Fetcher is the narrow interface the rest of the assembler depends on
// instead of the concrete Client type, so component tests can supply a
// fake (see upstreamtest.StubFetcher) instead of making network calls.
type Fetcher interface {
	FetchVessels(ctx context.Context) ([]models.LiveVessel, error)
	FetchTerminalSpaces(ctx context.Context) ([]TerminalSpace, error)
	FetchSchedule(ctx context.Context, routeID int, dateText string) ([]ScheduleRow, error)
}

// Client is the real Fetcher, talking to the live upstream API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	metrics *metrics.Metrics

	vesselsBreaker       *gobreaker.CircuitBreaker
	terminalSpaceBreaker *gobreaker.CircuitBreaker
	scheduleBreaker      *gobreaker.CircuitBreaker
}

// Option configures optional Client behaviour.
type Option func(*Client)

// WithMetrics attaches a metrics recorder so fetch outcomes and circuit
// breaker state changes are observable on /metrics. Without it the
// client behaves identically, just unobserved.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New builds a Client. An empty apiKey is a fatal configuration error —
// the assembler can still serve a synthetic snapshot if upstream calls
// fail for that reason, but the client itself refuses to be built
// without credentials.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("upstream API key is required: %w", ferrors.ErrConfiguration)
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.vesselsBreaker = newBreaker("vessels", c.metrics)
	c.terminalSpaceBreaker = newBreaker("terminal_space", c.metrics)
	c.scheduleBreaker = newBreaker("schedule", c.metrics)
	return c, nil
}

// FetchVessels retrieves every vessel currently on the water.
func (c *Client) FetchVessels(ctx context.Context) ([]models.LiveVessel, error) {
	out, err := throughBreaker(c.vesselsBreaker, func() ([]models.LiveVessel, error) {
		return withRetry(ctx, func() ([]models.LiveVessel, error) {
			return c.fetchVesselsOnce(ctx)
		})
	})
	c.recordOutcome("vessels", err)
	return out, err
}

func (c *Client) fetchVesselsOnce(ctx context.Context) ([]models.LiveVessel, error) {
	var raw []rawVesselLocation
	if err := c.getJSON(ctx, "/ferries/api/vessels/rest/vessellocations", &raw); err != nil {
		return nil, err
	}

	out := make([]models.LiveVessel, 0, len(raw))
	for _, v := range raw {
		leftDock, err := parseUpstreamDate(v.LeftDock)
		if err != nil {
			return nil, fmt.Errorf("vessel %d LeftDock: %w", v.VesselID, joinPermanent(err))
		}
		eta, err := parseUpstreamDate(v.Eta)
		if err != nil {
			return nil, fmt.Errorf("vessel %d Eta: %w", v.VesselID, joinPermanent(err))
		}
		scheduledDeparture, err := parseUpstreamDate(v.ScheduledDeparture)
		if err != nil {
			return nil, fmt.Errorf("vessel %d ScheduledDeparture: %w", v.VesselID, joinPermanent(err))
		}
		timestamp, err := parseUpstreamDate(v.TimeStamp)
		if err != nil {
			return nil, fmt.Errorf("vessel %d TimeStamp: %w", v.VesselID, joinPermanent(err))
		}
		var ts time.Time
		if timestamp != nil {
			ts = *timestamp
		}

		out = append(out, models.LiveVessel{
			VesselID:            strconv.Itoa(v.VesselID),
			VesselName:          v.VesselName,
			DepartingTerminalID: v.DepartingTerminalID,
			ArrivingTerminalID:  v.ArrivingTerminalID,
			AtDock:              v.AtDock,
			LeftDock:            leftDock,
			Eta:                 eta,
			ScheduledDeparture:  scheduledDeparture,
			TelemetryTimestamp:  ts,
		})
	}
	return out, nil
}

// FetchTerminalSpaces retrieves per-terminal drive-on availability.
func (c *Client) FetchTerminalSpaces(ctx context.Context) ([]TerminalSpace, error) {
	out, err := throughBreaker(c.terminalSpaceBreaker, func() ([]TerminalSpace, error) {
		return withRetry(ctx, func() ([]TerminalSpace, error) {
			return c.fetchTerminalSpacesOnce(ctx)
		})
	})
	c.recordOutcome("terminal_space", err)
	return out, err
}

func (c *Client) fetchTerminalSpacesOnce(ctx context.Context) ([]TerminalSpace, error) {
	var raw []rawTerminalSpace
	if err := c.getJSON(ctx, "/ferries/api/terminals/rest/terminalsailingspace", &raw); err != nil {
		return nil, err
	}

	out := make([]TerminalSpace, 0, len(raw))
	for _, t := range raw {
		spaces := make([]DepartingSpace, 0, len(t.DepartingSpaces))
		for _, d := range t.DepartingSpaces {
			departure, err := parseUpstreamDate(d.Departure)
			if err != nil {
				return nil, fmt.Errorf("terminal %d departure: %w", t.TerminalID, joinPermanent(err))
			}

			arrivals := make([]SpaceForArrivalTerminal, 0, len(d.SpaceForArrivalTerminals))
			for _, a := range d.SpaceForArrivalTerminals {
				arrivals = append(arrivals, SpaceForArrivalTerminal{
					ArrivalTerminalID: a.ArrivalTerminalID,
					DriveUpSpaceCount: a.DriveUpSpaceCount,
					MaxSpaceCount:     a.MaxSpaceCount,
				})
			}

			spaces = append(spaces, DepartingSpace{
				Departure:                departure,
				VesselID:                 strconv.Itoa(d.VesselID),
				VesselName:               d.VesselName,
				SpaceForArrivalTerminals: arrivals,
			})
		}

		out = append(out, TerminalSpace{
			TerminalID:      t.TerminalID,
			TerminalName:    t.TerminalName,
			DepartingSpaces: spaces,
		})
	}
	return out, nil
}

// FetchSchedule retrieves today's scheduled departures for a route,
// flattened to rows.
func (c *Client) FetchSchedule(ctx context.Context, routeID int, dateText string) ([]ScheduleRow, error) {
	out, err := throughBreaker(c.scheduleBreaker, func() ([]ScheduleRow, error) {
		return withRetry(ctx, func() ([]ScheduleRow, error) {
			return c.fetchScheduleOnce(ctx, routeID, dateText)
		})
	})
	c.recordOutcome("schedule", err)
	return out, err
}

// recordOutcome is a no-op when the client was built without
// WithMetrics.
func (c *Client) recordOutcome(feed string, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.metrics.UpstreamFetchTotal.WithLabelValues(feed, outcome).Inc()
}

func (c *Client) fetchScheduleOnce(ctx context.Context, routeID int, dateText string) ([]ScheduleRow, error) {
	var raw rawSchedule
	path := fmt.Sprintf("/ferries/api/schedule/rest/schedule/%s/%d", dateText, routeID)
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	var out []ScheduleRow
	for _, combo := range raw.TerminalCombos {
		for _, row := range combo.Times {
			departing, err := parseUpstreamDate(row.DepartingTime)
			if err != nil {
				return nil, fmt.Errorf("schedule row vessel %d: %w", row.VesselID, joinPermanent(err))
			}
			out = append(out, ScheduleRow{
				RouteID:              routeID,
				DepartingTerminalID:  combo.DepartingTerminalID,
				VesselPositionNumber: row.VesselPositionNum,
				VesselID:             strconv.Itoa(row.VesselID),
				VesselName:           row.VesselName,
				DepartingTime:        departing,
				IsCancelled:          row.IsCancelled,
			})
		}
	}
	return out, nil
}

// getJSON performs a single GET against path, decoding a JSON body into
// out. Connection errors, timeouts, and 5xx responses are classified
// ErrUpstreamTransient (retryable); 4xx responses and decode failures
// are ErrUpstreamPermanent (not retried).
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	url := fmt.Sprintf("%s%s?apiaccesscode=%s", c.baseURL, path, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", joinPermanent(err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, joinTransient(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", path, joinTransient(err))
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("upstream %s returned %d: %w", path, resp.StatusCode, ferrors.ErrUpstreamTransient)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("upstream %s returned %d: %w", path, resp.StatusCode, ferrors.ErrUpstreamPermanent)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, joinPermanent(err))
	}
	return nil
}

func joinTransient(err error) error {
	return fmt.Errorf("%w: %v", ferrors.ErrUpstreamTransient, err)
}

func joinPermanent(err error) error {
	return fmt.Errorf("%w: %v", ferrors.ErrUpstreamPermanent, err)
}
