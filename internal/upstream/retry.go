package upstream

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/abw750/ferryAPI3/internal/ferrors"
	"github.com/abw750/ferryAPI3/internal/metrics"
)

// retryAttempts and retryBackoff implement a fixed retry policy: up to
// two attempts with a ~500ms backoff between them.
const (
	retryAttempts = 2
	retryBackoff  = 500 * time.Millisecond
)

// withRetry runs fn up to retryAttempts times, waiting retryBackoff
// between attempts, but only when the failure is classified retryable
// (ferrors.ErrUpstreamTransient). A non-retryable failure (4xx, parse
// error) propagates immediately.
func withRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= retryAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !ferrors.Retryable(err) {
			return zero, err
		}
		if attempt == retryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}

	return zero, lastErr
}

// newBreaker builds a circuit breaker for a single upstream feed. A feed
// that has failed consistently trips the breaker so subsequent requests
// fail fast instead of paying for a doomed retry round trip against a
// downed upstream — this does not change the retry-exhaustion
// semantics above, it only short-circuits the case where every recent
// call has failed. m may be nil, in which case state changes are
// simply not observed.
func newBreaker(name string, m *metrics.Metrics) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	if m != nil {
		settings.OnStateChange = func(_ string, _ gobreaker.State, to gobreaker.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(metrics.BreakerStateValue(to.String()))
		}
	}
	return gobreaker.NewCircuitBreaker(settings)
}

// throughBreaker adapts gobreaker's interface{}-typed Execute to the
// generic fetch signatures used throughout this package.
func throughBreaker[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T

	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}

	v, ok := result.(T)
	if !ok {
		return zero, err
	}
	return v, nil
}
