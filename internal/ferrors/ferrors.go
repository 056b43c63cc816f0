// Package ferrors defines a small error taxonomy: configuration,
// unknown-route, upstream (transient/permanent), schedule unusable,
// and a catch-all internal error. Components wrap the underlying
// cause with fmt.Errorf("...: %w", err); callers use errors.Is/As
// against the sentinels here rather than string matching.
package ferrors

import "errors"

var (
	// ErrConfiguration signals a fatal, process-wide configuration
	// problem (e.g. a missing upstream API credential).
	ErrConfiguration = errors.New("configuration error")

	// ErrUnknownRoute signals a route ID not present in the catalog.
	ErrUnknownRoute = errors.New("unknown route")

	// ErrUpstreamTransient signals a network error or 5xx response from
	// an upstream feed that was retried and still failed.
	ErrUpstreamTransient = errors.New("upstream transient failure")

	// ErrUpstreamPermanent signals a 4xx response or parse failure from
	// an upstream feed; these are never retried.
	ErrUpstreamPermanent = errors.New("upstream permanent failure")

	// ErrScheduleUnusable signals that today's schedule fetch failed or
	// produced no usable rows for either lane.
	ErrScheduleUnusable = errors.New("schedule unusable")

	// ErrInternal is the catch-all for anything else in assembly.
	ErrInternal = errors.New("internal error")
)

// Retryable reports whether err represents a condition considered
// retryable: connection/reset/timeout errors and 5xx responses.
// It is a thin predicate, not a classifier — callers construct
// ErrUpstreamTransient/ErrUpstreamPermanent themselves and this just
// lets retry logic ask "should I try again" without re-deriving that
// classification.
func Retryable(err error) bool {
	return errors.Is(err, ErrUpstreamTransient)
}
