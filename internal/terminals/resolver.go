// Package terminals maps a route's named endpoints to the upstream's
// numeric terminal IDs. Matching is case-sensitive on the exact
// upstream spelling; trimming is applied to tolerate incidental
// whitespace in the catalog's static names.
package terminals

import "strings"

// IDs is the resolved pair of upstream terminal IDs for a route.
type IDs struct {
	WestID *int
	EastID *int
}

// Resolver holds the upstream's name -> numeric ID table.
type Resolver struct {
	byName map[string]int
}

// NewResolver builds a Resolver from a name -> ID table, as published by
// the upstream terminal-space feed's terminal name field.
func NewResolver(byName map[string]int) *Resolver {
	trimmed := make(map[string]int, len(byName))
	for k, v := range byName {
		trimmed[strings.TrimSpace(k)] = v
	}
	return &Resolver{byName: trimmed}
}

// Resolve looks up both endpoint names of a route. Either side may fail
// to resolve; the caller (capacity derivation and anything requiring an
// ID) must degrade gracefully rather than fail the whole request.
func (r *Resolver) Resolve(westName, eastName string) IDs {
	return IDs{
		WestID: r.lookup(westName),
		EastID: r.lookup(eastName),
	}
}

func (r *Resolver) lookup(name string) *int {
	id, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return nil
	}
	v := id
	return &v
}

// DefaultTable is the built-in name -> numeric terminal ID table for the
// routes in catalog.Default. cmd/dotstate uses this table as-is; nothing
// in this repository loads terminal names from the terminal-space feed.
func DefaultTable() map[string]int {
	return map[string]int{
		"Seattle":            7,
		"Bainbridge Island":  3,
		"Edmonds":            8,
		"Kingston":           12,
		"Mukilteo":           14,
		"Clinton":            1,
		"Fauntleroy":         9,
		"Vashon Island":      21,
	}
}
