// Package catalog holds the closed set of supported ferry routes. It is
// process-wide state initialised at start-up and never mutated.
package catalog

import (
	"fmt"

	"github.com/abw750/ferryAPI3/internal/ferrors"
	"github.com/abw750/ferryAPI3/internal/models"
)

// Catalog is an ordered, immutable list of routes keyed by route ID.
type Catalog struct {
	order  []int
	routes map[int]models.Route
}

// New builds a Catalog from a fixed list of routes. The order routes are
// passed in is preserved by ListRoutes.
func New(routes []models.Route) *Catalog {
	c := &Catalog{
		order:  make([]int, 0, len(routes)),
		routes: make(map[int]models.Route, len(routes)),
	}
	for _, r := range routes {
		if _, exists := c.routes[r.RouteID]; exists {
			continue
		}
		c.order = append(c.order, r.RouteID)
		c.routes[r.RouteID] = r
	}
	return c
}

// ListRoutes returns the full ordered list of supported routes.
func (c *Catalog) ListRoutes() []models.Route {
	out := make([]models.Route, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.routes[id])
	}
	return out
}

// GetRoute returns the route matching id, or ferrors.ErrUnknownRoute if
// no such route is in the catalog. The caller treats absence as a
// terminal 404-equivalent.
func (c *Catalog) GetRoute(id int) (models.Route, error) {
	r, ok := c.routes[id]
	if !ok {
		return models.Route{}, fmt.Errorf("route %d: %w", id, ferrors.ErrUnknownRoute)
	}
	return r, nil
}

// Default returns the built-in route catalog, which cmd/dotstate always
// uses; configuration has no catalog setting. It mirrors the handful of cross-sound
// routes a WSF-style "vessel watch" display typically shows.
func Default() *Catalog {
	return New([]models.Route{
		{
			RouteID:          1,
			Description:      "Seattle / Bainbridge Island",
			WestTerminalName: "Seattle",
			EastTerminalName: "Bainbridge Island",
			CrossingMinutes:  35,
		},
		{
			RouteID:          2,
			Description:      "Edmonds / Kingston",
			WestTerminalName: "Edmonds",
			EastTerminalName: "Kingston",
			CrossingMinutes:  30,
		},
		{
			RouteID:          3,
			Description:      "Mukilteo / Clinton",
			WestTerminalName: "Mukilteo",
			EastTerminalName: "Clinton",
			CrossingMinutes:  20,
		},
		{
			RouteID:          4,
			Description:      "Fauntleroy / Vashon Island",
			WestTerminalName: "Fauntleroy",
			EastTerminalName: "Vashon Island",
			CrossingMinutes:  20,
		},
	})
}
