package catalog

import (
	"errors"
	"testing"

	"github.com/abw750/ferryAPI3/internal/ferrors"
	"github.com/abw750/ferryAPI3/internal/models"
	"github.com/abw750/ferryAPI3/internal/terminals"
)

func TestListRoutes_PreservesOrder(t *testing.T) {
	c := New([]models.Route{
		{RouteID: 3, Description: "c"},
		{RouteID: 1, Description: "a"},
		{RouteID: 2, Description: "b"},
	})

	got := c.ListRoutes()
	if len(got) != 3 {
		t.Fatalf("ListRoutes() returned %d routes, want 3", len(got))
	}
	wantOrder := []int{3, 1, 2}
	for i, id := range wantOrder {
		if got[i].RouteID != id {
			t.Errorf("ListRoutes()[%d].RouteID = %d, want %d", i, got[i].RouteID, id)
		}
	}
}

func TestGetRoute(t *testing.T) {
	c := New([]models.Route{{RouteID: 1, Description: "Seattle / Bainbridge Island"}})

	tests := []struct {
		name    string
		id      int
		wantErr bool
	}{
		{"known route", 1, false},
		{"unknown route", 99, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.GetRoute(tc.id)
			if tc.wantErr && !errors.Is(err, ferrors.ErrUnknownRoute) {
				t.Errorf("GetRoute(%d) err = %v, want ferrors.ErrUnknownRoute", tc.id, err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("GetRoute(%d) unexpected err: %v", tc.id, err)
			}
		})
	}
}

func TestNew_DeduplicatesRouteID(t *testing.T) {
	c := New([]models.Route{
		{RouteID: 1, Description: "first"},
		{RouteID: 1, Description: "second"},
	})

	got := c.ListRoutes()
	if len(got) != 1 {
		t.Fatalf("ListRoutes() returned %d routes, want 1", len(got))
	}
	if got[0].Description != "first" {
		t.Errorf("ListRoutes()[0].Description = %q, want %q (first write wins)", got[0].Description, "first")
	}
}

func TestDefault_AllRoutesResolvable(t *testing.T) {
	c := Default()
	for _, r := range c.ListRoutes() {
		if r.WestTerminalName == r.EastTerminalName {
			t.Errorf("route %d has identical west/east terminal names %q", r.RouteID, r.WestTerminalName)
		}
		if r.WestTerminalName == "" || r.EastTerminalName == "" {
			t.Errorf("route %d has an empty terminal name", r.RouteID)
		}
		ids := terminals.NewResolver(terminals.DefaultTable()).Resolve(r.WestTerminalName, r.EastTerminalName)
		if ids.WestID == nil || ids.EastID == nil {
			t.Errorf("route %d terminals %q / %q do not both resolve", r.RouteID, r.WestTerminalName, r.EastTerminalName)
		}
	}
}
