package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abw750/ferryAPI3/internal/ferrors"
	"github.com/abw750/ferryAPI3/internal/metrics"
	"github.com/abw750/ferryAPI3/internal/models"
)

type fakeAssembler struct {
	snap models.Snapshot
	err  error
}

func (f *fakeAssembler) BuildSnapshot(ctx context.Context, routeID int) (models.Snapshot, error) {
	return f.snap, f.err
}

type fakeCatalog struct {
	routes []models.Route
}

func (f *fakeCatalog) ListRoutes() []models.Route { return f.routes }

func TestListRoutes_ReturnsCatalog(t *testing.T) {
	cat := &fakeCatalog{routes: []models.Route{{RouteID: 1, Description: "Seattle / Bainbridge Island"}}}
	router := NewRouter(&fakeAssembler{}, cat, metrics.New(), "http://localhost:5173")

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/routes")
	if err != nil {
		t.Fatalf("GET /api/routes: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body ListRoutesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || len(body.Routes) != 1 {
		t.Errorf("body = %+v, want one route", body)
	}
}

func TestSnapshot_UnknownRouteReturns404(t *testing.T) {
	a := &fakeAssembler{err: fmt.Errorf("route 99: %w", ferrors.ErrUnknownRoute)}
	router := NewRouter(a, &fakeCatalog{}, metrics.New(), "http://localhost:5173")

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/routes/99/snapshot")
	if err != nil {
		t.Fatalf("GET snapshot: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSnapshot_InternalErrorReturns500WithNoLeakedDetail(t *testing.T) {
	a := &fakeAssembler{err: fmt.Errorf("boom: %w", ferrors.ErrInternal)}
	router := NewRouter(a, &fakeCatalog{}, metrics.New(), "http://localhost:5173")

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/routes/1/snapshot")
	if err != nil {
		t.Fatalf("GET snapshot: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "internal error" {
		t.Errorf("Error = %q, want %q (no upstream detail leaked)", body.Error, "internal error")
	}
}

func TestSnapshot_SuccessCarriesCorrelationID(t *testing.T) {
	a := &fakeAssembler{snap: models.Snapshot{Route: models.RouteEcho{RouteID: 1}}}
	router := NewRouter(a, &fakeCatalog{}, metrics.New(), "http://localhost:5173")

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/routes/1/snapshot")
	if err != nil {
		t.Fatalf("GET snapshot: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Correlation-Id") == "" {
		t.Errorf("X-Correlation-Id header missing")
	}

	var snap models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Meta.CorrelationID == "" {
		t.Errorf("Meta.CorrelationID = empty, want the request's correlation id")
	}
}

func TestHealth_ReturnsOK(t *testing.T) {
	router := NewRouter(&fakeAssembler{}, &fakeCatalog{}, metrics.New(), "http://localhost:5173")
	srv := httptest.NewServer(router)
	defer srv.Close()

	for _, path := range []string{"/health", "/healthz"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, resp.StatusCode)
		}
	}
}
