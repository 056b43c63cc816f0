// Package httpapi exposes the State Assembler and Route Catalog over
// HTTP: go-chi/chi/v5 routing, go-chi/cors middleware, and a fixed
// ErrorResponse{Error, Details} JSON shape.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/abw750/ferryAPI3/internal/ferrors"
	"github.com/abw750/ferryAPI3/internal/metrics"
	"github.com/abw750/ferryAPI3/internal/models"
)

// Assembler is the narrow interface this layer depends on, owned by
// the handler package rather than a concrete type.
type Assembler interface {
	BuildSnapshot(ctx context.Context, routeID int) (models.Snapshot, error)
}

// Catalog is the narrow read side of the Route Catalog this layer needs.
type Catalog interface {
	ListRoutes() []models.Route
}

// ErrorResponse is the JSON error shape returned on non-2xx responses.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewRouter builds the chi.Router exposing /api/routes,
// /api/routes/{routeId}/snapshot, /health, /healthz, and /metrics.
func NewRouter(assembler Assembler, catalog Catalog, m *metrics.Metrics, corsOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(correlationID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/api/routes", listRoutesHandler(catalog))
	r.Get("/api/routes/{routeId}/snapshot", snapshotHandler(assembler, m))
	r.Get("/health", healthHandler)
	r.Get("/healthz", healthHandler)
	r.Handle("/metrics", m.Handler())

	return r
}

// ListRoutesResponse wraps the catalog listing in a small envelope.
type ListRoutesResponse struct {
	Routes []models.Route `json:"routes"`
	Count  int            `json:"count"`
}

func listRoutesHandler(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes := catalog.ListRoutes()
		writeJSON(w, http.StatusOK, ListRoutesResponse{Routes: routes, Count: len(routes)})
	}
}

// snapshotHandler maps buildSnapshot onto GET
// /api/routes/{routeId}/snapshot: 404 on unknown route, 500 only on
// an internal error, and a Cache-Control header sized to the front
// end's ~10s poll cadence.
func snapshotHandler(assembler Assembler, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routeID, err := strconv.Atoi(chi.URLParam(r, "routeId"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "route not found"})
			return
		}

		start := time.Now()
		snap, err := assembler.BuildSnapshot(r.Context(), routeID)
		m.SnapshotBuildDuration.WithLabelValues(chi.URLParam(r, "routeId")).Observe(time.Since(start).Seconds())

		if err != nil {
			if errors.Is(err, ferrors.ErrUnknownRoute) {
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "route not found"})
				return
			}
			log.Printf("build snapshot for route %d: %v", routeID, err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
			return
		}

		m.SnapshotFallbackTotal.WithLabelValues(string(snap.Meta.Fallback.Mode)).Inc()
		snap.Meta.CorrelationID, _ = correlationIDFromContext(r.Context())

		w.Header().Set("Cache-Control", "public, max-age=8, stale-while-revalidate=4")
		writeJSON(w, http.StatusOK, snap)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type correlationIDKey struct{}

// correlationID tags every request with a google/uuid correlation ID,
// logged on entry/exit and carried into Snapshot.Meta.CorrelationID
// for request tracing, never stored.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Correlation-Id", id)
		log.Printf("%s %s correlationId=%s start", r.Method, r.URL.Path, id)

		ctx := context.WithValue(r.Context(), correlationIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))

		log.Printf("%s %s correlationId=%s done", r.Method, r.URL.Path, id)
	})
}

func correlationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationIDKey{}).(string)
	return id, ok
}
