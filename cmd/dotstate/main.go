package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abw750/ferryAPI3/internal/assembler"
	"github.com/abw750/ferryAPI3/internal/capacity"
	"github.com/abw750/ferryAPI3/internal/catalog"
	"github.com/abw750/ferryAPI3/internal/config"
	"github.com/abw750/ferryAPI3/internal/dockarc"
	"github.com/abw750/ferryAPI3/internal/httpapi"
	"github.com/abw750/ferryAPI3/internal/lanecache"
	"github.com/abw750/ferryAPI3/internal/metrics"
	"github.com/abw750/ferryAPI3/internal/terminals"
	"github.com/abw750/ferryAPI3/internal/upstream"
)

func main() {
	log.Println("Starting ferry dot-state service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// ═══════════════════════════════════════════════════════
	// PHASE 1: Build the components
	// ═══════════════════════════════════════════════════════
	m := metrics.New()

	client, err := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, upstream.WithMetrics(m))
	if err != nil {
		log.Fatalf("Failed to build upstream client: %v", err)
	}

	cat := catalog.Default()
	terminalResolver := terminals.NewResolver(terminals.DefaultTable())
	laneCache := lanecache.New()
	dockArc := dockarc.New()
	capacityDeriver := capacity.New()

	asm := assembler.New(cat, terminalResolver, client, laneCache, dockArc, capacityDeriver)

	// ═══════════════════════════════════════════════════════
	// PHASE 2: Start the HTTP server
	// ═══════════════════════════════════════════════════════
	router := httpapi.NewRouter(asm, cat, m, cfg.CORSAllowOrigin)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Listening on :%s", cfg.Port)
		log.Println("Routes:")
		log.Println("  GET /api/routes")
		log.Println("  GET /api/routes/{routeId}/snapshot")
		log.Println("  GET /health, /healthz")
		log.Println("  GET /metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// ═══════════════════════════════════════════════════════
	// PHASE 3: Graceful shutdown
	// ═══════════════════════════════════════════════════════
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Goodbye!")
}
