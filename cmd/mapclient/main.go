package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/detourmap/internal/adapters/http"
	"github.com/samirrijal/detourmap/internal/adapters/maphost"
	natsadapter "github.com/samirrijal/detourmap/internal/adapters/nats"
	"github.com/samirrijal/detourmap/internal/adapters/routeapi"
	"github.com/samirrijal/detourmap/internal/core/domain"
	"github.com/samirrijal/detourmap/internal/core/ports"
	"github.com/samirrijal/detourmap/internal/core/usecases"
	"github.com/samirrijal/detourmap/internal/pkg/config"
	"github.com/samirrijal/detourmap/internal/pkg/logging"
	"github.com/samirrijal/detourmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("detourmap-mapclient")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Layer events go through NATS when configured so other consumers can
	// follow them; otherwise they stay in-process. Replicas share the subject,
	// and each browser only follows the surface of the replica it is connected to.
	var (
		publisher ports.LayerEventPublisher
		feed      http.EventFeed
		broker    http.BrokerStatus
	)
	if cfg.NATS.Enabled() {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			slog.Warn("nats unavailable, using in-process events", "error", err)
		} else {
			defer pub.Close()

			conn, err := natsadapter.RawConn(cfg.NATS.URL)
			if err != nil {
				slog.Warn("nats relay conn unavailable, using in-process events", "error", err)
			} else {
				relay := natsadapter.NewRelay(conn, cfg.NATS.Subject)
				defer relay.Close()
				publisher, feed, broker = pub, relay, pub
			}
		}
	}
	if publisher == nil {
		hub := maphost.NewHub()
		publisher, feed = hub, hub
	}

	// Map surface
	surface := maphost.NewSurface(publisher)
	start, end := cfg.Route.Start(), cfg.Route.End()
	surface.CreateMap(domain.Midpoint(start, end), cfg.Map.Zoom)
	surface.AddTileLayer(cfg.Map.TileURL)

	// Route planner client
	client := routeapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.TimeoutDuration())

	// Session
	session := usecases.NewSyncController(
		client,
		usecases.NewGeometryStore(),
		usecases.NewOverlayRegistry(surface),
		start, end,
	)

	deps := &http.Dependencies{
		Session: session,
		Surface: surface,
		Backend: client,
		Feed:    feed,
		Broker:  broker,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Detourmap",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("map client starting", "addr", addr, "backend", cfg.Backend.BaseURL)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	// Drop any late planner response and clear the map.
	session.Teardown()

	slog.Info("server stopped")
}
