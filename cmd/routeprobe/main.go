// Command routeprobe runs one session against the route planner without a
// browser: it fetches the initial route, optionally adjusts it around a
// described blockade, and writes the resulting map as KML to stdout.
//
//	routeprobe                       initial route only
//	routeprobe "Flood on Elm St"     initial route, then adjustment
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samirrijal/detourmap/internal/adapters/maphost"
	"github.com/samirrijal/detourmap/internal/adapters/routeapi"
	"github.com/samirrijal/detourmap/internal/core/domain"
	"github.com/samirrijal/detourmap/internal/core/usecases"
	"github.com/samirrijal/detourmap/internal/pkg/config"
	"github.com/samirrijal/detourmap/internal/pkg/geospatial"
	"github.com/samirrijal/detourmap/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("detourmap-routeprobe")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// stdout carries the KML
	logging.SetupWriter(os.Stderr, cfg.Log.Level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	surface := maphost.NewSurface()
	start, end := cfg.Route.Start(), cfg.Route.End()
	surface.CreateMap(domain.Midpoint(start, end), cfg.Map.Zoom)

	client := routeapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.TimeoutDuration())
	session := usecases.NewSyncController(
		client,
		usecases.NewGeometryStore(),
		usecases.NewOverlayRegistry(surface),
		start, end,
	)

	sess, err := session.RequestInitialRoute(ctx)
	if err != nil {
		slog.Error("initial route failed", "code", domain.ErrorCode(err), "error", err)
		os.Exit(1)
	}
	report("initial", sess)

	if len(os.Args) > 1 {
		sess, err = session.RequestAdjustment(ctx, os.Args[1])
		if err != nil {
			slog.Error("adjustment failed", "code", domain.ErrorCode(err), "error", err)
			os.Exit(1)
		}
		report("adjusted", sess)
	}

	if err := surface.WriteKML(os.Stdout, "detourmap"); err != nil {
		log.Fatalf("write kml: %v", err)
	}
	fmt.Fprintln(os.Stdout)
}

func report(stage string, sess domain.Session) {
	attrs := []any{"state", sess.State, "obstructions", len(sess.Obstructions)}
	if sess.Route != nil {
		attrs = append(attrs,
			"points", len(sess.Route.Coordinates),
			"length_m", int(geospatial.RouteLength(*sess.Route)),
			"polyline", geospatial.EncodePolyline(*sess.Route),
		)
	}
	if sess.CollisionSignature != "" {
		attrs = append(attrs, "collision_signature", sess.CollisionSignature)
	}
	slog.Info(stage+" route", attrs...)
}
