package ports

import (
	"context"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

// RouteClient issues the two planner exchanges. Implementations never cache or retry.
type RouteClient interface {
	FetchInitialRoute(ctx context.Context, start, end domain.Coordinate) (domain.RouteGeometry, error)
	FetchAdjustment(ctx context.Context, route domain.RouteGeometry, description string) (*domain.Adjustment, error)
}

// BackendHealth probes the planner's liveness endpoint.
type BackendHealth interface {
	HealthCheck(ctx context.Context) error
}

// MapHost is the rendering surface. Draw and remove are fire-and-forget.
type MapHost interface {
	CreateMap(center domain.Coordinate, zoom int) domain.MapHandle
	AddTileLayer(urlTemplate string)
	DrawGeoJSON(spec domain.LayerSpec) domain.LayerHandle
	RemoveLayer(h domain.LayerHandle)
}

// LayerEventPublisher fans map surface events out to a message broker.
type LayerEventPublisher interface {
	PublishLayerEvent(ctx context.Context, ev *domain.LayerEvent) error
}
