package usecases_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

// --- Mock RouteClient ---

type mockRouteClient struct {
	fetchInitialFn    func(ctx context.Context, start, end domain.Coordinate) (domain.RouteGeometry, error)
	fetchAdjustmentFn func(ctx context.Context, route domain.RouteGeometry, description string) (*domain.Adjustment, error)

	mu              sync.Mutex
	initialCalls    int
	adjustmentCalls int
	lastRoute       domain.RouteGeometry
	lastDescription string
}

func (m *mockRouteClient) FetchInitialRoute(ctx context.Context, start, end domain.Coordinate) (domain.RouteGeometry, error) {
	m.mu.Lock()
	m.initialCalls++
	m.mu.Unlock()
	if m.fetchInitialFn != nil {
		return m.fetchInitialFn(ctx, start, end)
	}
	return domain.RouteGeometry{}, domain.ErrEmptyRouteSet
}

func (m *mockRouteClient) FetchAdjustment(ctx context.Context, route domain.RouteGeometry, description string) (*domain.Adjustment, error) {
	m.mu.Lock()
	m.adjustmentCalls++
	m.lastRoute = route
	m.lastDescription = description
	m.mu.Unlock()
	if m.fetchAdjustmentFn != nil {
		return m.fetchAdjustmentFn(ctx, route, description)
	}
	return nil, domain.ErrTransportFailure
}

// --- Fake MapHost ---

type fakeMapHost struct {
	next    int
	live    map[string]domain.LayerSpec
	draws   int
	removes int
	// removed counts every RemoveLayer call per id so double removals are visible.
	removed map[string]int
}

func newFakeMapHost() *fakeMapHost {
	return &fakeMapHost{live: map[string]domain.LayerSpec{}, removed: map[string]int{}}
}

func (h *fakeMapHost) CreateMap(center domain.Coordinate, zoom int) domain.MapHandle {
	return domain.MapHandle{ID: "map", Center: center, Zoom: zoom}
}

func (h *fakeMapHost) AddTileLayer(string) {}

func (h *fakeMapHost) DrawGeoJSON(spec domain.LayerSpec) domain.LayerHandle {
	h.next++
	h.draws++
	id := fmt.Sprintf("layer-%d", h.next)
	h.live[id] = spec
	return domain.LayerHandle{ID: id, Kind: spec.Kind}
}

func (h *fakeMapHost) RemoveLayer(l domain.LayerHandle) {
	h.removes++
	h.removed[l.ID]++
	delete(h.live, l.ID)
}

func (h *fakeMapHost) count(kind domain.LayerKind) int {
	n := 0
	for _, s := range h.live {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

func (h *fakeMapHost) layers(kind domain.LayerKind) []domain.LayerSpec {
	var out []domain.LayerSpec
	for _, s := range h.live {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
