package usecases

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samirrijal/detourmap/internal/core/domain"
	"github.com/samirrijal/detourmap/internal/core/ports"
)

// SyncController drives the route session: one planner exchange at a time,
// then the store update, then the overlay replacement.
type SyncController struct {
	client   ports.RouteClient
	store    *GeometryStore
	overlays *OverlayRegistry
	start    domain.Coordinate
	end      domain.Coordinate

	mu           sync.Mutex
	inFlight     bool
	generation   uint64
	obstructions []domain.Obstruction
	signature    string
}

// NewSyncController creates a SyncController for the fixed start/end pair.
func NewSyncController(
	client ports.RouteClient,
	store *GeometryStore,
	overlays *OverlayRegistry,
	start, end domain.Coordinate,
) *SyncController {
	return &SyncController{
		client:   client,
		store:    store,
		overlays: overlays,
		start:    start,
		end:      end,
	}
}

// Endpoints returns the configured start and end coordinates.
func (s *SyncController) Endpoints() (start, end domain.Coordinate) {
	return s.start, s.end
}

// RequestInitialRoute fetches the route between the fixed endpoints and draws it.
// Callable in any state. On failure nothing is mutated.
func (s *SyncController) RequestInitialRoute(ctx context.Context) (domain.Session, error) {
	gen, err := s.begin(false)
	if err != nil {
		return domain.Session{}, err
	}
	defer s.finish()

	route, err := s.client.FetchInitialRoute(ctx, s.start, s.end)
	if err != nil {
		slog.Warn("initial route request failed", "error", err)
		return domain.Session{}, err
	}

	spec := RouteLayer(route)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		slog.Info("discarding stale initial route response", "generation", gen)
		return domain.Session{}, domain.ErrStaleResponse
	}
	s.store.Set(route)
	s.overlays.ReplaceRoute(spec)

	slog.Info("initial route applied", "points", len(route.Coordinates))
	return s.snapshotLocked(), nil
}

// RequestAdjustment sends the current route and the blockade description to the
// planner and replaces the route and obstruction layers with its answer.
// Without a current route it returns ErrPreconditionViolation and never calls the planner.
func (s *SyncController) RequestAdjustment(ctx context.Context, description string) (domain.Session, error) {
	gen, err := s.begin(true)
	if err != nil {
		return domain.Session{}, err
	}
	defer s.finish()

	current, _ := s.store.Get()

	adj, err := s.client.FetchAdjustment(ctx, current, description)
	if err != nil {
		slog.Warn("adjustment request failed", "error", err)
		return domain.Session{}, err
	}

	routeSpec := RouteLayer(adj.Route)
	obstructionSpecs := ObstructionLayers(adj.Blockades)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		slog.Info("discarding stale adjustment response", "generation", gen)
		return domain.Session{}, domain.ErrStaleResponse
	}
	s.store.Set(adj.Route)
	s.overlays.ReplaceRoute(routeSpec)
	s.overlays.ReplaceObstructions(obstructionSpecs)
	s.obstructions = append([]domain.Obstruction(nil), adj.Blockades...)
	s.signature = adj.CollisionSignature

	collided := 0
	for _, o := range adj.Blockades {
		if o.Collided {
			collided++
		}
	}
	slog.Info("adjustment applied",
		"points", len(adj.Route.Coordinates),
		"blockades", len(adj.Blockades),
		"collided", collided,
	)
	return s.snapshotLocked(), nil
}

// Teardown removes every drawn layer and invalidates any outstanding response.
// The stored geometry is kept so a later adjustment can still use it.
func (s *SyncController) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.overlays.ClearAll()
	s.obstructions = nil
	s.signature = ""
	slog.Info("session torn down", "generation", s.generation)
}

// Session returns a snapshot of the current state.
func (s *SyncController) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// begin claims the single request slot. With needRoute set, an empty store is a
// precondition violation and the slot is not claimed.
func (s *SyncController) begin(needRoute bool) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if needRoute {
		if _, ok := s.store.Get(); !ok {
			return 0, domain.ErrPreconditionViolation
		}
	}
	if s.inFlight {
		return 0, domain.ErrRequestInFlight
	}
	s.inFlight = true
	return s.generation, nil
}

func (s *SyncController) finish() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func (s *SyncController) snapshotLocked() domain.Session {
	sess := domain.Session{
		State:              domain.StateNoRoute,
		Obstructions:       append([]domain.Obstruction{}, s.obstructions...),
		CollisionSignature: s.signature,
		ObstructionLayers:  s.overlays.ObstructionLayers(),
		Busy:               s.inFlight,
	}
	if g, ok := s.store.Get(); ok {
		sess.State = domain.StateHasRoute
		sess.Route = &g
	}
	if h, ok := s.overlays.RouteLayer(); ok {
		sess.RouteLayer = &h
	}
	return sess
}
