package usecases

import (
	"sync"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

// GeometryStore holds the route geometry last received from the planner.
type GeometryStore struct {
	mu    sync.RWMutex
	route domain.RouteGeometry
	set   bool
}

// NewGeometryStore creates an empty GeometryStore.
func NewGeometryStore() *GeometryStore {
	return &GeometryStore{}
}

// Get returns a copy of the current geometry, or false when none has been stored.
func (s *GeometryStore) Get() (domain.RouteGeometry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return domain.RouteGeometry{}, false
	}
	return s.route.Clone(), true
}

// Set replaces the stored geometry. No history is kept.
func (s *GeometryStore) Set(g domain.RouteGeometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = g.Clone()
	s.set = true
}
