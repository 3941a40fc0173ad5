package usecases

import (
	"github.com/samirrijal/detourmap/internal/core/domain"
	"github.com/samirrijal/detourmap/internal/core/ports"
)

// OverlayRegistry owns every layer handle drawn on the map host: at most one
// route layer and the obstruction layers of the latest adjustment.
// It is not safe for concurrent use; SyncController serializes access.
type OverlayRegistry struct {
	host         ports.MapHost
	route        *domain.LayerHandle
	obstructions []domain.LayerHandle
}

// NewOverlayRegistry creates a registry drawing into host.
func NewOverlayRegistry(host ports.MapHost) *OverlayRegistry {
	return &OverlayRegistry{host: host}
}

// ReplaceRoute removes the tracked route layer, draws spec and tracks the result.
func (r *OverlayRegistry) ReplaceRoute(spec domain.LayerSpec) domain.LayerHandle {
	if r.route != nil {
		r.host.RemoveLayer(*r.route)
		r.route = nil
	}
	spec.Kind = domain.LayerRoute
	h := r.host.DrawGeoJSON(spec)
	r.route = &h
	return h
}

// ReplaceObstructions removes every tracked obstruction layer, then draws and tracks specs in order.
func (r *OverlayRegistry) ReplaceObstructions(specs []domain.LayerSpec) []domain.LayerHandle {
	for _, h := range r.obstructions {
		r.host.RemoveLayer(h)
	}
	r.obstructions = nil

	handles := make([]domain.LayerHandle, 0, len(specs))
	for _, spec := range specs {
		spec.Kind = domain.LayerObstruction
		handles = append(handles, r.host.DrawGeoJSON(spec))
	}
	r.obstructions = handles
	return r.ObstructionLayers()
}

// ClearAll removes the route layer and every obstruction layer.
func (r *OverlayRegistry) ClearAll() {
	if r.route != nil {
		r.host.RemoveLayer(*r.route)
		r.route = nil
	}
	for _, h := range r.obstructions {
		r.host.RemoveLayer(h)
	}
	r.obstructions = nil
}

// RouteLayer returns the tracked route layer, if any.
func (r *OverlayRegistry) RouteLayer() (domain.LayerHandle, bool) {
	if r.route == nil {
		return domain.LayerHandle{}, false
	}
	return *r.route, true
}

// ObstructionLayers returns a copy of the tracked obstruction handles.
func (r *OverlayRegistry) ObstructionLayers() []domain.LayerHandle {
	out := make([]domain.LayerHandle, len(r.obstructions))
	copy(out, r.obstructions)
	return out
}
