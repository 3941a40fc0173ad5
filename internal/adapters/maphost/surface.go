// Package maphost implements the map surface the session draws into. Every
// mutation becomes a sequenced LayerEvent fanned out to browsers and brokers;
// the surface also keeps the live layer set for snapshots and exports.
package maphost

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/detourmap/internal/core/domain"
	"github.com/samirrijal/detourmap/internal/core/ports"
	"github.com/samirrijal/detourmap/internal/pkg/metrics"
)

// Layer is a live layer on the surface.
type Layer struct {
	Handle domain.LayerHandle
	Spec   domain.LayerSpec
}

// Surface implements ports.MapHost.
type Surface struct {
	id         string
	mu         sync.RWMutex
	seq        uint64
	mapHandle  *domain.MapHandle
	tileURL    string
	layers     map[string]domain.LayerSpec
	order      []string
	publishers []ports.LayerEventPublisher
	now        func() time.Time
}

// NewSurface creates an empty surface publishing its events to publishers.
func NewSurface(publishers ...ports.LayerEventPublisher) *Surface {
	return &Surface{
		id:         uuid.NewString(),
		layers:     make(map[string]domain.LayerSpec),
		publishers: publishers,
		now:        time.Now,
	}
}

// ID identifies this surface in the events it emits. Surfaces sharing a
// broker subject tell their events apart by it.
func (s *Surface) ID() string {
	return s.id
}

// CreateMap sets the initial view. Calling it again replaces the view.
func (s *Surface) CreateMap(center domain.Coordinate, zoom int) domain.MapHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := domain.MapHandle{ID: uuid.NewString(), Center: center, Zoom: zoom}
	s.mapHandle = &h
	c := center
	s.emitLocked(&domain.LayerEvent{Op: domain.OpCreateMap, Center: &c, Zoom: zoom})
	return h
}

// AddTileLayer sets the base tile layer URL template.
func (s *Surface) AddTileLayer(urlTemplate string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tileURL = urlTemplate
	s.emitLocked(&domain.LayerEvent{Op: domain.OpTileLayer, TileURL: urlTemplate})
}

// DrawGeoJSON adds a layer and returns its handle.
func (s *Surface) DrawGeoJSON(spec domain.LayerSpec) domain.LayerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := domain.LayerHandle{ID: uuid.NewString(), Kind: spec.Kind}
	s.layers[h.ID] = spec
	s.order = append(s.order, h.ID)
	metrics.LiveLayers.WithLabelValues(string(spec.Kind)).Inc()

	style := spec.Style
	s.emitLocked(&domain.LayerEvent{
		Op:      domain.OpAddLayer,
		LayerID: h.ID,
		Kind:    spec.Kind,
		Feature: spec.Feature,
		Style:   &style,
		Popup:   spec.Popup,
	})
	return h
}

// RemoveLayer removes a layer. Unknown handles are ignored.
func (s *Surface) RemoveLayer(h domain.LayerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec, ok := s.layers[h.ID]
	if !ok {
		return
	}
	delete(s.layers, h.ID)
	for i, id := range s.order {
		if id == h.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	metrics.LiveLayers.WithLabelValues(string(spec.Kind)).Dec()

	s.emitLocked(&domain.LayerEvent{Op: domain.OpRemoveLayer, LayerID: h.ID, Kind: spec.Kind})
}

// MapHandle returns the current map view, if CreateMap was called.
func (s *Surface) MapHandle() (domain.MapHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mapHandle == nil {
		return domain.MapHandle{}, false
	}
	return *s.mapHandle, true
}

// Layers returns the live layers in draw order.
func (s *Surface) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layersLocked()
}

// Count returns the number of live layers of the given kind.
func (s *Surface) Count(kind domain.LayerKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, spec := range s.layers {
		if spec.Kind == kind {
			n++
		}
	}
	return n
}

// Replay returns the events that rebuild the current surface from scratch,
// starting with a reset, and the sequence number they are current as of.
func (s *Surface) Replay() ([]domain.LayerEvent, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	events := []domain.LayerEvent{{Surface: s.id, Seq: s.seq, Op: domain.OpReset, Time: now}}
	if s.mapHandle != nil {
		c := s.mapHandle.Center
		events = append(events, domain.LayerEvent{Surface: s.id, Seq: s.seq, Op: domain.OpCreateMap, Time: now, Center: &c, Zoom: s.mapHandle.Zoom})
	}
	if s.tileURL != "" {
		events = append(events, domain.LayerEvent{Surface: s.id, Seq: s.seq, Op: domain.OpTileLayer, Time: now, TileURL: s.tileURL})
	}
	for _, l := range s.layersLocked() {
		style := l.Spec.Style
		events = append(events, domain.LayerEvent{
			Surface: s.id,
			Seq:     s.seq,
			Op:      domain.OpAddLayer,
			Time:    now,
			LayerID: l.Handle.ID,
			Kind:    l.Handle.Kind,
			Feature: l.Spec.Feature,
			Style:   &style,
			Popup:   l.Spec.Popup,
		})
	}
	return events, s.seq
}

// FeatureCollection returns the live layers as GeoJSON features with their
// layer id, kind, style and popup folded into the properties.
func (s *Surface) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range s.Layers() {
		if l.Spec.Feature == nil {
			continue
		}
		f := geojson.NewFeature(l.Spec.Feature.Geometry)
		f.ID = l.Spec.Feature.ID
		f.Properties = l.Spec.Feature.Properties.Clone()
		f.Properties["layer_id"] = l.Handle.ID
		f.Properties["kind"] = string(l.Handle.Kind)
		f.Properties["color"] = l.Spec.Style.Color
		f.Properties["weight"] = l.Spec.Style.Weight
		f.Properties["fillOpacity"] = l.Spec.Style.FillOpacity
		if l.Spec.Popup != "" {
			f.Properties["popup"] = l.Spec.Popup
		}
		fc.Append(f)
	}
	return fc
}

func (s *Surface) layersLocked() []Layer {
	out := make([]Layer, 0, len(s.order))
	for _, id := range s.order {
		spec := s.layers[id]
		out = append(out, Layer{Handle: domain.LayerHandle{ID: id, Kind: spec.Kind}, Spec: spec})
	}
	return out
}

// emitLocked stamps ev and hands it to every publisher while s.mu is held,
// so subscribers observe events in sequence order.
func (s *Surface) emitLocked(ev *domain.LayerEvent) {
	s.seq++
	ev.Surface = s.id
	ev.Seq = s.seq
	ev.Time = s.now()
	metrics.LayerEvents.WithLabelValues(string(ev.Op)).Inc()

	for _, p := range s.publishers {
		if err := p.PublishLayerEvent(context.Background(), ev); err != nil {
			metrics.LayerEventPublishErrors.Inc()
			slog.Warn("publish layer event failed", "op", ev.Op, "seq", ev.Seq, "error", err)
		}
	}
}
