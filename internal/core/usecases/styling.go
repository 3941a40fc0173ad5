package usecases

import (
	"html"

	"github.com/paulmach/orb/geojson"
	"github.com/samirrijal/detourmap/internal/core/domain"
)

var (
	// RouteStyle matches Leaflet's default path style.
	RouteStyle = domain.Style{Color: "#3388ff", Weight: 3, FillOpacity: 0.2}
	// EmphasizedStyle marks an obstruction the route collided with.
	EmphasizedStyle = domain.Style{Color: "red", Weight: 2, FillOpacity: 0.4}
	// MutedStyle marks an obstruction the route avoided.
	MutedStyle = domain.Style{Color: "gray", Weight: 2, FillOpacity: 0.1}
)

// ObstructionStyle picks the style for o from its collided flag alone.
func ObstructionStyle(o domain.Obstruction) domain.Style {
	if o.Collided {
		return EmphasizedStyle
	}
	return MutedStyle
}

// ObstructionPopup renders the popup HTML: the id in bold, then the reason.
func ObstructionPopup(o domain.Obstruction) string {
	return "<strong>" + html.EscapeString(o.ID) + "</strong><br/>" + html.EscapeString(o.Reason)
}

// RouteLayer builds the layer spec for a route geometry.
func RouteLayer(g domain.RouteGeometry) domain.LayerSpec {
	f := geojson.NewFeature(g.LineString())
	f.Properties["kind"] = string(domain.LayerRoute)
	return domain.LayerSpec{
		Kind:    domain.LayerRoute,
		Feature: f,
		Style:   RouteStyle,
	}
}

// ObstructionLayer builds the styled layer spec for one obstruction.
func ObstructionLayer(o domain.Obstruction) domain.LayerSpec {
	f := geojson.NewFeature(o.Geometry.Orb())
	f.ID = o.ID
	f.Properties["kind"] = string(domain.LayerObstruction)
	f.Properties["collided"] = o.Collided
	if o.Reason != "" {
		f.Properties["reason"] = o.Reason
	}
	return domain.LayerSpec{
		Kind:    domain.LayerObstruction,
		Feature: f,
		Style:   ObstructionStyle(o),
		Popup:   ObstructionPopup(o),
	}
}

// ObstructionLayers builds one layer spec per obstruction, preserving order.
func ObstructionLayers(obs []domain.Obstruction) []domain.LayerSpec {
	specs := make([]domain.LayerSpec, len(obs))
	for i, o := range obs {
		specs[i] = ObstructionLayer(o)
	}
	return specs
}
