package usecases_test

import (
	"testing"

	"github.com/samirrijal/detourmap/internal/core/domain"
	"github.com/samirrijal/detourmap/internal/core/usecases"
)

func TestObstructionPopup(t *testing.T) {
	tests := []struct {
		name string
		o    domain.Obstruction
		want string
	}{
		{"with reason", domain.Obstruction{ID: "flood-1", Reason: "Flood"}, "<strong>flood-1</strong><br/>Flood"},
		{"no reason", domain.Obstruction{ID: "b-2"}, "<strong>b-2</strong><br/>"},
		{"escaped", domain.Obstruction{ID: "<x>", Reason: "a & b"}, "<strong>&lt;x&gt;</strong><br/>a &amp; b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := usecases.ObstructionPopup(tt.o); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObstructionLayer_Feature(t *testing.T) {
	spec := usecases.ObstructionLayer(obstruction("flood-1", true))

	if spec.Kind != domain.LayerObstruction {
		t.Errorf("expected obstruction kind, got %s", spec.Kind)
	}
	if spec.Feature.ID != "flood-1" {
		t.Errorf("expected feature id flood-1, got %v", spec.Feature.ID)
	}
	if !spec.Feature.Properties.MustBool("collided") {
		t.Error("expected collided property")
	}
	if spec.Feature.Geometry.GeoJSONType() != "Polygon" {
		t.Errorf("expected Polygon geometry, got %s", spec.Feature.Geometry.GeoJSONType())
	}
	if spec.Style != usecases.EmphasizedStyle {
		t.Errorf("expected emphasized style, got %+v", spec.Style)
	}
}
