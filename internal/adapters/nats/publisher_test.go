package natsadapter

import (
	"testing"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

func TestEventSubject(t *testing.T) {
	tests := []struct {
		prefix string
		op     domain.LayerOp
		want   string
	}{
		{"detourmap.layers", domain.OpAddLayer, "detourmap.layers.add"},
		{"detourmap.layers.", domain.OpRemoveLayer, "detourmap.layers.remove"},
		{"maps", domain.OpCreateMap, "maps.map"},
	}
	for _, tt := range tests {
		if got := EventSubject(tt.prefix, tt.op); got != tt.want {
			t.Errorf("EventSubject(%q, %q) = %q, want %q", tt.prefix, tt.op, got, tt.want)
		}
	}
}
