package geospatial

import (
	"github.com/twpayne/go-polyline"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

// EncodePolyline encodes the route in Google's encoded polyline format (lat, lon order).
func EncodePolyline(g domain.RouteGeometry) string {
	coords := make([][]float64, len(g.Coordinates))
	for i, c := range g.Coordinates {
		coords[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(coords))
}
