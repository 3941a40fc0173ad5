package geospatial

import (
	"math"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// RouteLength sums the great-circle length of every segment, in meters.
func RouteLength(g domain.RouteGeometry) float64 {
	var total float64
	for i := 1; i < len(g.Coordinates); i++ {
		a, b := g.Coordinates[i-1], g.Coordinates[i]
		total += Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
	}
	return total
}

// RouteBounds returns the bounding box of the route.
func RouteBounds(g domain.RouteGeometry) domain.Bounds {
	if len(g.Coordinates) == 0 {
		return domain.Bounds{}
	}
	b := domain.Bounds{
		MinLat: math.Inf(1), MinLon: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLon: math.Inf(-1),
	}
	for _, c := range g.Coordinates {
		b.MinLat = math.Min(b.MinLat, c.Lat)
		b.MinLon = math.Min(b.MinLon, c.Lon)
		b.MaxLat = math.Max(b.MaxLat, c.Lat)
		b.MaxLon = math.Max(b.MaxLon, c.Lon)
	}
	return b
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
