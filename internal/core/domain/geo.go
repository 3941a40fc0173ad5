package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Coordinate represents a WGS 84 position. Wire formats order it [lon, lat].
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Valid reports whether both components are finite numbers.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Lon) && !math.IsInf(c.Lon, 0) &&
		!math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0)
}

// Point converts the coordinate to an orb point.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// CoordinateFromPoint converts an orb point to a Coordinate.
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Lon: p.Lon(), Lat: p.Lat()}
}

// Midpoint returns the arithmetic midpoint of two coordinates.
func Midpoint(a, b Coordinate) Coordinate {
	return Coordinate{Lon: (a.Lon + b.Lon) / 2, Lat: (a.Lat + b.Lat) / 2}
}

// RouteGeometry is an ordered LineString of at least two coordinates.
// Values are replaced wholesale; nothing mutates one in place.
type RouteGeometry struct {
	Coordinates []Coordinate `json:"coordinates"`
}

// NewRouteGeometry validates ls and copies it into a RouteGeometry.
func NewRouteGeometry(ls orb.LineString) (RouteGeometry, error) {
	if len(ls) < 2 {
		return RouteGeometry{}, fmt.Errorf("%w: line string has %d points, need at least 2", ErrInvalidGeometry, len(ls))
	}
	coords := make([]Coordinate, len(ls))
	for i, p := range ls {
		c := CoordinateFromPoint(p)
		if !c.Valid() {
			return RouteGeometry{}, fmt.Errorf("%w: point %d is not finite", ErrInvalidGeometry, i)
		}
		coords[i] = c
	}
	return RouteGeometry{Coordinates: coords}, nil
}

// LineString returns the geometry as an orb line string.
func (g RouteGeometry) LineString() orb.LineString {
	ls := make(orb.LineString, len(g.Coordinates))
	for i, c := range g.Coordinates {
		ls[i] = c.Point()
	}
	return ls
}

// Clone returns a deep copy.
func (g RouteGeometry) Clone() RouteGeometry {
	if g.Coordinates == nil {
		return RouteGeometry{}
	}
	coords := make([]Coordinate, len(g.Coordinates))
	copy(coords, g.Coordinates)
	return RouteGeometry{Coordinates: coords}
}

// Equal reports whether both geometries hold the same points in the same order.
func (g RouteGeometry) Equal(other RouteGeometry) bool {
	if len(g.Coordinates) != len(other.Coordinates) {
		return false
	}
	for i := range g.Coordinates {
		if g.Coordinates[i] != other.Coordinates[i] {
			return false
		}
	}
	return true
}

// Polygon is one outer ring followed by optional holes. Each ring has at least three positions.
type Polygon struct {
	Rings [][]Coordinate `json:"rings"`
}

// NewPolygon validates p and copies it into a Polygon.
func NewPolygon(p orb.Polygon) (Polygon, error) {
	if len(p) == 0 {
		return Polygon{}, fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
	}
	rings := make([][]Coordinate, len(p))
	for i, ring := range p {
		if len(ring) < 3 {
			return Polygon{}, fmt.Errorf("%w: ring %d has %d points, need at least 3", ErrInvalidGeometry, i, len(ring))
		}
		coords := make([]Coordinate, len(ring))
		for j, pt := range ring {
			c := CoordinateFromPoint(pt)
			if !c.Valid() {
				return Polygon{}, fmt.Errorf("%w: ring %d point %d is not finite", ErrInvalidGeometry, i, j)
			}
			coords[j] = c
		}
		rings[i] = coords
	}
	return Polygon{Rings: rings}, nil
}

// Orb returns the polygon as an orb polygon.
func (p Polygon) Orb() orb.Polygon {
	out := make(orb.Polygon, len(p.Rings))
	for i, ring := range p.Rings {
		r := make(orb.Ring, len(ring))
		for j, c := range ring {
			r[j] = c.Point()
		}
		out[i] = r
	}
	return out
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}
