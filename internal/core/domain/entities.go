package domain

import (
	"github.com/paulmach/orb/geojson"
)

// Obstruction is a candidate blockade polygon reported by the planner.
type Obstruction struct {
	ID       string  `json:"id"`
	Collided bool    `json:"collided"`
	Reason   string  `json:"reason,omitempty"`
	Geometry Polygon `json:"geometry"`
}

// Adjustment is the planner's answer to a blockade description.
type Adjustment struct {
	Route              RouteGeometry `json:"route"`
	Blockades          []Obstruction `json:"blockades"`
	CollisionSignature string        `json:"collision_signature,omitempty"`
}

// RouteState is the position of the session in its state machine.
type RouteState string

const (
	StateNoRoute  RouteState = "no_route"
	StateHasRoute RouteState = "has_route"
)

// LayerKind tags a drawn layer.
type LayerKind string

const (
	LayerRoute       LayerKind = "route"
	LayerObstruction LayerKind = "obstruction"
)

// LayerHandle is an opaque reference to a shape drawn on the map host.
type LayerHandle struct {
	ID   string    `json:"id"`
	Kind LayerKind `json:"kind"`
}

// MapHandle identifies the map created on the host.
type MapHandle struct {
	ID     string     `json:"id"`
	Center Coordinate `json:"center"`
	Zoom   int        `json:"zoom"`
}

// Style is the path style applied to a drawn layer.
type Style struct {
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	FillOpacity float64 `json:"fillOpacity"`
}

// LayerSpec describes a layer to draw: a GeoJSON feature, its style and an optional HTML popup.
type LayerSpec struct {
	Kind    LayerKind        `json:"kind"`
	Feature *geojson.Feature `json:"feature"`
	Style   Style            `json:"style"`
	Popup   string           `json:"popup,omitempty"`
}

// Session is a point-in-time view of the synchronization state.
type Session struct {
	State              RouteState     `json:"state"`
	Route              *RouteGeometry `json:"route,omitempty"`
	Obstructions       []Obstruction  `json:"obstructions"`
	CollisionSignature string         `json:"collision_signature,omitempty"`
	RouteLayer         *LayerHandle   `json:"route_layer,omitempty"`
	ObstructionLayers  []LayerHandle  `json:"obstruction_layers"`
	Busy               bool           `json:"busy"`
}
