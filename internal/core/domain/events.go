package domain

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// LayerOp is the kind of change a LayerEvent describes.
type LayerOp string

const (
	OpCreateMap   LayerOp = "map"
	OpTileLayer   LayerOp = "tiles"
	OpAddLayer    LayerOp = "add"
	OpRemoveLayer LayerOp = "remove"
	// OpReset tells a viewer to drop every layer it holds; a replay starts with it.
	OpReset LayerOp = "reset"
)

// LayerEvent is one mutation of the map surface, pushed to browsers and to the broker.
// Seq is contiguous per surface; Surface names the surface that emitted it.
type LayerEvent struct {
	Surface string           `json:"surface"`
	Seq     uint64           `json:"seq"`
	Op      LayerOp          `json:"op"`
	Time    time.Time        `json:"time"`
	LayerID string           `json:"layer_id,omitempty"`
	Kind    LayerKind        `json:"kind,omitempty"`
	Feature *geojson.Feature `json:"feature,omitempty"`
	Style   *Style           `json:"style,omitempty"`
	Popup   string           `json:"popup,omitempty"`
	Center  *Coordinate      `json:"center,omitempty"`
	Zoom    int              `json:"zoom,omitempty"`
	TileURL string           `json:"tile_url,omitempty"`
}
