package routeapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

type initialRequest struct {
	Start [2]float64 `json:"start"`
	End   [2]float64 `json:"end"`
}

type initialResponse struct {
	Routes *[]struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"routes"`
}

type adjustRequest struct {
	Route       *geojson.Geometry `json:"route"`
	Description string            `json:"description"`
}

type adjustResponse struct {
	Route              json.RawMessage `json:"route"`
	Blockades          *[]wireBlockade `json:"blockades"`
	CollisionSignature string          `json:"collisionSignature"`
}

type wireBlockade struct {
	ID         json.RawMessage `json:"id"`
	Properties *struct {
		Collided *bool   `json:"collided"`
		Reason   *string `json:"reason"`
	} `json:"properties"`
	Geometry json.RawMessage `json:"geometry"`
}

func lineStringGeometry(g domain.RouteGeometry) *geojson.Geometry {
	return geojson.NewGeometry(g.LineString())
}

func (r *adjustResponse) toDomain() (*domain.Adjustment, error) {
	route, err := decodeLineString(r.Route)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	if r.Blockades == nil {
		return nil, fmt.Errorf("%w: blockades field missing", domain.ErrMalformedResponse)
	}

	blockades := make([]domain.Obstruction, 0, len(*r.Blockades))
	for i, b := range *r.Blockades {
		o, err := b.toDomain()
		if err != nil {
			return nil, fmt.Errorf("blockades[%d]: %w", i, err)
		}
		blockades = append(blockades, o)
	}

	return &domain.Adjustment{
		Route:              route,
		Blockades:          blockades,
		CollisionSignature: r.CollisionSignature,
	}, nil
}

func (b wireBlockade) toDomain() (domain.Obstruction, error) {
	id, err := decodeID(b.ID)
	if err != nil {
		return domain.Obstruction{}, err
	}
	if b.Properties == nil || b.Properties.Collided == nil {
		return domain.Obstruction{}, fmt.Errorf("%w: properties.collided missing", domain.ErrMalformedResponse)
	}
	poly, err := decodePolygon(b.Geometry)
	if err != nil {
		return domain.Obstruction{}, fmt.Errorf("geometry: %w", err)
	}

	o := domain.Obstruction{
		ID:       id,
		Collided: *b.Properties.Collided,
		Geometry: poly,
	}
	if b.Properties.Reason != nil {
		o.Reason = *b.Properties.Reason
	}
	return o, nil
}

// decodeID accepts a JSON string or number, as GeoJSON feature ids may be either.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return "", fmt.Errorf("%w: id missing", domain.ErrMalformedResponse)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "", fmt.Errorf("%w: id must be a non-empty string", domain.ErrMalformedResponse)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: id must be a string or number", domain.ErrMalformedResponse)
	}
	return n.String(), nil
}

func decodeLineString(raw json.RawMessage) (domain.RouteGeometry, error) {
	geom, err := decodeGeometry(raw)
	if err != nil {
		return domain.RouteGeometry{}, err
	}
	ls, ok := geom.(orb.LineString)
	if !ok {
		return domain.RouteGeometry{}, fmt.Errorf("%w: expected LineString, got %s", domain.ErrMalformedResponse, geom.GeoJSONType())
	}
	g, err := domain.NewRouteGeometry(ls)
	if err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return g, nil
}

func decodePolygon(raw json.RawMessage) (domain.Polygon, error) {
	geom, err := decodeGeometry(raw)
	if err != nil {
		return domain.Polygon{}, err
	}
	poly, ok := geom.(orb.Polygon)
	if !ok {
		return domain.Polygon{}, fmt.Errorf("%w: expected Polygon, got %s", domain.ErrMalformedResponse, geom.GeoJSONType())
	}
	p, err := domain.NewPolygon(poly)
	if err != nil {
		return domain.Polygon{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return p, nil
}

func decodeGeometry(raw json.RawMessage) (orb.Geometry, error) {
	if isNull(bytes.TrimSpace(raw)) {
		return nil, fmt.Errorf("%w: geometry missing", domain.ErrMalformedResponse)
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if g.Coordinates == nil {
		return nil, fmt.Errorf("%w: geometry has no coordinates", domain.ErrMalformedResponse)
	}
	return g.Coordinates, nil
}

func isNull(raw []byte) bool {
	return len(raw) == 0 || string(raw) == "null"
}
