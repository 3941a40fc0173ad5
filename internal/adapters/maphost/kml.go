package maphost

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-kml"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

var namedColors = map[string]color.RGBA{
	"red":    {R: 0xff, A: 0xff},
	"gray":   {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"grey":   {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"blue":   {B: 0xff, A: 0xff},
	"green":  {G: 0x80, A: 0xff},
	"orange": {R: 0xff, G: 0xa5, A: 0xff},
	"black":  {A: 0xff},
	"white":  {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
}

// WriteKML writes the live layers as a KML document named name.
func (s *Surface) WriteKML(w io.Writer, name string) error {
	return s.KML(name).WriteIndent(w, "", "  ")
}

// KML renders the live layers as a KML document, one placemark per layer and
// one shared style per distinct layer style.
func (s *Surface) KML(name string) *kml.CompoundElement {
	doc := kml.Document(kml.Name(name))

	styles := make(map[domain.Style]*kml.SharedElement)
	var placemarks []kml.Element

	for _, l := range s.Layers() {
		if l.Spec.Feature == nil {
			continue
		}
		geom := kmlGeometry(l.Spec.Feature.Geometry)
		if geom == nil {
			continue
		}

		style, ok := styles[l.Spec.Style]
		if !ok {
			style = kmlStyle(fmt.Sprintf("style-%d", len(styles)+1), l.Spec.Style)
			styles[l.Spec.Style] = style
			doc.Add(style)
		}

		pm := kml.Placemark(
			kml.Name(placemarkName(l)),
			kml.StyleURL(style.URL()),
			geom,
		)
		if l.Spec.Popup != "" {
			pm.Add(kml.Description(l.Spec.Popup))
		}
		placemarks = append(placemarks, pm)
	}

	doc.Add(placemarks...)
	return kml.KML(doc)
}

func placemarkName(l Layer) string {
	switch id := l.Spec.Feature.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case nil:
	default:
		return fmt.Sprint(id)
	}
	return string(l.Handle.Kind)
}

func kmlStyle(id string, st domain.Style) *kml.SharedElement {
	line := parseColor(st.Color)
	fill := line
	fill.A = uint8(clamp01(st.FillOpacity) * 0xff)
	return kml.SharedStyle(id,
		kml.LineStyle(
			kml.Color(line),
			kml.Width(float64(st.Weight)),
		),
		kml.PolyStyle(
			kml.Color(fill),
			kml.Fill(true),
			kml.Outline(true),
		),
	)
}

func kmlGeometry(g orb.Geometry) kml.Element {
	switch g := g.(type) {
	case orb.LineString:
		return kml.LineString(kmlCoordinates(g))
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		children := []kml.Element{kml.OuterBoundaryIs(kml.LinearRing(kmlCoordinates(g[0])))}
		for _, hole := range g[1:] {
			children = append(children, kml.InnerBoundaryIs(kml.LinearRing(kmlCoordinates(hole))))
		}
		return kml.Polygon(children...)
	default:
		return nil
	}
}

func kmlCoordinates(pts []orb.Point) *kml.CoordinatesElement {
	coords := make([]kml.Coordinate, len(pts))
	for i, p := range pts {
		coords[i] = kml.Coordinate{Lon: p.Lon(), Lat: p.Lat()}
	}
	return kml.Coordinates(coords...)
}

// parseColor understands CSS hex (#rgb, #rrggbb) and a few color names. Anything else is gray.
func parseColor(s string) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 {
			if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
				return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
			}
		}
	}
	return namedColors["gray"]
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
