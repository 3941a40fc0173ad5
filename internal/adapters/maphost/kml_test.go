package maphost

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurface_WriteKML(t *testing.T) {
	s := NewSurface()
	s.DrawGeoJSON(routeSpec())
	s.DrawGeoJSON(blockadeSpec("flood-1"))
	s.DrawGeoJSON(blockadeSpec("flood-2"))

	var buf bytes.Buffer
	require.NoError(t, s.WriteKML(&buf, "detourmap"))
	out := buf.String()

	assert.Contains(t, out, "<name>detourmap</name>")
	assert.Contains(t, out, "<name>flood-1</name>")
	assert.Contains(t, out, "<LineString>")
	assert.Equal(t, 2, strings.Count(out, "<Polygon>"))
	assert.Equal(t, 2, strings.Count(out, "<Style id="), "identical styles are shared")
	assert.Contains(t, out, "67.13,24.92")
}

func TestParseColor(t *testing.T) {
	tests := map[string]color.RGBA{
		"red":     {R: 0xff, A: 0xff},
		"#3388ff": {R: 0x33, G: 0x88, B: 0xff, A: 0xff},
		"#fff":    {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		"nope":    {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	}
	for in, want := range tests {
		assert.Equal(t, want, parseColor(in), in)
	}
}
