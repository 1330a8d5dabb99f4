package exifgps

import (
	"encoding/json"
	"testing"

	"github.com/kozaktomas/field-reports/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRationals(t *testing.T) {
	raw := `{
		"GPSLatitude": ["40/1", "26/1", "4600/100"],
		"GPSLatitudeRef": "N",
		"GPSLongitude": ["79/1", "58/1", "5600/100"],
		"GPSLongitudeRef": "W",
		"Orientation": 6
	}`
	p, ok := Extract([]byte(raw))
	require.True(t, ok)
	assert.InDelta(t, 40.446111, p.Lat, 1e-5)
	assert.InDelta(t, -79.982222, p.Lng, 1e-5)
}

func TestExtractPlainNumbers(t *testing.T) {
	raw := `{"GPSLatitude": [33, 52, "4.68"], "GPSLatitudeRef": "S",
		"GPSLongitude": [151, 12, 33.48], "GPSLongitudeRef": "E"}`
	p, ok := Extract([]byte(raw))
	require.True(t, ok)
	assert.InDelta(t, -33.8680, p.Lat, 1e-4)
	assert.InDelta(t, 151.2093, p.Lng, 1e-4)
}

func TestExtractNestedGPSSection(t *testing.T) {
	raw := `{"GPS": {"GPSLatitude": ["50/1","5/1","15/1"], "GPSLatitudeRef": "N",
		"GPSLongitude": ["14/1","25/1","17/1"], "GPSLongitudeRef": "E"}}`
	p, ok := Extract([]byte(raw))
	require.True(t, ok)
	assert.InDelta(t, 50.0875, p.Lat, 1e-4)
}

func TestExtractRejects(t *testing.T) {
	tests := map[string]string{
		"empty":              ``,
		"not json":           `GPS`,
		"no gps":             `{"Make": "Canon"}`,
		"zero denominator":   `{"GPSLatitude": ["40/0","26/1","46/1"], "GPSLongitude": ["79/1","58/1","56/1"]}`,
		"non numeric":        `{"GPSLatitude": ["forty","26/1","46/1"], "GPSLongitude": ["79/1","58/1","56/1"]}`,
		"missing longitude":  `{"GPSLatitude": ["40/1","26/1","46/1"], "GPSLatitudeRef": "N"}`,
		"short triple":       `{"GPSLatitude": ["40/1","26/1"], "GPSLongitude": ["79/1","58/1","56/1"]}`,
		"latitude too large": `{"GPSLatitude": ["91/1","0/1","0/1"], "GPSLongitude": ["79/1","58/1","56/1"]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := Extract([]byte(raw))
			assert.False(t, ok)
		})
	}
}

func TestFirstPoint(t *testing.T) {
	withGPS := func(deg int) json.RawMessage {
		return json.RawMessage(`{"GPSLatitude": ["` + itoa(deg) + `/1","0/1","0/1"], "GPSLatitudeRef": "N",
			"GPSLongitude": ["10/1","0/1","0/1"], "GPSLongitudeRef": "E"}`)
	}
	photos := []report.Photo{
		{Path: "a.jpg"},
		{Path: "b.jpg", ExifJSON: json.RawMessage(`{"GPSLatitude": ["x"]}`)},
		{Path: "c.jpg", ExifJSON: withGPS(45)},
		{Path: "d.jpg", ExifJSON: withGPS(46)},
	}
	p, ok := FirstPoint(photos)
	require.True(t, ok)
	assert.InDelta(t, 45, p.Lat, 1e-9)

	_, ok = FirstPoint(photos[:2])
	assert.False(t, ok)
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
