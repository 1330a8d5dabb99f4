package layout

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/field-reports/internal/config"
	"github.com/kozaktomas/field-reports/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaps struct {
	ok    bool
	calls int
}

func (f *fakeMaps) RenderViewport(_ context.Context, _ report.GeoPoint, zoom, w, h int) (*image.RGBA, bool) {
	f.calls++
	if !f.ok {
		return nil, false
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 255, 255
	}
	return img, true
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 255, 0, 0, 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func newEngine(t *testing.T, maps MapRenderer) *Engine {
	t.Helper()
	fonts, err := LoadFonts("")
	require.NoError(t, err)
	return NewEngine(config.DefaultLayout(), fonts, maps, nil)
}

func sampleInput() Input {
	return Input{
		Title: "Road Survey - Report #7",
		Fields: []Field{
			{Label: "Selections", Value: "Kind: Pothole | Severity: High"},
			{Label: "Road", Value: "12 Main Street"},
			{Label: "Note", Value: "(none)"},
			{Label: "Date", Value: "2024-05-01 10:00:00"},
			{Label: "Address", Value: "(not recorded)"},
		},
	}
}

func TestRenderCanvasHeight(t *testing.T) {
	dir := t.TempDir()
	tall := writePNG(t, dir, "tall.png", 300, 900)
	wide := writePNG(t, dir, "wide.png", 800, 400)
	square := writePNG(t, dir, "square.png", 500, 500)
	loc := report.GeoPoint{Lat: 50.0875, Lng: 14.4213}

	tests := []struct {
		name   string
		photos []string
	}{
		{"no photos", nil},
		{"one photo", []string{wide}},
		{"three photos", []string{tall, wide, square}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, &fakeMaps{ok: true})
			in := sampleInput()
			in.Photos = tt.photos
			in.Location = &loc

			img, err := e.Render(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 794, 1123), img.Bounds())
		})
	}
}

func TestRenderJPEG(t *testing.T) {
	e := newEngine(t, nil)
	var buf bytes.Buffer
	require.NoError(t, e.RenderJPEG(context.Background(), sampleInput(), &buf))

	cfg, format, err := image.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 794, cfg.Width)
	assert.Equal(t, 1123, cfg.Height)
}

func TestRenderPlaceholderAndHeader(t *testing.T) {
	e := newEngine(t, nil)
	in := sampleInput()
	in.Photos = []string{filepath.Join(t.TempDir(), "missing.jpg")}

	img, err := e.Render(context.Background(), in)
	require.NoError(t, err)

	header := config.RGB(13, 148, 136).RGBA
	assert.Equal(t, header, img.RGBAAt(780, 5))

	// The placeholder band spans 180px below the header.
	section := config.RGB(250, 250, 249).RGBA
	assert.Equal(t, section, img.RGBAAt(10, 60))
	border := config.RGB(231, 229, 228).RGBA
	assert.Equal(t, border, img.RGBAAt(0, 52))
	assert.Equal(t, border, img.RGBAAt(400, 52+179))
}

func TestRenderMapBand(t *testing.T) {
	dir := t.TempDir()
	photo := writePNG(t, dir, "p.png", 794, 200)
	loc := report.GeoPoint{Lat: 50.0875, Lng: 14.4213}

	maps := &fakeMaps{ok: true}
	e := newEngine(t, maps)
	in := sampleInput()
	in.Photos = []string{photo}
	in.Location = &loc

	img, err := e.Render(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, maps.calls)

	// Photo occupies 52..252, the map band 252..572.
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(400, 150))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(400, 400))
}

func TestRenderSkipsMapWithoutLocation(t *testing.T) {
	maps := &fakeMaps{ok: true}
	e := newEngine(t, maps)

	_, err := e.Render(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Zero(t, maps.calls)
}

func TestRenderBitmapFont(t *testing.T) {
	e := NewEngine(config.DefaultLayout(), BitmapFonts(), nil, nil)
	in := sampleInput()
	in.Title = "Průzkum silnic - Report #1"

	img, err := e.Render(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1123, img.Bounds().Dy())
	assert.Equal(t, 74, e.WrapChars())
}

func TestPlanFitsOnPage(t *testing.T) {
	e := newEngine(t, nil)
	cases := []struct {
		name   string
		photos []image.Point
		withMap bool
		rows   int
	}{
		{"placeholder only", []image.Point{{794, 180}}, false, 5},
		{"tall photos with map", []image.Point{{794, 1500}, {794, 900}, {794, 600}}, true, 6},
		{"huge info block", []image.Point{{794, 600}}, true, 200},
		{"many tiny photos", []image.Point{{794, 1}, {794, 1}, {794, 1}}, true, 200},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := make([]Row, tc.rows)
			page := e.Plan(tc.photos, tc.withMap, rows)

			used := page.Header.Dy() + page.Info.Dy()
			for _, r := range page.Photos {
				used += r.Dy()
			}
			if tc.withMap {
				assert.Equal(t, 320, page.Map.Dy())
				used += page.Map.Dy()
				assert.LessOrEqual(t, page.Map.Max.Y, page.Info.Min.Y)
			}
			assert.LessOrEqual(t, used, 1123)
			assert.Equal(t, 1123, page.Info.Max.Y)
			for _, r := range page.Photos {
				if !r.Empty() {
					assert.GreaterOrEqual(t, r.Min.Y, 52)
				}
			}
		})
	}
}

func TestPlanScale(t *testing.T) {
	e := newEngine(t, nil)
	rows := make([]Row, 5)

	page := e.Plan([]image.Point{{794, 400}}, true, rows)
	assert.Equal(t, 1.0, page.Scale)
	assert.Equal(t, image.Rect(0, 52, 794, 452), page.Photos[0])
	assert.Equal(t, image.Rect(0, 452, 794, 772), page.Map)

	// 5 rows -> info band 178px, infoY 945, 893px for photos and map.
	page = e.Plan([]image.Point{{794, 1000}}, true, rows)
	assert.InDelta(t, 573.0/1000.0, page.Scale, 1e-9)
	assert.Equal(t, 573, page.Photos[0].Dy())
	assert.Equal(t, 454, page.Photos[0].Dx())
	assert.Equal(t, (794-454)/2, page.Photos[0].Min.X)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"abc"}, Wrap("abc", 5))
	assert.Equal(t, []string{"abcde", "fg"}, Wrap("abcdefg", 5))
	assert.Equal(t, []string{"ab", "", "cd"}, Wrap("ab\n\ncd", 5))
	assert.Equal(t, []string{"žluť", "ouč"}, Wrap("žluťouč", 4))
	assert.Equal(t, []string{""}, Wrap("", 5))

	long := strings.Repeat("x", 120)
	lines := Wrap(long, 58)
	require.Len(t, lines, 3)
	assert.Len(t, lines[2], 4)
}

func TestRows(t *testing.T) {
	fields := []Field{
		{Label: "Selections", Value: "a: b"},
		{Label: "Road", Value: ""},
		{Label: "Note", Value: strings.Repeat("n", 70)},
	}
	rows := Rows(fields, 58)
	require.Len(t, rows, 3)
	assert.Equal(t, Row{Label: "Selections", Value: "a: b"}, rows[0])
	assert.Equal(t, "Note", rows[1].Label)
	assert.Equal(t, "", rows[2].Label)
	assert.Len(t, rows[2].Value, 12)
}

func TestReportInput(t *testing.T) {
	lat, lng := 50.1, 14.2
	r := &report.Report{
		ID:         42,
		Selections: report.Selections{{Label: "Kind", Value: "Sign"}},
		Lat:        &lat,
		Lng:        &lng,
		CreatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Photos:     []report.Photo{{Path: "roads/1.jpg"}},
	}
	project := &report.Project{Slug: "roads"}

	in := ReportInput(project, r, "", "", "/srv/uploads")
	assert.Equal(t, "roads - Report #42", in.Title)
	assert.Equal(t, []string{filepath.Join("/srv/uploads", "roads", "1.jpg")}, in.Photos)
	require.NotNil(t, in.Location)
	assert.Equal(t, 50.1, in.Location.Lat)

	rows := Rows(in.Fields, 58)
	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row.Label)
	}
	assert.Equal(t, []string{"Selections", "Note", "Date", "Address"}, labels)
	assert.Equal(t, "(none)", rows[1].Value)
	assert.Equal(t, "(not recorded)", rows[3].Value)
}

func TestASCIIFold(t *testing.T) {
	assert.Equal(t, "Zlutoucky kun", ASCIIFold("Žluťoučký kůň"))
	assert.Equal(t, "tab", ASCIIFold("t\tab"))
	assert.Equal(t, "Report ", ASCIIFold("Report 📷"))
}

func TestLoadFonts(t *testing.T) {
	fonts, err := LoadFonts("")
	require.NoError(t, err)
	assert.True(t, fonts.Proportional())

	fonts, err = LoadFonts(BitmapFont)
	require.NoError(t, err)
	assert.False(t, fonts.Proportional())

	_, err = LoadFonts(filepath.Join(t.TempDir(), "nope.ttf"))
	assert.Error(t, err)
}
