// Package layout renders one report as a fixed-size page image: a header, the
// report photos, an optional map band and a wrapped info block.
package layout

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/kozaktomas/field-reports/internal/config"
	"github.com/kozaktomas/field-reports/internal/imaging"
	"github.com/kozaktomas/field-reports/internal/logging"
	"github.com/kozaktomas/field-reports/internal/report"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// MapRenderer renders a map window centred on a point.
type MapRenderer interface {
	RenderViewport(ctx context.Context, center report.GeoPoint, zoom, w, h int) (*image.RGBA, bool)
}

// Input is everything drawn on one page.
type Input struct {
	Title    string
	Fields   []Field
	Photos   []string // absolute paths, in display order
	Location *report.GeoPoint
}

// ReportInput builds the page input of r. Photo paths are resolved against
// uploadsDir.
func ReportInput(project *report.Project, r *report.Report, road, address, uploadsDir string) Input {
	note := r.Note
	if note == "" {
		note = "(none)"
	}
	if address == "" {
		address = "(not recorded)"
	}
	in := Input{
		Title: project.DisplayName() + " - Report #" + strconv.FormatInt(r.ID, 10),
		Fields: []Field{
			{Label: "Selections", Value: r.Selections.String()},
			{Label: "Road", Value: road},
			{Label: "Note", Value: note},
			{Label: "Date", Value: r.DateString()},
			{Label: "Address", Value: address},
		},
	}
	for _, p := range r.Photos {
		in.Photos = append(in.Photos, filepath.Join(uploadsDir, filepath.FromSlash(p.Path)))
	}
	if loc, ok := r.Location(); ok {
		in.Location = &loc
	}
	return in
}

// Engine draws page images. It is safe for concurrent use.
type Engine struct {
	cfg    config.LayoutConfig
	fonts  *FontSet
	maps   MapRenderer
	logger *log.Logger
}

// NewEngine creates an Engine. maps may be nil, in which case pages never
// carry a map band.
func NewEngine(cfg config.LayoutConfig, fonts *FontSet, maps MapRenderer, logger *log.Logger) *Engine {
	if fonts == nil {
		fonts = BitmapFonts()
	}
	return &Engine{cfg: cfg, fonts: fonts, maps: maps, logger: logging.OrDiscard(logger)}
}

// Config returns the layout in use.
func (e *Engine) Config() config.LayoutConfig {
	return e.cfg
}

func (e *Engine) lineHeight() int {
	if e.fonts.Proportional() {
		return e.cfg.Text.LineHeight
	}
	return e.cfg.Text.BitmapLineHeight
}

// WrapChars returns the wrap width of info values for the active font.
func (e *Engine) WrapChars() int {
	if e.fonts.Proportional() {
		return e.cfg.Text.WrapChars
	}
	return max(e.cfg.Text.MinBitmapWrapChars, (e.cfg.Page.Width-2*e.cfg.Page.Padding)/10)
}

// Page is the band geometry of one page.
type Page struct {
	Bounds image.Rectangle
	Header image.Rectangle
	Photos []image.Rectangle
	Map    image.Rectangle // empty when the page has no map band
	Info   image.Rectangle
	Rows   []Row // the rows that fit into the info band
	Scale  float64
}

// Plan lays out bands for photos already scaled to page width. Header, map
// and info bands keep their size; photos shrink to the remaining space. Info
// rows that would push the bands past the page are dropped, so the bands
// always fit on the page.
func (e *Engine) Plan(photos []image.Point, withMap bool, rows []Row) Page {
	pc := e.cfg.Page
	lineH := e.lineHeight()
	mapH := 0
	if withMap {
		mapH = e.cfg.Map.Height
	}

	maxRows := max(0, (pc.Height-pc.HeaderHeight-mapH-len(photos)-2*pc.Padding)/lineH)
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	infoH := len(rows)*lineH + 2*pc.Padding
	infoY := pc.Height - infoH

	total := 0
	for _, p := range photos {
		total += p.Y
	}
	available := infoY - pc.HeaderHeight
	scale := 1.0
	if total > 0 && total+mapH > available {
		scale = min(1.0, float64(max(1, available-mapH))/float64(total))
	}

	page := Page{
		Bounds: image.Rect(0, 0, pc.Width, pc.Height),
		Header: image.Rect(0, 0, pc.Width, pc.HeaderHeight),
		Info:   image.Rect(0, infoY, pc.Width, pc.Height),
		Rows:   rows,
		Scale:  scale,
	}

	y := pc.HeaderHeight
	limit := infoY - mapH
	for _, p := range photos {
		pw := max(1, int(float64(p.X)*scale))
		ph := max(1, int(float64(p.Y)*scale))
		ph = min(ph, max(0, limit-y))
		if ph == 0 {
			page.Photos = append(page.Photos, image.Rectangle{})
			continue
		}
		x := (pc.Width - pw) / 2
		page.Photos = append(page.Photos, image.Rect(x, y, x+pw, y+ph))
		y += ph
	}
	if withMap {
		page.Map = image.Rect(0, y, pc.Width, y+mapH)
	}
	return page
}

// Render draws the page for in. Photos that are missing or cannot be decoded
// are skipped; when none remain a placeholder band takes their place. The map
// band is included only when the report has coordinates and the map renders.
func (e *Engine) Render(ctx context.Context, in Input) (*image.RGBA, error) {
	pc := e.cfg.Page
	photos := e.loadPhotos(in.Photos)

	sizes := make([]image.Point, 0, max(1, len(photos)))
	for _, p := range photos {
		b := p.Bounds()
		sizes = append(sizes, image.Pt(pc.Width, max(1, b.Dy()*pc.Width/b.Dx())))
	}
	if len(photos) == 0 {
		sizes = append(sizes, image.Pt(pc.Width, e.cfg.Placeholder.Height))
	}

	var mapImg *image.RGBA
	if in.Location != nil && e.maps != nil {
		if m, ok := e.maps.RenderViewport(ctx, *in.Location, e.cfg.Map.Zoom, pc.Width, e.cfg.Map.Height); ok {
			mapImg = m
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := Rows(in.Fields, e.WrapChars())
	page := e.Plan(sizes, mapImg != nil, rows)

	canvas := image.NewRGBA(page.Bounds)
	fill(canvas, canvas.Bounds(), config.RGB(255, 255, 255))

	headerFace := e.fonts.Face(e.cfg.Text.HeaderSize)
	infoFace := e.fonts.Face(e.cfg.Text.InfoSize)

	fill(canvas, page.Header, e.cfg.Colors.HeaderBackground)
	headerOffset := e.cfg.Text.BitmapHeaderOffset
	if e.fonts.Proportional() {
		headerOffset = e.cfg.Text.HeaderOffset
	}
	e.drawText(canvas, headerFace, e.cfg.Text.HeaderSize, pc.Padding, (pc.HeaderHeight-headerOffset)/2, in.Title, e.cfg.Colors.HeaderText)

	if len(photos) == 0 {
		if r := page.Photos[0]; !r.Empty() {
			e.drawPlaceholder(canvas, r)
		}
	}
	for i, p := range photos {
		r := page.Photos[i]
		if r.Empty() {
			continue
		}
		scaled := imaging.Resize(p, r.Dx(), r.Dy())
		draw.Draw(canvas, r, scaled, image.Point{}, draw.Src)
		stroke(canvas, r, e.cfg.Colors.Border)
	}

	if mapImg != nil {
		draw.Draw(canvas, page.Map, mapImg, image.Point{}, draw.Src)
		stroke(canvas, page.Map, e.cfg.Colors.Border)
	}

	fill(canvas, page.Info, e.cfg.Colors.InfoBackground)
	stroke(canvas, page.Info, e.cfg.Colors.Border)
	ty := page.Info.Min.Y + pc.Padding + e.cfg.Text.InfoTopOffset
	for _, row := range page.Rows {
		if e.fonts.Proportional() && e.cfg.Text.LabelWidth > 0 && row.Label != "" {
			e.drawText(canvas, infoFace, e.cfg.Text.InfoSize, pc.Padding, ty-2, row.Label+":", e.cfg.Colors.Accent)
			e.drawText(canvas, infoFace, e.cfg.Text.InfoSize, pc.Padding+e.cfg.Text.LabelWidth, ty-2, row.Value, e.cfg.Colors.Text)
		} else {
			line := row.Value
			if row.Label != "" {
				line = row.Label + ": " + row.Value
			}
			e.drawText(canvas, infoFace, e.cfg.Text.InfoSize, pc.Padding, ty, line, e.cfg.Colors.Text)
		}
		ty += e.lineHeight()
	}
	return canvas, nil
}

// RenderJPEG renders the page and writes it as a JPEG.
func (e *Engine) RenderJPEG(ctx context.Context, in Input, w io.Writer) error {
	canvas, err := e.Render(ctx, in)
	if err != nil {
		return err
	}
	if err := imaging.EncodeJPEG(w, canvas, e.cfg.JPEGQuality); err != nil {
		return fmt.Errorf("encoding page: %w", err)
	}
	return nil
}

func (e *Engine) loadPhotos(paths []string) []image.Image {
	var out []image.Image
	for _, path := range paths {
		img, err := imaging.LoadOriented(path)
		if err != nil {
			e.logger.Warn("skipping photo on page", "path", path, "err", err)
			continue
		}
		if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
			continue
		}
		out = append(out, img)
	}
	return out
}

func (e *Engine) drawPlaceholder(canvas *image.RGBA, r image.Rectangle) {
	fill(canvas, r, e.cfg.Colors.Section)
	stroke(canvas, r, e.cfg.Colors.Border)
	face := e.fonts.Face(e.cfg.Text.InfoSize)
	text := e.cfg.Placeholder.Text
	tw := font.MeasureString(face, text).Ceil()
	th := face.Metrics().Height.Ceil()
	x := r.Min.X + (r.Dx()-tw)/2
	y := r.Min.Y + (r.Dy()-th)/2
	e.drawText(canvas, face, e.cfg.Text.InfoSize, x, y, text, e.cfg.Colors.Placeholder)
}

// drawText draws s with its top edge at y. Proportional text sits on a
// baseline size pixels below y; bitmap text is sanitized to ASCII.
func (e *Engine) drawText(canvas *image.RGBA, face font.Face, size float64, x, y int, s string, c config.Color) {
	var baseline int
	if e.fonts.Proportional() {
		s = printable(s)
		baseline = y + int(size)
	} else {
		s = ASCIIFold(s)
		baseline = y + face.Metrics().Ascent.Ceil()
	}
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(c.RGBA),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func fill(img *image.RGBA, r image.Rectangle, c config.Color) {
	draw.Draw(img, r, image.NewUniform(c.RGBA), image.Point{}, draw.Src)
}

func stroke(img *image.RGBA, r image.Rectangle, c config.Color) {
	if r.Empty() {
		return
	}
	src := image.NewUniform(c.RGBA)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(img, edge, src, image.Point{}, draw.Src)
	}
}
