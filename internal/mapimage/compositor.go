// Package mapimage assembles map tiles into viewport images and stamps
// location badges onto photos.
package mapimage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/charmbracelet/log"
	"github.com/kozaktomas/field-reports/internal/geo"
	"github.com/kozaktomas/field-reports/internal/imaging"
	"github.com/kozaktomas/field-reports/internal/logging"
	"github.com/kozaktomas/field-reports/internal/report"
	"github.com/kozaktomas/field-reports/internal/tiles"
)

var (
	blankColor       = color.RGBA{0xE8, 0xE8, 0xE8, 0xFF}
	markerRingColor  = color.RGBA{255, 255, 255, 255}
	markerCoreColor  = color.RGBA{220, 38, 38, 255}
	badgeBorderColor = color.RGBA{255, 255, 255, 255}
)

// Marker radii in pixels.
const (
	markerRingRadius = 8
	markerCoreRadius = 5
)

// Compositor renders map imagery from tiles supplied by a Fetcher.
type Compositor struct {
	fetcher tiles.Fetcher
	logger  *log.Logger
}

// NewCompositor creates a Compositor reading tiles from f.
func NewCompositor(f tiles.Fetcher, logger *log.Logger) *Compositor {
	return &Compositor{fetcher: f, logger: logging.OrDiscard(logger)}
}

// RenderViewport renders a w x h window centred on center at zoom, with a
// marker on the centre point. Tiles that cannot be fetched or decoded stay
// blank. The result is false only when no tile could be placed.
func (c *Compositor) RenderViewport(ctx context.Context, center report.GeoPoint, zoom, w, h int) (*image.RGBA, bool) {
	if w <= 0 || h <= 0 {
		return nil, false
	}
	px, py := geo.PixelFor(center.Lat, center.Lng, zoom)
	ox := int(px - float64(w)/2)
	oy := int(py - float64(h)/2)

	tx0 := floorDiv(ox, geo.TileSize)
	ty0 := floorDiv(oy, geo.TileSize)
	tx1 := ceilDiv(ox+w, geo.TileSize)
	ty1 := ceilDiv(oy+h, geo.TileSize)

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: blankColor}, image.Point{}, draw.Src)

	placed := 0
	for ty := ty0; ty < ty1; ty++ {
		for tx := tx0; tx < tx1; tx++ {
			if ctx.Err() != nil {
				return nil, false
			}
			key := geo.TileKey{Z: zoom, X: tx, Y: ty}
			data, ok := c.fetcher.Fetch(ctx, key)
			if !ok {
				continue
			}
			tile, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				c.logger.Debug("tile does not decode", "tile", key.String(), "err", err)
				continue
			}
			at := image.Pt(tx*geo.TileSize-ox, ty*geo.TileSize-oy)
			tb := tile.Bounds()
			draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(tb.Size())}, tile, tb.Min, draw.Src)
			placed++
		}
	}
	if placed == 0 {
		return nil, false
	}

	dx := int(math.Round(px)) - ox
	dy := int(math.Round(py)) - oy
	if dx >= 0 && dx < w && dy >= 0 && dy < h {
		fillCircle(canvas, dx, dy, markerRingRadius, markerRingColor)
		fillCircle(canvas, dx, dy, markerCoreRadius, markerCoreColor)
	}
	return canvas, true
}

// CornerOptions sizes the location badge.
type CornerOptions struct {
	Width  int
	Height int
	Zoom   int
	Margin int
}

// DefaultCornerOptions returns a 200x150 badge at zoom 16, 10px from the edges.
func DefaultCornerOptions() CornerOptions {
	return CornerOptions{Width: 200, Height: 150, Zoom: 16, Margin: 10}
}

// CornerOrigin returns the top-left corner of the badge on a base of the
// given size. The badge sits Margin pixels from the right and bottom edges,
// and is pinned Margin pixels from the left/top when it does not fit.
func (o CornerOptions) CornerOrigin(base image.Rectangle) image.Point {
	x := base.Max.X - o.Width - o.Margin
	y := base.Max.Y - o.Height - o.Margin
	if x < base.Min.X {
		x = base.Min.X + o.Margin
	}
	if y < base.Min.Y {
		y = base.Min.Y + o.Margin
	}
	return image.Pt(x, y)
}

// CompositeCorner stamps a map badge of center into the bottom-right corner
// of base, framed by a 1px white border. When no tile renders base is left
// untouched and the result is false.
func (c *Compositor) CompositeCorner(ctx context.Context, base draw.Image, center report.GeoPoint, opts CornerOptions) bool {
	badge, ok := c.RenderViewport(ctx, center, opts.Zoom, opts.Width, opts.Height)
	if !ok {
		return false
	}
	at := opts.CornerOrigin(base.Bounds())
	r := image.Rectangle{Min: at, Max: at.Add(image.Pt(opts.Width, opts.Height))}
	draw.Draw(base, r, badge, image.Point{}, draw.Src)
	strokeRect(base, r.Inset(-1), badgeBorderColor)
	return true
}

// StampFile decodes the photo bytes upright, stamps the badge and returns the
// composed image. The boolean reports whether a badge was applied.
func (c *Compositor) StampFile(ctx context.Context, data []byte, center report.GeoPoint, opts CornerOptions) (image.Image, bool, error) {
	img, _, err := imaging.DecodeOriented(data)
	if err != nil {
		return nil, false, err
	}
	canvas := imaging.ToRGBA(img)
	ok := c.CompositeCorner(ctx, canvas, center, opts)
	return canvas, ok, nil
}

func strokeRect(img draw.Image, r image.Rectangle, c color.Color) {
	src := &image.Uniform{C: c}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e, src, image.Point{}, draw.Src)
	}
}

func fillCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > r2 {
				continue
			}
			p := image.Pt(cx+x, cy+y)
			if p.In(img.Rect) {
				img.SetRGBA(p.X, p.Y, c)
			}
		}
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
