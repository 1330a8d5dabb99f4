package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// Downscale shrinks img so that its longer side equals maxDim, keeping the
// aspect ratio. Images already within maxDim are returned unchanged. The
// result is drawn onto a fresh transparent canvas so alpha survives.
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || max(w, h) <= maxDim {
		return img
	}
	scale := float64(maxDim) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	return Resize(img, nw, nh)
}

// ScaleToWidth resizes img to width w, keeping the aspect ratio.
func ScaleToWidth(img image.Image, w int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || w <= 0 {
		return img
	}
	h := max(1, int(float64(b.Dy())*float64(w)/float64(b.Dx())))
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return Resize(img, w, h)
}

// Resize scales img to exactly w x h with a bilinear filter.
func Resize(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// drawOver composites src onto dst at the origin.
func drawOver(dst draw.Image, src image.Image) {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
}
