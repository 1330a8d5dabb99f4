package imaging

import (
	"image"
	"image/draw"
)

// FixOrientation returns img transformed so that it displays upright for the
// given EXIF orientation tag. Tag 1 and unknown tags return img unchanged.
//
// The input buffer is not modified. Callers drop their reference to img once
// the returned image replaces it.
func FixOrientation(img image.Image, tag int) image.Image {
	switch tag {
	case 2:
		return FlipH(img)
	case 3:
		return Rotate180(img)
	case 4:
		return FlipV(img)
	case 5:
		return Transpose(img)
	case 6:
		return Rotate90CW(img)
	case 7:
		return Transverse(img)
	case 8:
		return Rotate90CCW(img)
	}
	return img
}

// FlipH mirrors img left to right.
func FlipH(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	return remap(src, w, h, func(x, y int) (int, int) { return w - 1 - x, y })
}

// FlipV mirrors img top to bottom.
func FlipV(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	return remap(src, w, h, func(x, y int) (int, int) { return x, h - 1 - y })
}

// Rotate180 turns img upside down.
func Rotate180(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	return remap(src, w, h, func(x, y int) (int, int) { return w - 1 - x, h - 1 - y })
}

// Rotate90CW rotates img a quarter turn clockwise.
func Rotate90CW(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	h := src.Rect.Dy()
	// Destination is h wide and w tall.
	return remap(src, h, src.Rect.Dx(), func(x, y int) (int, int) { return y, h - 1 - x })
}

// Rotate90CCW rotates img a quarter turn counter-clockwise.
func Rotate90CCW(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	w := src.Rect.Dx()
	return remap(src, src.Rect.Dy(), w, func(x, y int) (int, int) { return w - 1 - y, x })
}

// Transpose mirrors img across its main diagonal (rotate clockwise, then flip
// horizontally).
func Transpose(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	return remap(src, src.Rect.Dy(), src.Rect.Dx(), func(x, y int) (int, int) { return y, x })
}

// Transverse mirrors img across its anti-diagonal (rotate counter-clockwise,
// then flip horizontally).
func Transverse(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	return remap(src, h, w, func(x, y int) (int, int) { return w - 1 - y, h - 1 - x })
}

// remap builds a dstW x dstH image where each destination pixel (x, y) copies
// the source pixel returned by from.
func remap(src *image.NRGBA, dstW, dstH int, from func(x, y int) (int, int)) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	for y := range dstH {
		for x := range dstW {
			sx, sy := from(x, y)
			si := src.PixOffset(src.Rect.Min.X+sx, src.Rect.Min.Y+sy)
			di := dst.PixOffset(x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// ToNRGBA returns img as a zero-origin *image.NRGBA, converting when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ToRGBA returns img as a zero-origin *image.RGBA, converting when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if r, ok := img.(*image.RGBA); ok && r.Rect.Min == (image.Point{}) {
		return r
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
