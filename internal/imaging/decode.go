// Package imaging decodes, orients, resizes and encodes report photos.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/evanoberholster/imagemeta"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for formats that cannot be re-encoded.
var ErrUnsupported = errors.New("unsupported image format")

// Decode decodes any registered format (jpeg, png, gif, webp, bmp).
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Orientation returns the EXIF orientation tag embedded in data, or 1 when
// the image carries none.
func Orientation(data []byte) (tag int) {
	defer func() {
		if recover() != nil {
			tag = 1
		}
	}()
	meta, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag = int(meta.Orientation)
	if tag < 1 || tag > 8 {
		return 1
	}
	return tag
}

// DecodeOriented decodes data and applies its EXIF orientation.
func DecodeOriented(data []byte) (image.Image, string, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, "", err
	}
	return FixOrientation(img, Orientation(data)), format, nil
}

// EncodeJPEG writes img as a baseline JPEG. Transparent pixels are flattened
// onto white first.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if err := jpeg.Encode(w, FlattenOnWhite(img), &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// FlattenOnWhite composites img over an opaque white background.
func FlattenOnWhite(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i := range dst.Pix {
		dst.Pix[i] = 0xff
	}
	drawOver(dst, img)
	return dst
}
