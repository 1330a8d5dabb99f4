package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Upload re-encoding settings.
const (
	UploadJPEGQuality    = 88
	ThumbnailJPEGQuality = 80
)

// AllowedUploadTypes lists the MIME types accepted for report photos.
var AllowedUploadTypes = []string{"image/jpeg", "image/png", "image/webp"}

// DetectType sniffs the MIME type of data and reports whether it is an
// accepted upload type.
func DetectType(data []byte) (string, bool) {
	m := mimetype.Detect(data)
	return m.String(), mimetype.EqualsAny(m.String(), AllowedUploadTypes...)
}

// NormalizeResult describes what NormalizeFile did.
type NormalizeResult struct {
	MIME        string
	Orientation int
	Width       int
	Height      int
	Rewritten   bool
}

// NormalizeFile fixes the orientation of the photo at path and downscales it
// to maxDim, rewriting the file in place when either applies. JPEG and PNG
// are re-encoded in their own format. WebP cannot be re-encoded and is left
// untouched with ErrUnsupported.
func NormalizeFile(path string, maxDim int) (NormalizeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NormalizeResult{}, fmt.Errorf("reading photo: %w", err)
	}
	mime, ok := DetectType(data)
	res := NormalizeResult{MIME: mime}
	if !ok {
		return res, fmt.Errorf("%w: %s", ErrUnsupported, mime)
	}

	img, _, err := Decode(data)
	if err != nil {
		return res, err
	}
	res.Orientation = Orientation(data)
	b := img.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()

	needsResize := maxDim > 0 && max(b.Dx(), b.Dy()) > maxDim
	if res.Orientation == 1 && !needsResize {
		return res, nil
	}
	if mime == "image/webp" {
		return res, fmt.Errorf("%w: %s", ErrUnsupported, mime)
	}

	out := Downscale(FixOrientation(img, res.Orientation), maxDim)
	ob := out.Bounds()
	res.Width, res.Height = ob.Dx(), ob.Dy()

	var buf bytes.Buffer
	switch mime {
	case "image/png":
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(&buf, out); err != nil {
			return res, fmt.Errorf("failed to encode image: %w", err)
		}
	default:
		if err := EncodeJPEG(&buf, out, UploadJPEGQuality); err != nil {
			return res, err
		}
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return res, err
	}
	res.Rewritten = true
	return res, nil
}

// Thumbnail returns a JPEG of data scaled to width, oriented upright.
func Thumbnail(data []byte, width int) ([]byte, error) {
	img, _, err := DecodeOriented(data)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() > width {
		img = ScaleToWidth(img, width)
	}
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, img, ThumbnailJPEGQuality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadOriented reads the file at path and decodes it upright.
func LoadOriented(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	img, _, err := DecodeOriented(data)
	return img, err
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".normalize-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("closing temporary file: %w", err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("chmod temporary file: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replacing photo: %w", err)
	}
	return nil
}
