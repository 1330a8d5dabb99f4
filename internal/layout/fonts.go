package layout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// BitmapFont is the FONT_PATH value that forces the fixed fallback font.
const BitmapFont = "bitmap"

var (
	goRegularOnce sync.Once
	goRegular     *opentype.Font
	goRegularErr  error
)

func embeddedFont() (*opentype.Font, error) {
	goRegularOnce.Do(func() {
		goRegular, goRegularErr = opentype.Parse(goregular.TTF)
	})
	return goRegular, goRegularErr
}

// FontSet hands out font faces for one render. Proportional faces are not
// safe for concurrent use, so each render asks for its own.
type FontSet struct {
	ttf *opentype.Font
}

// LoadFonts resolves path to a font set. An empty path selects the embedded
// Go Regular face, BitmapFont selects the fixed 7x13 face, anything else is
// read as a TrueType/OpenType file.
func LoadFonts(path string) (*FontSet, error) {
	switch path {
	case "":
		f, err := embeddedFont()
		if err != nil {
			return nil, fmt.Errorf("parsing embedded font: %w", err)
		}
		return &FontSet{ttf: f}, nil
	case BitmapFont:
		return BitmapFonts(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	return &FontSet{ttf: f}, nil
}

// BitmapFonts returns the fixed fallback font set.
func BitmapFonts() *FontSet {
	return &FontSet{}
}

// Proportional reports whether the set renders with a scalable font.
func (f *FontSet) Proportional() bool {
	return f != nil && f.ttf != nil
}

// Face returns a face at size points (72 DPI, so points equal pixels). The
// bitmap set ignores size.
func (f *FontSet) Face(size float64) font.Face {
	if !f.Proportional() {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f.ttf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}
