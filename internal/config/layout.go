package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LayoutConfig holds the geometry and palette of page images.
type LayoutConfig struct {
	Page        PageConfig        `yaml:"page"`
	Map         MapBandConfig     `yaml:"map"`
	Placeholder PlaceholderConfig `yaml:"placeholder"`
	Text        TextConfig        `yaml:"text"`
	Colors      PaletteConfig     `yaml:"colors"`
	JPEGQuality int               `yaml:"jpeg_quality"`
}

type PageConfig struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	Padding      int `yaml:"padding"`
	HeaderHeight int `yaml:"header_height"`
}

type MapBandConfig struct {
	Height int `yaml:"height"`
	Zoom   int `yaml:"zoom"`
}

type PlaceholderConfig struct {
	Height int    `yaml:"height"`
	Text   string `yaml:"text"`
}

// TextConfig sizes text for the proportional font. The bitmap_* keys apply
// when the fixed fallback font is in use.
type TextConfig struct {
	InfoSize           float64 `yaml:"info_size"`
	HeaderSize         float64 `yaml:"header_size"`
	LineHeight         int     `yaml:"line_height"`
	BitmapLineHeight   int     `yaml:"bitmap_line_height"`
	LabelWidth         int     `yaml:"label_width"`
	WrapChars          int     `yaml:"wrap_chars"`
	MinBitmapWrapChars int     `yaml:"min_bitmap_wrap_chars"`
	HeaderOffset       int     `yaml:"header_offset"`
	BitmapHeaderOffset int     `yaml:"bitmap_header_offset"`
	InfoTopOffset      int     `yaml:"info_top_offset"`
}

type PaletteConfig struct {
	HeaderBackground Color `yaml:"header_bg"`
	HeaderText       Color `yaml:"header_text"`
	InfoBackground   Color `yaml:"info_bg"`
	Border           Color `yaml:"info_border"`
	Section          Color `yaml:"section_bg"`
	Text             Color `yaml:"text"`
	Muted            Color `yaml:"text_muted"`
	Accent           Color `yaml:"accent"`
	Placeholder      Color `yaml:"placeholder_text"`
}

// Color is an opaque colour written in YAML as "#rrggbb" or [r, g, b].
type Color struct {
	color.RGBA
}

// RGB builds an opaque Color.
func RGB(r, g, b uint8) Color {
	return Color{color.RGBA{R: r, G: g, B: b, A: 255}}
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := parseHex(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*c = parsed
		return nil
	case yaml.SequenceNode:
		var parts []int
		if err := node.Decode(&parts); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if len(parts) != 3 {
			return fmt.Errorf("line %d: colour needs 3 components, got %d", node.Line, len(parts))
		}
		for _, v := range parts {
			if v < 0 || v > 255 {
				return fmt.Errorf("line %d: colour component %d out of range", node.Line, v)
			}
		}
		*c = RGB(uint8(parts[0]), uint8(parts[1]), uint8(parts[2]))
		return nil
	}
	return fmt.Errorf("line %d: colour must be a hex string or a list", node.Line)
}

func (c Color) MarshalYAML() (any, error) {
	return c.Hex(), nil
}

// Hex formats c as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func parseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q", s)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// Validate rejects layouts whose fixed bands cannot fit on the page.
func (l LayoutConfig) Validate() error {
	p := l.Page
	if p.Width <= 0 || p.Height <= 0 {
		return errors.New("page size must be positive")
	}
	if p.Padding < 0 || p.HeaderHeight < 0 || l.Map.Height < 0 || l.Placeholder.Height < 0 {
		return errors.New("band sizes must not be negative")
	}
	if p.HeaderHeight+l.Map.Height+2*p.Padding >= p.Height {
		return fmt.Errorf("header, map band and padding (%d) leave no room on a %dpx page",
			p.HeaderHeight+l.Map.Height+2*p.Padding, p.Height)
	}
	if l.Text.LineHeight <= 0 || l.Text.BitmapLineHeight <= 0 {
		return errors.New("line heights must be positive")
	}
	if l.JPEGQuality < 1 || l.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality %d out of range 1..100", l.JPEGQuality)
	}
	return nil
}
