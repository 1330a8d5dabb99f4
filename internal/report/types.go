// Package report defines the project, report and photo records consumed by the
// export engine, together with request parsing and validation helpers.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// OptionGroup is a labelled list of allowed choices.
type OptionGroup struct {
	Label   string   `json:"label"`
	Choices []string `json:"choices"`
}

// Project describes the owner of a set of reports.
type Project struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	OptionGroups []OptionGroup `json:"option_groups"`
}

// DisplayName returns the project name, or the slug when the name is empty.
func (p *Project) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Slug
}

// Selection is one chosen value for an option group.
type Selection struct {
	Label string
	Value string
}

// Selections is an ordered label -> value mapping. Order follows the stored
// JSON object.
type Selections []Selection

// Get returns the value chosen for label.
func (s Selections) Get(label string) (string, bool) {
	for _, sel := range s {
		if sel.Label == label {
			return sel.Value, true
		}
	}
	return "", false
}

// String joins the selections as "label: value" pairs separated by " | ".
func (s Selections) String() string {
	parts := make([]string, 0, len(s))
	for _, sel := range s {
		parts = append(parts, sel.Label+": "+sel.Value)
	}
	return strings.Join(parts, " | ")
}

// MarshalJSON encodes the selections as a JSON object, keeping order.
func (s Selections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sel := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(sel.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(sel.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object while preserving key order.
// Non-string values are kept in their JSON text form.
func (s *Selections) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding selections: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decoding selections: expected object")
	}

	out := Selections{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding selections: %w", err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding selection %q: %w", key, err)
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			value = string(raw)
		}
		out = append(out, Selection{Label: key, Value: value})
	}
	*s = out
	return nil
}

// GeoPoint is a WGS84 coordinate in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite.
func (p GeoPoint) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

// Rounded returns the point rounded to 5 decimal places (~1.1 m).
func (p GeoPoint) Rounded() GeoPoint {
	return GeoPoint{Lat: Round5(p.Lat), Lng: Round5(p.Lng)}
}

// Round5 rounds v to 5 decimal places, halves away from zero.
func Round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// Photo is an attached image of a report.
type Photo struct {
	Path      string          `json:"photo_path"`
	SortOrder int             `json:"sort_order"`
	ExifJSON  json.RawMessage `json:"exif_json,omitempty"`
}

// Report is one field submission.
type Report struct {
	ID         int64      `json:"id"`
	ProjectID  int64      `json:"project_id"`
	Selections Selections `json:"selections"`
	Note       string     `json:"note,omitempty"`
	Lat        *float64   `json:"lat,omitempty"`
	Lng        *float64   `json:"lng,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	Photos     []Photo    `json:"photos"`
}

// Location returns the report coordinate. A lone latitude or longitude is
// treated as no coordinate.
func (r *Report) Location() (GeoPoint, bool) {
	if r.Lat == nil || r.Lng == nil {
		return GeoPoint{}, false
	}
	p := GeoPoint{Lat: *r.Lat, Lng: *r.Lng}
	if !p.Valid() {
		return GeoPoint{}, false
	}
	return p, true
}

// SetLocation sets both coordinate components.
func (r *Report) SetLocation(p GeoPoint) {
	lat, lng := p.Lat, p.Lng
	r.Lat = &lat
	r.Lng = &lng
}

// DateString formats the creation timestamp the way it is stored.
func (r *Report) DateString() string {
	if r.CreatedAt.IsZero() {
		return ""
	}
	return r.CreatedAt.Format(DateTimeLayout)
}

// DateTimeLayout is the layout of stored creation timestamps.
const DateTimeLayout = "2006-01-02 15:04:05"
