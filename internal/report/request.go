package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidFormat is returned for an unknown export format.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidSelection is returned when an ids parameter holds no usable id.
	ErrInvalidSelection = errors.New("invalid report selection")
	// ErrNoReports is returned when the filtered report list is empty.
	ErrNoReports = errors.New("no reports to export")
)

// Format selects the kind of export artifact.
type Format string

const (
	FormatArchive  Format = "archive"
	FormatDocument Format = "document"
	FormatImage    Format = "image"
)

// ParseFormat accepts the canonical names and the zip/pdf/jpg aliases.
// An empty value defaults to the archive format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "archive", "zip":
		return FormatArchive, nil
	case "document", "pdf":
		return FormatDocument, nil
	case "image", "jpg", "jpeg":
		return FormatImage, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// DateLayout is the layout of export date range bounds.
const DateLayout = "2006-01-02"

// Request holds pre-resolved export parameters.
type Request struct {
	Format Format
	From   string // inclusive YYYY-MM-DD, empty for open
	To     string // inclusive YYYY-MM-DD, empty for open
	IDs    []int64
}

// SanitizeDate returns s when it is a valid YYYY-MM-DD date, empty otherwise.
func SanitizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return ""
	}
	return s
}

// ParseIDs accepts a JSON array or a comma separated list. Only positive ids
// are kept, deduplicated in first-seen order. A non-empty parameter that yields
// no id is ErrInvalidSelection.
func ParseIDs(param string) ([]int64, error) {
	param = strings.TrimSpace(param)
	if param == "" {
		return nil, nil
	}

	var values []string
	var decoded []any
	if err := json.Unmarshal([]byte(param), &decoded); err == nil {
		for _, v := range decoded {
			values = append(values, fmt.Sprint(v))
		}
	} else {
		values = strings.Split(param, ",")
	}

	var ids []int64
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr != nil {
				continue
			}
			id = int64(f)
		}
		if id > 0 && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, ErrInvalidSelection
	}
	return ids, nil
}

// ParseRequest builds a Request from raw parameter strings.
func ParseRequest(format, from, to, ids string) (Request, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return Request{}, err
	}
	parsedIDs, err := ParseIDs(ids)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Format: f,
		From:   SanitizeDate(from),
		To:     SanitizeDate(to),
		IDs:    parsedIDs,
	}, nil
}

// Filter applies the date range and id subset to reports, keeping order.
// An empty result is ErrNoReports.
func (r Request) Filter(reports []Report) ([]Report, error) {
	out := make([]Report, 0, len(reports))
	for _, rep := range reports {
		day := rep.CreatedAt.Format(DateLayout)
		if r.From != "" && day < r.From {
			continue
		}
		if r.To != "" && day > r.To {
			continue
		}
		if len(r.IDs) > 0 && !slices.Contains(r.IDs, rep.ID) {
			continue
		}
		out = append(out, rep)
	}
	if len(out) == 0 {
		return nil, ErrNoReports
	}
	return out, nil
}
