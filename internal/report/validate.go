package report

import (
	"errors"
	"fmt"
	"regexp"
)

// Validation limits for project definitions and report text.
const (
	MaxSlugLength    = 100
	MaxOptionGroups  = 20
	MaxChoices       = 50
	MaxLabelLength   = 100
	MaxChoiceLength  = 200
	MaxNoteLength    = 5000
	MaxCommentLength = 5000
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ValidateSlug checks the URL-safe project identifier.
func ValidateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return invalid("slug must be lowercase alphanumeric with hyphens only")
	}
	if len(slug) > MaxSlugLength {
		return invalid("slug too long")
	}
	return nil
}

// Validate checks the slug and option group limits.
func (p *Project) Validate() error {
	if err := ValidateSlug(p.Slug); err != nil {
		return err
	}
	if len(p.OptionGroups) > MaxOptionGroups {
		return invalid("too many option groups")
	}
	for _, g := range p.OptionGroups {
		if g.Label == "" || len(g.Label) > MaxLabelLength {
			return invalid("option group label invalid")
		}
		if len(g.Choices) > MaxChoices {
			return invalid("too many choices in option group %q", g.Label)
		}
		for _, c := range g.Choices {
			if len(c) > MaxChoiceLength {
				return invalid("invalid choice value in %q", g.Label)
			}
		}
	}
	return nil
}

// Validate checks that every selection names a known group with an allowed
// choice and that every group has a selection.
func (s Selections) Validate(groups []OptionGroup) error {
	allowed := make(map[string]map[string]bool, len(groups))
	for _, g := range groups {
		choices := make(map[string]bool, len(g.Choices))
		for _, c := range g.Choices {
			choices[c] = true
		}
		allowed[g.Label] = choices
	}
	for _, sel := range s {
		choices, ok := allowed[sel.Label]
		if !ok {
			return invalid("unknown option group: %s", sel.Label)
		}
		if !choices[sel.Value] {
			return invalid("invalid choice for %s", sel.Label)
		}
	}
	for _, g := range groups {
		if _, ok := s.Get(g.Label); !ok {
			return invalid("missing selection for %s", g.Label)
		}
	}
	return nil
}

// Validate checks text lengths and the coordinate pair.
func (r *Report) Validate() error {
	if len(r.Note) > MaxNoteLength {
		return invalid("note too long")
	}
	if len(r.Comment) > MaxCommentLength {
		return invalid("comment too long")
	}
	if (r.Lat == nil) != (r.Lng == nil) {
		return invalid("latitude and longitude must be given together")
	}
	if p, ok := r.Location(); ok {
		if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return invalid("coordinate out of range")
		}
	}
	return nil
}
