package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// ASCIIFold transliterates s and then drops everything outside printable
// ASCII, which is all the bitmap font can draw.
func ASCIIFold(s string) string {
	s = RemoveDiacritics(s)
	return strings.Map(func(r rune) rune {
		if r >= 0x20 && r <= 0x7e {
			return r
		}
		return -1
	}, s)
}

// printable drops control characters, keeping any Unicode letter.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Wrap splits text into lines of at most maxChars characters. Each input line
// starts a new output line and is cut at fixed width, so an empty input line
// yields one empty row.
func Wrap(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 1
	}
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		r := []rune(para)
		if len(r) == 0 {
			lines = append(lines, "")
			continue
		}
		for len(r) > maxChars {
			lines = append(lines, string(r[:maxChars]))
			r = r[maxChars:]
		}
		lines = append(lines, string(r))
	}
	return lines
}

// Field is one labelled value of the info band.
type Field struct {
	Label string
	Value string
}

// Row is one drawn line of the info band. Continuation rows of a wrapped
// value have an empty label.
type Row struct {
	Label string
	Value string
}

// Rows drops empty fields and wraps the rest.
func Rows(fields []Field, maxChars int) []Row {
	var rows []Row
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		for i, line := range Wrap(f.Value, maxChars) {
			row := Row{Value: line}
			if i == 0 {
				row.Label = f.Label
			}
			rows = append(rows, row)
		}
	}
	return rows
}
