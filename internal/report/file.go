package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Bundle is a project with its reports, as read from a JSON export file.
type Bundle struct {
	Project Project  `json:"project"`
	Reports []Report `json:"reports"`
}

// LoadFile reads a Bundle from a JSON file. Photos are sorted by SortOrder
// and reports keep file order.
func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report file: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing report file: %w", err)
	}
	if err := b.Project.Validate(); err != nil {
		return nil, err
	}
	for i := range b.Reports {
		SortPhotos(b.Reports[i].Photos)
	}
	return &b, nil
}

// SortPhotos orders photos by SortOrder, keeping insertion order for ties.
func SortPhotos(photos []Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].SortOrder < photos[j].SortOrder
	})
}
