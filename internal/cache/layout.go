package cache

import "path/filepath"

// Category directory names below the cache root.
const (
	TilesDir   = "tiles"
	GeocodeDir = "geocode"
	// geocodeVersion is bumped whenever the cached geocode payload changes shape.
	geocodeVersion = "v2"
	// ScratchPrefix names per-export working directories in the cache root.
	ScratchPrefix = "export-"
)

// Layout resolves category directories under one cache root.
type Layout struct {
	Root string
}

// Tiles returns the tile cache directory.
func (l Layout) Tiles() string { return filepath.Join(l.Root, TilesDir) }

// Geocode returns the base geocode directory, the unit the janitor ages out.
func (l Layout) Geocode() string { return filepath.Join(l.Root, GeocodeDir) }

// GeocodeEntries returns the versioned directory holding geocode entries.
func (l Layout) GeocodeEntries() string { return filepath.Join(l.Geocode(), geocodeVersion) }

// Exports returns the directory receiving finished artifacts and scratch
// directories.
func (l Layout) Exports() string { return l.Root }

// OpenTiles opens the tile Store.
func (l Layout) OpenTiles() (*Dir, error) { return NewDir(l.Tiles(), ".png") }

// OpenGeocode opens the geocode Store.
func (l Layout) OpenGeocode() (*Dir, error) { return NewDir(l.GeocodeEntries(), ".json") }
