// Package janitor ages out cached tiles, geocode entries and export artifacts.
package janitor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kozaktomas/field-reports/internal/cache"
	"github.com/kozaktomas/field-reports/internal/logging"
	"github.com/kozaktomas/field-reports/internal/metrics"
)

// TTLs holds the maximum age per cache category. A zero TTL disables the
// category.
type TTLs struct {
	Tiles      time.Duration
	Geocode    time.Duration
	Exports    time.Duration
	ExportTemp time.Duration
}

// Stats counts removed entries per category.
type Stats struct {
	Tiles      int
	Geocode    int
	Exports    int
	ExportTemp int
}

// Total returns the number of removed entries.
func (s Stats) Total() int {
	return s.Tiles + s.Geocode + s.Exports + s.ExportTemp
}

// Janitor deletes expired cache entries.
type Janitor struct {
	layout cache.Layout
	ttls   TTLs
	logger *log.Logger
}

// New creates a Janitor for the cache rooted at layout.
func New(layout cache.Layout, ttls TTLs, logger *log.Logger) *Janitor {
	return &Janitor{layout: layout, ttls: ttls, logger: logging.OrDiscard(logger)}
}

// artifactExts are the finished export types kept in the cache root.
var artifactExts = map[string]bool{".zip": true, ".pdf": true, ".jpg": true}

// Sweep removes everything that expired before now. Files that disappear
// while sweeping are skipped; other failures are collected and returned
// after the sweep completes.
func (j *Janitor) Sweep(now time.Time) (Stats, error) {
	var stats Stats
	var errs []error

	if j.ttls.Tiles > 0 {
		n, err := sweepTree(j.layout.Tiles(), now.Add(-j.ttls.Tiles))
		stats.Tiles = n
		errs = append(errs, err)
	}
	if j.ttls.Geocode > 0 {
		n, err := sweepTree(j.layout.Geocode(), now.Add(-j.ttls.Geocode), j.layout.GeocodeEntries())
		stats.Geocode = n
		errs = append(errs, err)
	}

	entries, err := os.ReadDir(j.layout.Exports())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, err)
	}
	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(j.layout.Exports(), name)
		switch {
		case strings.HasPrefix(name, cache.ScratchPrefix) && j.ttls.ExportTemp > 0:
			ok, err := removeIfOlder(path, now.Add(-j.ttls.ExportTemp), true)
			if ok {
				stats.ExportTemp++
			}
			errs = append(errs, err)
		case !e.IsDir() && artifactExts[strings.ToLower(filepath.Ext(name))] && j.ttls.Exports > 0:
			ok, err := removeIfOlder(path, now.Add(-j.ttls.Exports), false)
			if ok {
				stats.Exports++
			}
			errs = append(errs, err)
		}
	}

	metrics.JanitorDeleted.WithLabelValues("tiles").Add(float64(stats.Tiles))
	metrics.JanitorDeleted.WithLabelValues("geocode").Add(float64(stats.Geocode))
	metrics.JanitorDeleted.WithLabelValues("exports").Add(float64(stats.Exports))
	metrics.JanitorDeleted.WithLabelValues("export_temp").Add(float64(stats.ExportTemp))

	return stats, errors.Join(errs...)
}

// Run sweeps immediately and then every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	j.sweepAndLog()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweepAndLog()
		}
	}
}

func (j *Janitor) sweepAndLog() {
	stats, err := j.Sweep(time.Now())
	if err != nil {
		j.logger.Warn("cache sweep incomplete", "err", err)
	}
	if stats.Total() > 0 {
		j.logger.Info("cache sweep",
			"tiles", stats.Tiles, "geocode", stats.Geocode,
			"exports", stats.Exports, "export_temp", stats.ExportTemp)
	}
}

// sweepTree deletes files under root last modified before cutoff and then
// removes directories left empty. The root and the keep directories, which
// stores write into directly, are never removed.
func sweepTree(root string, cutoff time.Time, keep ...string) (int, error) {
	removed := 0
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != root && !slices.Contains(keep, path) {
				dirs = append(dirs, path)
			}
			return nil
		}
		ok, err := removeIfOlder(path, cutoff, false)
		if ok {
			removed++
		}
		return err
	})
	// Deepest first so parents empty out after their children.
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
	return removed, err
}

// removeIfOlder removes path when its modification time is before cutoff.
// A path that no longer exists is not an error.
func removeIfOlder(path string, cutoff time.Time, recursive bool) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !info.ModTime().Before(cutoff) {
		return false, nil
	}
	if recursive {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
