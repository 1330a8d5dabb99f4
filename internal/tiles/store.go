// Package tiles fetches 256x256 map tiles through a disk cache.
package tiles

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/kozaktomas/field-reports/internal/cache"
	"github.com/kozaktomas/field-reports/internal/geo"
	"github.com/kozaktomas/field-reports/internal/logging"
	"github.com/kozaktomas/field-reports/internal/metrics"
	"github.com/kozaktomas/field-reports/internal/remote"
)

// DefaultURLTemplate is the public OpenStreetMap tile server.
const DefaultURLTemplate = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// Fetcher returns the encoded image of one tile. A false result means the
// tile is unavailable and should be left out.
type Fetcher interface {
	Fetch(ctx context.Context, key geo.TileKey) ([]byte, bool)
}

// Store is a Fetcher backed by a cache and a remote tile server.
type Store struct {
	cache       cache.Store
	client      *remote.Client
	urlTemplate string
	logger      *log.Logger
}

// NewStore creates a Store. An empty urlTemplate means DefaultURLTemplate.
func NewStore(c cache.Store, client *remote.Client, urlTemplate string, logger *log.Logger) *Store {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	return &Store{
		cache:       c,
		client:      client,
		urlTemplate: urlTemplate,
		logger:      logging.OrDiscard(logger),
	}
}

// CacheKey returns the "{z}_{x}_{y}" key of a tile.
func CacheKey(k geo.TileKey) string {
	return fmt.Sprintf("%d_%d_%d", k.Z, k.X, k.Y)
}

// URL expands the template for k.
func (s *Store) URL(k geo.TileKey) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(k.Z),
		"{x}", strconv.Itoa(k.X),
		"{y}", strconv.Itoa(k.Y),
	).Replace(s.urlTemplate)
}

// Fetch returns the tile from cache, else from the remote server, persisting
// successful responses verbatim. Failures are never cached and there is no
// retry.
func (s *Store) Fetch(ctx context.Context, k geo.TileKey) ([]byte, bool) {
	if !k.Valid() {
		metrics.TileFetches.WithLabelValues(metrics.SourceFailed).Inc()
		return nil, false
	}
	key := CacheKey(k)
	if data, ok := s.cache.Get(key); ok {
		metrics.TileFetches.WithLabelValues(metrics.SourceCache).Inc()
		return data, true
	}

	data, err := s.client.Get(ctx, s.URL(k))
	if err != nil {
		s.logger.Debug("tile unavailable", "tile", k.String(), "err", err)
		metrics.TileFetches.WithLabelValues(metrics.SourceFailed).Inc()
		return nil, false
	}
	if !IsImage(data) {
		s.logger.Debug("tile payload is not an image", "tile", k.String(), "type", mimetype.Detect(data).String())
		metrics.TileFetches.WithLabelValues(metrics.SourceFailed).Inc()
		return nil, false
	}

	if err := s.cache.Put(key, data); err != nil {
		s.logger.Warn("could not cache tile", "tile", k.String(), "err", err)
	}
	metrics.TileFetches.WithLabelValues(metrics.SourceRemote).Inc()
	return data, true
}

// IsImage reports whether data sniffs as an image.
func IsImage(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return strings.HasPrefix(mimetype.Detect(data).String(), "image/")
}
