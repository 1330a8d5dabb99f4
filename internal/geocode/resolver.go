// Package geocode resolves coordinates to a road name and postal address
// through a reverse geocoding service, caching parsed results on disk.
package geocode

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kozaktomas/field-reports/internal/cache"
	"github.com/kozaktomas/field-reports/internal/logging"
	"github.com/kozaktomas/field-reports/internal/metrics"
	"github.com/kozaktomas/field-reports/internal/remote"
	"github.com/kozaktomas/field-reports/internal/report"
)

// DefaultEndpoint is the Nominatim reverse geocoding endpoint.
const DefaultEndpoint = "https://nominatim.openstreetmap.org/reverse"

// Place is the cached result of a lookup. Either field may be empty.
type Place struct {
	Road    string `json:"road"`
	Address string `json:"address"`
}

// nominatimResponse is the subset of the reverse response we read.
type nominatimResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// Resolver looks up places for coordinates.
type Resolver struct {
	cache    cache.Store
	client   *remote.Client
	endpoint string
	logger   *log.Logger
}

// NewResolver creates a Resolver. An empty endpoint means DefaultEndpoint.
func NewResolver(c cache.Store, client *remote.Client, endpoint string, logger *log.Logger) *Resolver {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Resolver{
		cache:    c,
		client:   client,
		endpoint: endpoint,
		logger:   logging.OrDiscard(logger),
	}
}

// CacheKey returns the file-safe key of a point rounded to 5 decimals:
// dots become "p" and minus signs "m".
func CacheKey(p report.GeoPoint) string {
	r := p.Rounded()
	key := formatCoord(r.Lat) + "_" + formatCoord(r.Lng)
	return strings.NewReplacer(".", "p", "-", "m").Replace(key)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Resolve returns the place for p. Any failure yields false and nothing is
// cached, so a later call retries. Successful results stay cached until the
// janitor reaps them.
func (r *Resolver) Resolve(ctx context.Context, p report.GeoPoint) (Place, bool) {
	if !p.Valid() {
		return Place{}, false
	}
	key := CacheKey(p)
	if data, ok := r.cache.Get(key); ok {
		var cached Place
		if err := json.Unmarshal(data, &cached); err == nil {
			metrics.GeocodeLookups.WithLabelValues(metrics.SourceCache).Inc()
			return cached, true
		}
		r.logger.Warn("ignoring unreadable geocode entry", "key", key)
	}

	resp, err := remote.GetJSON[nominatimResponse](ctx, r.client, r.requestURL(p.Rounded()))
	if err != nil {
		r.logger.Debug("reverse geocoding failed", "key", key, "err", err)
		metrics.GeocodeLookups.WithLabelValues(metrics.SourceFailed).Inc()
		return Place{}, false
	}

	place := placeFromResponse(resp)
	if data, err := json.Marshal(place); err == nil {
		if err := r.cache.Put(key, data); err != nil {
			r.logger.Warn("could not cache geocode result", "key", key, "err", err)
		}
	}
	metrics.GeocodeLookups.WithLabelValues(metrics.SourceRemote).Inc()
	return place, true
}

// RoadName returns only the road of p, empty when unknown.
func (r *Resolver) RoadName(ctx context.Context, p report.GeoPoint) string {
	place, _ := r.Resolve(ctx, p)
	return place.Road
}

func (r *Resolver) requestURL(p report.GeoPoint) string {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", formatCoord(p.Lat))
	q.Set("lon", formatCoord(p.Lng))
	q.Set("addressdetails", "1")
	q.Set("zoom", "18")
	return r.endpoint + "?" + q.Encode()
}

func placeFromResponse(resp *nominatimResponse) Place {
	road := RoadFromComponents(resp.Address)
	if road == "" {
		road = resp.DisplayName
	}
	address := AddressFromComponents(resp.Address)
	if address == "" {
		address = resp.DisplayName
	}
	return Place{Road: road, Address: address}
}
