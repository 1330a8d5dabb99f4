// Package metrics holds the Prometheus collectors of the export engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tile fetch sources.
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
	SourceFailed = "failed"
)

var (
	// ExportsTotal counts finished exports by format and outcome (ok, failed).
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "field_reports_exports_total",
			Help: "Number of export requests by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	// ExportDuration observes the wall time of an export.
	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "field_reports_export_duration_seconds",
			Help:    "Time spent producing one export artifact",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"format"},
	)

	// TileFetches counts map tile lookups by source.
	TileFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "field_reports_tile_fetches_total",
			Help: "Map tile lookups by source (cache, remote, failed)",
		},
		[]string{"source"},
	)

	// GeocodeLookups counts reverse geocoding lookups by source.
	GeocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "field_reports_geocode_lookups_total",
			Help: "Reverse geocoding lookups by source (cache, remote, failed)",
		},
		[]string{"source"},
	)

	// JanitorDeleted counts files removed by the cache janitor per category.
	JanitorDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "field_reports_janitor_deleted_total",
			Help: "Expired cache files removed by the janitor",
		},
		[]string{"category"},
	)
)
