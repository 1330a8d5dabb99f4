// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Photo constants
const (
	// MaxPhotosPerReport is the default cap on photos attached to one report
	MaxPhotosPerReport = 3

	// MaxImageDimension is the default bound for the longer side of stored photos
	MaxImageDimension = 2048

	// ThumbnailWidth is the default width of generated thumbnails
	ThumbnailWidth = 150
)

// Map constants
const (
	// BadgeZoom is the tile zoom of the location badge stamped on archive photos
	BadgeZoom = 16

	// PageMapZoom is the tile zoom of the map band on page images
	PageMapZoom = 17

	// BadgeWidth and BadgeHeight size the location badge
	BadgeWidth  = 200
	BadgeHeight = 150
)

// Remote service constants
const (
	// DefaultUserAgent identifies the engine to tile and geocoding servers
	DefaultUserAgent = "FieldReports/1.0"

	// DefaultHTTPTimeoutSeconds bounds every tile and geocoding request
	DefaultHTTPTimeoutSeconds = 5
)

// Cache lifetime constants
const (
	// DefaultTileTTLHours keeps map tiles for 30 days
	DefaultTileTTLHours = 720

	// DefaultGeocodeTTLHours keeps reverse geocoding answers for 90 days
	DefaultGeocodeTTLHours = 2160

	// DefaultExportTTLHours keeps finished artifacts that were never collected
	DefaultExportTTLHours = 24

	// DefaultExportTempTTLHours keeps abandoned scratch directories
	DefaultExportTempTTLHours = 2

	// DefaultCleanIntervalMinutes is the janitor period
	DefaultCleanIntervalMinutes = 30
)

// Export constants
const (
	// ArchiveJPEGQuality is used when a stamped archive photo is re-encoded
	ArchiveJPEGQuality = 90

	// MaxDescriptionBytes is the largest EXIF ImageDescription that is embedded
	MaxDescriptionBytes = 65535
)
