// Package constants provides shared constants used across the codebase.
package constants

// HTTP handler constants
const (
	// MaxExportIDs limits the number of report ids accepted in one export request
	MaxExportIDs = 10000

	// ExportFailedMessage is shown to clients when debug mode is off
	ExportFailedMessage = "Export failed"

	// NoReportsMessage is shown when the filtered report list is empty
	NoReportsMessage = "No reports to export"
)

// Server constants
const (
	// DefaultWebPort is the default listen port of the serve command
	DefaultWebPort = 8080

	// DefaultWebHost is the default listen address of the serve command
	DefaultWebHost = "0.0.0.0"
)
