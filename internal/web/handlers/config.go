package handlers

import (
	"net/http"

	"github.com/kozaktomas/field-reports/internal/config"
	"github.com/kozaktomas/field-reports/internal/database"
	"github.com/kozaktomas/field-reports/internal/export"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse describes what the export endpoint can produce
type ConfigResponse struct {
	Formats            []FormatInfo `json:"formats"`
	Backend            string       `json:"backend,omitempty"`
	MaxPhotosPerReport int          `json:"max_photos_per_report"`
	PageWidth          int          `json:"page_width"`
	PageHeight         int          `json:"page_height"`
	MapZoom            int          `json:"map_zoom"`
}

// FormatInfo names one export format and its accepted aliases
type FormatInfo struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Type    string   `json:"content_type"`
}

// Get returns the export capabilities
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	layout := h.config.Layout
	respondJSON(w, http.StatusOK, ConfigResponse{
		Formats: []FormatInfo{
			{Name: "archive", Aliases: []string{"zip"}, Type: export.ContentTypeZip},
			{Name: "document", Aliases: []string{"pdf"}, Type: export.ContentTypePDF},
			{Name: "image", Aliases: []string{"jpg", "jpeg"}, Type: export.ContentTypeJPEG},
		},
		Backend:            database.BackendName(),
		MaxPhotosPerReport: h.config.Images.MaxPhotosPerReport,
		PageWidth:          layout.Page.Width,
		PageHeight:         layout.Page.Height,
		MapZoom:            layout.Map.Zoom,
	})
}
