package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/field-reports/internal/database"
	"github.com/kozaktomas/field-reports/internal/export"
	"github.com/kozaktomas/field-reports/internal/logging"
	"github.com/kozaktomas/field-reports/internal/report"
)

// Exporter builds export artifacts.
type Exporter interface {
	Export(ctx context.Context, project *report.Project, reports []report.Report, format report.Format) (*export.Artifact, error)
}

// ExportHandler serves project exports as file downloads
type ExportHandler struct {
	reports  database.ReportReader
	exporter Exporter
	debug    bool
	logger   *log.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(reports database.ReportReader, exporter Exporter, debug bool, logger *log.Logger) *ExportHandler {
	return &ExportHandler{
		reports:  reports,
		exporter: exporter,
		debug:    debug,
		logger:   logging.OrDiscard(logger),
	}
}

// Export handles GET /projects/{slug}/export?format=&from=&to=&ids=. The
// artifact is streamed and deleted once the response is written.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := report.ValidateSlug(slug); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project slug")
		return
	}

	q := r.URL.Query()
	req, err := report.ParseRequest(q.Get("format"), q.Get("from"), q.Get("to"), q.Get("ids"))
	switch {
	case errors.Is(err, report.ErrInvalidFormat):
		respondError(w, http.StatusBadRequest, "Invalid format")
		return
	case errors.Is(err, report.ErrInvalidSelection):
		respondError(w, http.StatusBadRequest, "Invalid report selection")
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, reports, err := database.LoadExport(r.Context(), h.reports, slug, req)
	switch {
	case errors.Is(err, database.ErrProjectNotFound):
		respondError(w, http.StatusNotFound, "Project not found")
		return
	case errors.Is(err, report.ErrNoReports):
		respondError(w, http.StatusBadRequest, export.UserMessage(err, h.debug))
		return
	case err != nil:
		h.logger.Error("loading reports failed", "project", sanitizeForLog(slug), "err", err)
		respondError(w, http.StatusInternalServerError, export.UserMessage(err, h.debug))
		return
	}

	art, err := h.exporter.Export(r.Context(), project, reports, req.Format)
	if err != nil {
		respondError(w, http.StatusInternalServerError, export.UserMessage(err, h.debug))
		return
	}
	defer func() {
		if err := art.Remove(); err != nil {
			h.logger.Warn("could not remove delivered artifact", "file", art.Path, "err", err)
		}
	}()

	if err := respondAttachment(w, art.Path, art.ContentType, art.Filename); err != nil {
		h.logger.Error("delivering export failed", "project", sanitizeForLog(slug), "err", err)
	}
}
