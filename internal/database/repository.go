package database

import (
	"context"
	"errors"

	"github.com/kozaktomas/field-reports/internal/report"
)

// ErrProjectNotFound is returned when no project has the requested slug.
var ErrProjectNotFound = errors.New("project not found")

// ReportReader provides read-only access to projects and their reports
type ReportReader interface {
	// GetProjectBySlug returns the project with slug, or ErrProjectNotFound
	GetProjectBySlug(ctx context.Context, slug string) (*report.Project, error)
	// ListReports returns the project's reports created within the inclusive
	// YYYY-MM-DD range (empty bounds are open), oldest first, with photos
	// ordered by sort order
	ListReports(ctx context.Context, projectID int64, from, to string) ([]report.Report, error)
}

// LoadExport resolves slug and returns the reports selected by req. An empty
// selection is report.ErrNoReports.
func LoadExport(ctx context.Context, r ReportReader, slug string, req report.Request) (*report.Project, []report.Report, error) {
	project, err := r.GetProjectBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	reports, err := r.ListReports(ctx, project.ID, req.From, req.To)
	if err != nil {
		return nil, nil, err
	}
	selected, err := req.Filter(reports)
	if err != nil {
		return project, nil, err
	}
	return project, selected, nil
}
