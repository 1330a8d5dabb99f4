package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/field-reports/internal/database"
	"github.com/kozaktomas/field-reports/internal/report"
)

// ReportRepository reads projects and reports from MariaDB.
type ReportRepository struct {
	pool *Pool
}

// NewReportRepository creates a repository on pool.
func NewReportRepository(pool *Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// GetProjectBySlug returns the project with slug.
func (r *ReportRepository) GetProjectBySlug(ctx context.Context, slug string) (*report.Project, error) {
	row := r.pool.db.QueryRowContext(ctx,
		`SELECT `+database.ProjectColumns+` FROM projects WHERE slug = ?`, slug)
	p, err := database.ScanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", database.ErrProjectNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", slug, err)
	}
	return p, nil
}

// ListReports returns the project's reports in the date range, oldest first.
func (r *ReportRepository) ListReports(ctx context.Context, projectID int64, from, to string) ([]report.Report, error) {
	query := `SELECT ` + database.ReportColumns + ` FROM reports WHERE project_id = ?`
	args := []any{projectID}
	start, end := database.DayBounds(from, to)
	if start != nil {
		query += ` AND created_at >= ?`
		args = append(args, *start)
	}
	if end != nil {
		query += ` AND created_at < ?`
		args = append(args, *end)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []report.Report
	for rows.Next() {
		rep, err := database.ScanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	if len(reports) == 0 {
		return reports, nil
	}

	photos, err := r.photos(ctx, database.ReportIDs(reports))
	if err != nil {
		return nil, err
	}
	database.AttachPhotos(reports, photos)
	return reports, nil
}

func (r *ReportRepository) photos(ctx context.Context, ids []int64) (map[int64][]report.Photo, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT `+database.PhotoColumns+` FROM report_photos WHERE report_id IN (`+placeholders+`) ORDER BY report_id, sort_order, id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]report.Photo)
	for rows.Next() {
		reportID, p, err := database.ScanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		out[reportID] = append(out[reportID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return out, nil
}
