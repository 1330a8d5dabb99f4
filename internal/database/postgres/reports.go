package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kozaktomas/field-reports/internal/database"
	"github.com/kozaktomas/field-reports/internal/report"
	"github.com/lib/pq"
)

// ReportRepository reads projects and reports from PostgreSQL.
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
		`SELECT `+database.ProjectColumns+` FROM projects WHERE slug = $1`, slug)
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
	start, end := database.DayBounds(from, to)
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+database.ReportColumns+`
		FROM reports
		WHERE project_id = $1
		  AND ($2::timestamp IS NULL OR created_at >= $2)
		  AND ($3::timestamp IS NULL OR created_at < $3)
		ORDER BY created_at, id
	`, projectID, start, end)
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
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+database.PhotoColumns+`
		FROM report_photos
		WHERE report_id = ANY($1)
		ORDER BY report_id, sort_order, id
	`, pq.Array(ids))
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

// CreateProject inserts a project and sets its ID.
func (r *ReportRepository) CreateProject(ctx context.Context, p *report.Project) error {
	groups, err := optionGroupsJSON(p.OptionGroups)
	if err != nil {
		return err
	}
	err = r.pool.db.QueryRowContext(ctx,
		`INSERT INTO projects (name, slug, option_groups) VALUES ($1, $2, $3) RETURNING id`,
		p.Name, p.Slug, string(groups)).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert project %s: %w", p.Slug, err)
	}
	return nil
}

// CreateReport inserts a report with its photos and sets its ID.
func (r *ReportRepository) CreateReport(ctx context.Context, rep *report.Report) error {
	selections, err := rep.Selections.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode selections: %w", err)
	}

	tx, err := r.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reports (project_id, selections, note, lat, lng, comment, reviewed_at, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, $8)
		RETURNING id
	`, rep.ProjectID, string(selections), rep.Note, rep.Lat, rep.Lng, rep.Comment, rep.ReviewedAt, rep.CreatedAt).Scan(&rep.ID)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	for _, p := range rep.Photos {
		var exif any
		if len(p.ExifJSON) > 0 {
			exif = string(p.ExifJSON)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_photos (report_id, photo_path, sort_order, exif_json) VALUES ($1, $2, $3, $4)`,
			rep.ID, p.Path, p.SortOrder, exif); err != nil {
			return fmt.Errorf("insert photo %s: %w", p.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}

func optionGroupsJSON(groups []report.OptionGroup) ([]byte, error) {
	if groups == nil {
		groups = []report.OptionGroup{}
	}
	data, err := json.Marshal(groups)
	if err != nil {
		return nil, fmt.Errorf("encode option groups: %w", err)
	}
	return data, nil
}
