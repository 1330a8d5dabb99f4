package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kozaktomas/field-reports/internal/report"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ProjectColumns is the column list ScanProject expects, in order.
const ProjectColumns = "id, name, slug, option_groups"

// ReportColumns is the column list ScanReport expects, in order.
const ReportColumns = "id, project_id, selections, note, lat, lng, comment, reviewed_at, created_at"

// PhotoColumns is the column list ScanPhoto expects, in order.
const PhotoColumns = "report_id, photo_path, sort_order, exif_json"

// ScanProject reads one project row.
func ScanProject(s Scanner) (*report.Project, error) {
	var (
		p      report.Project
		groups []byte
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Slug, &groups); err != nil {
		return nil, err
	}
	if len(groups) > 0 {
		if err := json.Unmarshal(groups, &p.OptionGroups); err != nil {
			return nil, fmt.Errorf("decoding option groups of project %d: %w", p.ID, err)
		}
	}
	return &p, nil
}

// ScanReport reads one report row. Photos are attached separately.
func ScanReport(s Scanner) (report.Report, error) {
	var (
		r          report.Report
		selections []byte
		note       sql.NullString
		lat, lng   sql.NullFloat64
		comment    sql.NullString
		reviewedAt sql.NullTime
	)
	if err := s.Scan(&r.ID, &r.ProjectID, &selections, &note, &lat, &lng, &comment, &reviewedAt, &r.CreatedAt); err != nil {
		return report.Report{}, err
	}
	if len(selections) > 0 {
		if err := json.Unmarshal(selections, &r.Selections); err != nil {
			return report.Report{}, fmt.Errorf("decoding selections of report %d: %w", r.ID, err)
		}
	}
	r.Note = note.String
	r.Comment = comment.String
	if lat.Valid {
		r.Lat = &lat.Float64
	}
	if lng.Valid {
		r.Lng = &lng.Float64
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		r.ReviewedAt = &t
	}
	return r, nil
}

// ScanPhoto reads one photo row and the id of the report it belongs to.
func ScanPhoto(s Scanner) (int64, report.Photo, error) {
	var (
		reportID int64
		p        report.Photo
		exif     []byte
	)
	if err := s.Scan(&reportID, &p.Path, &p.SortOrder, &exif); err != nil {
		return 0, report.Photo{}, err
	}
	if len(exif) > 0 {
		p.ExifJSON = exif
	}
	return reportID, p, nil
}

// AttachPhotos appends photos to their reports, then sorts every report's
// photos by sort order.
func AttachPhotos(reports []report.Report, photos map[int64][]report.Photo) {
	for i := range reports {
		reports[i].Photos = append(reports[i].Photos, photos[reports[i].ID]...)
		report.SortPhotos(reports[i].Photos)
	}
}

// ReportIDs returns the ids of reports in order.
func ReportIDs(reports []report.Report) []int64 {
	ids := make([]int64, len(reports))
	for i := range reports {
		ids[i] = reports[i].ID
	}
	return ids
}

// DayBounds converts inclusive YYYY-MM-DD bounds into a half-open timestamp
// range. Empty bounds yield nil.
func DayBounds(from, to string) (start, end *time.Time) {
	if t, err := time.Parse(report.DateLayout, from); err == nil {
		start = &t
	}
	if t, err := time.Parse(report.DateLayout, to); err == nil {
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	return start, end
}
