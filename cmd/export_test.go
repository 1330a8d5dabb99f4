package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/field-reports/internal/database"
	"github.com/kozaktomas/field-reports/internal/export"
	"github.com/kozaktomas/field-reports/internal/report"
)

func writeBundle(t *testing.T) string {
	t.Helper()
	bundle := report.Bundle{
		Project: report.Project{ID: 1, Name: "Roads", Slug: "roads"},
		Reports: []report.Report{
			{ID: 10, ProjectID: 1, CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
			{ID: 11, ProjectID: 1, CreatedAt: time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)},
			{ID: 12, ProjectID: 1, CreatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)},
		},
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	path := filepath.Join(t.TempDir(), "reports.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
	return path
}

func TestLoadForExportFromBundle(t *testing.T) {
	input := writeBundle(t)

	req, err := report.ParseRequest("pdf", "2024-05-01", "2024-05-31", "")
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}

	project, reports, err := loadForExport(t.Context(), nil, "roads", input, req)
	if err != nil {
		t.Fatalf("loadForExport: %v", err)
	}
	if project.Name != "Roads" {
		t.Errorf("expected project Roads, got %q", project.Name)
	}
	if len(reports) != 2 || reports[0].ID != 10 || reports[1].ID != 11 {
		t.Errorf("expected reports 10 and 11, got %+v", reports)
	}
}

func TestLoadForExportBundleErrors(t *testing.T) {
	input := writeBundle(t)

	tests := []struct {
		name  string
		slug  string
		input string
		req   report.Request
		want  error
	}{
		{"other project", "bridges", input, report.Request{Format: report.FormatArchive}, database.ErrProjectNotFound},
		{"nothing selected", "roads", input, report.Request{Format: report.FormatArchive, IDs: []int64{99}}, report.ErrNoReports},
		{"missing file", "roads", filepath.Join(t.TempDir(), "nope.json"), report.Request{}, os.ErrNotExist},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := loadForExport(t.Context(), nil, tc.slug, tc.input, tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDeliver(t *testing.T) {
	src := filepath.Join(t.TempDir(), "roads-abc.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	art := &export.Artifact{Path: src, ContentType: export.ContentTypePDF, Filename: "roads-export.pdf"}

	dest := filepath.Join(t.TempDir(), "out", art.Filename)
	if err := deliver(art, dest); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading delivered file: %v", err)
	}
	if string(got) != "%PDF-1.4" {
		t.Errorf("unexpected content %q", got)
	}
	if err := art.Remove(); err != nil {
		t.Errorf("removing a moved artifact should not fail: %v", err)
	}
}
