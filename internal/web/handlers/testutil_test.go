package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/field-reports/internal/export"
	"github.com/kozaktomas/field-reports/internal/report"
)

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// fakeExporter writes a small artifact file and records what it was asked for
type fakeExporter struct {
	dir     string
	err     error
	project *report.Project
	reports []report.Report
	format  report.Format
	last    *export.Artifact
}

func (f *fakeExporter) Export(_ context.Context, project *report.Project, reports []report.Report, format report.Format) (*export.Artifact, error) {
	f.project, f.reports, f.format = project, reports, format
	if f.err != nil {
		return nil, f.err
	}
	path := filepath.Join(f.dir, project.Slug+"-artifact.zip")
	if err := os.WriteFile(path, []byte("PK-artifact"), 0o644); err != nil {
		return nil, err
	}
	f.last = &export.Artifact{Path: path, ContentType: export.ContentTypeZip, Filename: project.Slug + "-export.zip"}
	return f.last, nil
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
