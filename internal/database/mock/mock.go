// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/field-reports/internal/database"
	"github.com/kozaktomas/field-reports/internal/report"
)

// MockReportReader is an in-memory database.ReportReader
type MockReportReader struct {
	mu       sync.RWMutex
	projects map[string]*report.Project
	reports  map[int64][]report.Report

	// Error injection
	GetProjectError  error
	ListReportsError error

	// ListCalls counts ListReports invocations
	ListCalls int
}

// NewMockReportReader creates an empty mock reader
func NewMockReportReader() *MockReportReader {
	return &MockReportReader{
		projects: make(map[string]*report.Project),
		reports:  make(map[int64][]report.Report),
	}
}

// AddProject stores a project with its reports, in the order given
func (m *MockReportReader) AddProject(p report.Project, reports ...report.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.Slug] = &p
	for i := range reports {
		reports[i].ProjectID = p.ID
	}
	m.reports[p.ID] = append(m.reports[p.ID], reports...)
}

// GetProjectBySlug returns a copy of the stored project
func (m *MockReportReader) GetProjectBySlug(ctx context.Context, slug string) (*report.Project, error) {
	if m.GetProjectError != nil {
		return nil, m.GetProjectError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", database.ErrProjectNotFound, slug)
	}
	cp := *p
	return &cp, nil
}

// ListReports returns the stored reports within the date range
func (m *MockReportReader) ListReports(ctx context.Context, projectID int64, from, to string) ([]report.Report, error) {
	m.mu.Lock()
	m.ListCalls++
	m.mu.Unlock()
	if m.ListReportsError != nil {
		return nil, m.ListReportsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []report.Report
	for _, r := range m.reports[projectID] {
		day := r.CreatedAt.Format(report.DateLayout)
		if from != "" && day < from {
			continue
		}
		if to != "" && day > to {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

var _ database.ReportReader = (*MockReportReader)(nil)
