//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/field-reports/internal/config"
	"github.com/kozaktomas/field-reports/internal/database"
	"github.com/kozaktomas/field-reports/internal/report"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(ctx, cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}
	return pool, cleanup
}

func ptr[T any](v T) *T { return &v }

func TestReportRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewReportRepository(pool)

	project := &report.Project{
		Name: "Road Survey",
		Slug: "roads",
		OptionGroups: []report.OptionGroup{
			{Label: "Kind", Choices: []string{"Pothole", "Sign"}},
		},
	}
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	day := func(d, h int) time.Time { return time.Date(2024, 5, d, h, 0, 0, 0, time.UTC) }
	reports := []*report.Report{
		{
			ProjectID:  project.ID,
			Selections: report.Selections{{Label: "Kind", Value: "Sign"}, {Label: "Agency", Value: "City"}},
			Note:       "Bent",
			Lat:        ptr(50.0875),
			Lng:        ptr(14.4213),
			CreatedAt:  day(2, 9),
			Photos: []report.Photo{
				{Path: "roads/b.jpg", SortOrder: 1},
				{Path: "roads/a.jpg", SortOrder: 0, ExifJSON: []byte(`{"Make":"Canon"}`)},
			},
		},
		{ProjectID: project.ID, Selections: report.Selections{{Label: "Kind", Value: "Pothole"}}, CreatedAt: day(1, 18)},
		{ProjectID: project.ID, Selections: report.Selections{{Label: "Kind", Value: "Pothole"}}, CreatedAt: day(3, 23)},
	}
	for _, r := range reports {
		if err := repo.CreateReport(ctx, r); err != nil {
			t.Fatalf("Failed to create report: %v", err)
		}
	}

	t.Run("GetProjectBySlug", func(t *testing.T) {
		got, err := repo.GetProjectBySlug(ctx, "roads")
		if err != nil {
			t.Fatalf("Failed to get project: %v", err)
		}
		if got.ID != project.ID || got.Name != "Road Survey" {
			t.Errorf("Unexpected project: %+v", got)
		}
		if len(got.OptionGroups) != 1 || got.OptionGroups[0].Label != "Kind" {
			t.Errorf("Unexpected option groups: %+v", got.OptionGroups)
		}

		_, err = repo.GetProjectBySlug(ctx, "missing")
		if !errors.Is(err, database.ErrProjectNotFound) {
			t.Errorf("Expected ErrProjectNotFound, got %v", err)
		}
	})

	t.Run("ListReportsOrdered", func(t *testing.T) {
		got, err := repo.ListReports(ctx, project.ID, "", "")
		if err != nil {
			t.Fatalf("Failed to list reports: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Expected 3 reports, got %d", len(got))
		}
		want := []int64{reports[1].ID, reports[0].ID, reports[2].ID}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("Report %d: expected id %d, got %d", i, id, got[i].ID)
			}
		}

		sign := got[1]
		if sign.Selections.String() != "Kind: Sign | Agency: City" {
			t.Errorf("Selection order not preserved: %q", sign.Selections.String())
		}
		if p, ok := sign.Location(); !ok || p.Lat != 50.0875 {
			t.Errorf("Unexpected location %+v %v", p, ok)
		}
		if len(sign.Photos) != 2 || sign.Photos[0].Path != "roads/a.jpg" {
			t.Errorf("Photos not sorted: %+v", sign.Photos)
		}
		if string(sign.Photos[0].ExifJSON) != `{"Make":"Canon"}` {
			t.Errorf("Unexpected exif %s", sign.Photos[0].ExifJSON)
		}
		if _, ok := got[0].Location(); ok {
			t.Error("Report without coordinates must not have a location")
		}
	})

	t.Run("ListReportsDateRange", func(t *testing.T) {
		got, err := repo.ListReports(ctx, project.ID, "2024-05-02", "2024-05-03")
		if err != nil {
			t.Fatalf("Failed to list reports: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 reports, got %d", len(got))
		}
		if got[1].ID != reports[2].ID {
			t.Errorf("Inclusive upper bound must keep the late report on the last day")
		}
	})

	t.Run("LoadExport", func(t *testing.T) {
		req, err := report.ParseRequest("zip", "", "", fmt.Sprintf("%d", reports[2].ID))
		if err != nil {
			t.Fatal(err)
		}
		p, selected, err := database.LoadExport(ctx, repo, "roads", req)
		if err != nil {
			t.Fatalf("LoadExport failed: %v", err)
		}
		if p.Slug != "roads" || len(selected) != 1 || selected[0].ID != reports[2].ID {
			t.Errorf("Unexpected selection: %+v", selected)
		}
	})

	t.Run("MigrationsRecorded", func(t *testing.T) {
		versions, err := pool.MigrationsApplied(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(versions) == 0 || versions[0] != "001_reports.sql" {
			t.Errorf("Unexpected migrations: %v", versions)
		}
		if err := pool.Migrate(ctx); err != nil {
			t.Errorf("Second migrate must be a no-op: %v", err)
		}
	})
}
