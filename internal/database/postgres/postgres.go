// Package postgres is the PostgreSQL report backend.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/field-reports/internal/config"
	"github.com/kozaktomas/field-reports/internal/database"
	_ "github.com/lib/pq"
)

const (
	connectTimeout  = 10 * time.Second
	connMaxLifetime = time.Hour
	connMaxIdleTime = 10 * time.Minute
)

// Pool is a pq connection pool holding the report tables.
type Pool struct {
	db *sql.DB
}

// NewPool opens the database at cfg.URL and waits until it answers a ping.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("opening PostgreSQL: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging PostgreSQL: %w", err)
	}
	return &Pool{db: db}, nil
}

// Close releases every connection.
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("closing PostgreSQL: %w", err)
	}
	return nil
}

// Initialize connects, applies pending migrations and registers the
// repository as the "postgres" report backend. The caller closes the pool.
func Initialize(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrating report schema: %w", err)
	}

	repo := NewReportRepository(pool)
	database.RegisterReportReader("postgres", func() database.ReportReader { return repo })
	return pool, nil
}
