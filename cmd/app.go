package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/kozaktomas/field-reports/internal/cache"
	"github.com/kozaktomas/field-reports/internal/config"
	"github.com/kozaktomas/field-reports/internal/database"
	"github.com/kozaktomas/field-reports/internal/database/mariadb"
	"github.com/kozaktomas/field-reports/internal/database/postgres"
	"github.com/kozaktomas/field-reports/internal/export"
	"github.com/kozaktomas/field-reports/internal/geocode"
	"github.com/kozaktomas/field-reports/internal/janitor"
	"github.com/kozaktomas/field-reports/internal/layout"
	"github.com/kozaktomas/field-reports/internal/logging"
	"github.com/kozaktomas/field-reports/internal/mapimage"
	"github.com/kozaktomas/field-reports/internal/remote"
	"github.com/kozaktomas/field-reports/internal/report"
	"github.com/kozaktomas/field-reports/internal/tiles"
)

// app holds the collaborators shared by the commands.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	layout cache.Layout
	client *remote.Client
}

// newApp loads configuration, applies the optional layout file and builds
// the logger.
func newApp() (*app, error) {
	cfg := config.Load()
	if err := cfg.ApplyLayoutFile(); err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger := logging.Default(level)
	return &app{
		cfg:    cfg,
		logger: logger,
		layout: cache.Layout{Root: cfg.Storage.CacheDir},
		client: newRemoteClient(&cfg.Remote),
	}, nil
}

// newRemoteClient builds the client shared by the tile store and the
// geocoder. Nominatim localises road and address names by Accept-Language.
func newRemoteClient(cfg *config.RemoteConfig) *remote.Client {
	return remote.NewClient(cfg.UserAgent, cfg.Timeout, remote.WithHeader("Accept-Language", "en"))
}

// context returns a background context carrying the app logger.
func (a *app) context() context.Context {
	return logging.WithLogger(context.Background(), a.logger)
}

func (a *app) compositor() (*mapimage.Compositor, error) {
	tileCache, err := a.layout.OpenTiles()
	if err != nil {
		return nil, fmt.Errorf("opening tile cache: %w", err)
	}
	store := tiles.NewStore(tileCache, a.client, a.cfg.Remote.TileURL, a.logger)
	return mapimage.NewCompositor(store, a.logger), nil
}

func (a *app) resolver() (*geocode.Resolver, error) {
	geoCache, err := a.layout.OpenGeocode()
	if err != nil {
		return nil, fmt.Errorf("opening geocode cache: %w", err)
	}
	return geocode.NewResolver(geoCache, a.client, a.cfg.Remote.GeocodeURL, a.logger), nil
}

// exporter wires tile store, geocoder, page engine and exporter together.
func (a *app) exporter(onReport func()) (*export.Exporter, error) {
	maps, err := a.compositor()
	if err != nil {
		return nil, err
	}
	resolver, err := a.resolver()
	if err != nil {
		return nil, err
	}
	fonts, err := layout.LoadFonts(a.cfg.FontPath)
	if err != nil {
		return nil, err
	}
	opts := export.Options{
		UploadsDir: a.cfg.Storage.UploadsDir,
		ExportDir:  a.layout.Exports(),
		Geocoder:   resolver,
		Stamper:    maps,
		Pages:      layout.NewEngine(a.cfg.Layout, fonts, maps, a.logger),
		Logger:     a.logger,
	}
	if onReport != nil {
		opts.OnReport = func(*report.Report) { onReport() }
	}
	return export.New(opts)
}

func (a *app) janitor() *janitor.Janitor {
	return janitor.New(a.layout, janitor.TTLs{
		Tiles:      a.cfg.Cache.TileTTL,
		Geocode:    a.cfg.Cache.GeocodeTTL,
		Exports:    a.cfg.Cache.ExportTTL,
		ExportTemp: a.cfg.Cache.ExportTempTTL,
	}, a.logger)
}

// openReports connects the configured report backend. PostgreSQL wins when
// both are configured.
func (a *app) openReports(ctx context.Context) (database.ReportReader, io.Closer, error) {
	var (
		closer io.Closer
		err    error
	)
	switch {
	case a.cfg.Database.URL != "":
		a.logger.Info("connecting to PostgreSQL")
		closer, err = postgres.Initialize(ctx, &a.cfg.Database)
	case a.cfg.Database.MySQLDSN != "":
		a.logger.Info("connecting to MariaDB")
		closer, err = mariadb.Initialize(a.cfg.Database.MySQLDSN)
	default:
		return nil, nil, errors.New("DATABASE_URL or MYSQL_DSN environment variable is required (or pass --input)")
	}
	if err != nil {
		return nil, nil, err
	}
	reader, err := database.GetReportReader(ctx)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return reader, closer, nil
}
