package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/field-reports/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var layoutYAML []byte

type Config struct {
	Storage    StorageConfig
	Remote     RemoteConfig
	Images     ImagesConfig
	Cache      CacheConfig
	Database   DatabaseConfig
	Web        WebConfig
	Layout     LayoutConfig
	LayoutFile string // optional YAML file overriding the embedded layout
	FontPath   string // TrueType font for page images; "bitmap" forces the fixed font
	Debug      bool   // show full error messages to clients
	LogLevel   string
}

type StorageConfig struct {
	UploadsDir string // root that Photo.Path is relative to
	CacheDir   string // tiles, geocode answers and export artifacts
}

type RemoteConfig struct {
	TileURL    string // {z}/{x}/{y} template, defaults to OpenStreetMap
	GeocodeURL string // reverse geocoding endpoint, defaults to Nominatim
	UserAgent  string
	Timeout    time.Duration
}

type ImagesConfig struct {
	MaxDimension       int
	MaxPhotosPerReport int
	ThumbnailWidth     int
}

type CacheConfig struct {
	TileTTL       time.Duration
	GeocodeTTL    time.Duration
	ExportTTL     time.Duration
	ExportTempTTL time.Duration
	CleanInterval time.Duration
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MySQLDSN     string // MariaDB/MySQL DSN (e.g., reports:reports@tcp(mariadb:3306)/reports)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins string // comma separated CORS origins besides localhost
}

// Addr returns host:port for the HTTP listener.
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envHours reads a positive number of hours.
func envHours(key string, defaultHours int) time.Duration {
	return time.Duration(envInt(key, defaultHours)) * time.Hour
}

// envString returns the env var or defaultVal when unset or blank.
func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// envBool accepts 1/true/yes/on (any case).
func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			UploadsDir: envString("UPLOADS_DIR", "./uploads"),
			CacheDir:   envString("CACHE_DIR", "./cache"),
		},
		Remote: RemoteConfig{
			TileURL:    os.Getenv("TILE_URL"),
			GeocodeURL: os.Getenv("GEOCODE_URL"),
			UserAgent:  envString("USER_AGENT", constants.DefaultUserAgent),
			Timeout:    time.Duration(envInt("HTTP_TIMEOUT_SECONDS", constants.DefaultHTTPTimeoutSeconds)) * time.Second,
		},
		Images: ImagesConfig{
			MaxDimension:       envInt("MAX_IMAGE_DIMENSION", constants.MaxImageDimension),
			MaxPhotosPerReport: envInt("MAX_PHOTOS_PER_REPORT", constants.MaxPhotosPerReport),
			ThumbnailWidth:     envInt("THUMBNAIL_WIDTH", constants.ThumbnailWidth),
		},
		Cache: CacheConfig{
			TileTTL:       envHours("CACHE_TTL_TILES_HOURS", constants.DefaultTileTTLHours),
			GeocodeTTL:    envHours("CACHE_TTL_GEOCODE_HOURS", constants.DefaultGeocodeTTLHours),
			ExportTTL:     envHours("CACHE_TTL_EXPORT_HOURS", constants.DefaultExportTTLHours),
			ExportTempTTL: envHours("CACHE_TTL_EXPORT_TEMP_HOURS", constants.DefaultExportTempTTLHours),
			CleanInterval: time.Duration(envInt("CACHE_CLEAN_INTERVAL_MINUTES", constants.DefaultCleanIntervalMinutes)) * time.Minute,
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MySQLDSN:     os.Getenv("MYSQL_DSN"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", constants.DefaultWebHost),
			Port:           envInt("WEB_PORT", constants.DefaultWebPort),
			AllowedOrigins: os.Getenv("WEB_ALLOWED_ORIGINS"),
		},
		Layout:     DefaultLayout(),
		LayoutFile: os.Getenv("LAYOUT_FILE"),
		FontPath:   os.Getenv("FONT_PATH"),
		Debug:      envBool("DEBUG"),
		LogLevel:   envString("LOG_LEVEL", "info"),
	}
}

// ApplyLayoutFile merges the YAML file named by LayoutFile over the embedded
// layout. Keys missing from the file keep their embedded values.
func (c *Config) ApplyLayoutFile() error {
	if c.LayoutFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.LayoutFile)
	if err != nil {
		return fmt.Errorf("reading layout file: %w", err)
	}
	layout := c.Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return fmt.Errorf("parsing layout file %s: %w", c.LayoutFile, err)
	}
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("layout file %s: %w", c.LayoutFile, err)
	}
	c.Layout = layout
	return nil
}

// DefaultLayout returns the embedded page layout.
func DefaultLayout() LayoutConfig {
	var layout LayoutConfig
	if err := yaml.Unmarshal(layoutYAML, &layout); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded layout.yaml: " + err.Error())
	}
	return layout
}
