package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"unset", "", 42},
		{"valid", "7", 7},
		{"zero", "0", 42},
		{"negative", "-3", 42},
		{"garbage", "abc", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_INT", tt.value)
			if got := envInt("TEST_ENV_INT", 42); got != tt.expected {
				t.Errorf("envInt() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		t.Setenv("TEST_ENV_BOOL", v)
		if !envBool("TEST_ENV_BOOL") {
			t.Errorf("envBool(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"", "0", "false", "nope"} {
		t.Setenv("TEST_ENV_BOOL", v)
		if envBool("TEST_ENV_BOOL") {
			t.Errorf("envBool(%q) = true, want false", v)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"UPLOADS_DIR", "CACHE_DIR", "USER_AGENT", "HTTP_TIMEOUT_SECONDS",
		"MAX_IMAGE_DIMENSION", "CACHE_TTL_TILES_HOURS", "CACHE_TTL_EXPORT_TEMP_HOURS",
		"CACHE_CLEAN_INTERVAL_MINUTES", "WEB_PORT", "DEBUG",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Storage.UploadsDir != "./uploads" {
		t.Errorf("UploadsDir = %q", cfg.Storage.UploadsDir)
	}
	if cfg.Storage.CacheDir != "./cache" {
		t.Errorf("CacheDir = %q", cfg.Storage.CacheDir)
	}
	if cfg.Remote.UserAgent != "FieldReports/1.0" {
		t.Errorf("UserAgent = %q", cfg.Remote.UserAgent)
	}
	if cfg.Remote.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Remote.Timeout)
	}
	if cfg.Images.MaxDimension != 2048 {
		t.Errorf("MaxDimension = %d", cfg.Images.MaxDimension)
	}
	if cfg.Cache.TileTTL != 720*time.Hour {
		t.Errorf("TileTTL = %v", cfg.Cache.TileTTL)
	}
	if cfg.Cache.ExportTempTTL != 2*time.Hour {
		t.Errorf("ExportTempTTL = %v", cfg.Cache.ExportTempTTL)
	}
	if cfg.Cache.CleanInterval != 30*time.Minute {
		t.Errorf("CleanInterval = %v", cfg.Cache.CleanInterval)
	}
	if cfg.Web.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr = %q", cfg.Web.Addr())
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CACHE_DIR", "/var/cache/reports")
	t.Setenv("CACHE_TTL_EXPORT_HOURS", "6")
	t.Setenv("DEBUG", "true")
	t.Setenv("FONT_PATH", "bitmap")

	cfg := Load()

	if cfg.Storage.CacheDir != "/var/cache/reports" {
		t.Errorf("CacheDir = %q", cfg.Storage.CacheDir)
	}
	if cfg.Cache.ExportTTL != 6*time.Hour {
		t.Errorf("ExportTTL = %v", cfg.Cache.ExportTTL)
	}
	if !cfg.Debug {
		t.Error("expected Debug to be enabled")
	}
	if cfg.FontPath != "bitmap" {
		t.Errorf("FontPath = %q", cfg.FontPath)
	}
}

func TestDefaultLayout(t *testing.T) {
	layout := DefaultLayout()

	// Verify expected values from layout.yaml
	if layout.Page.Width != 794 || layout.Page.Height != 1123 {
		t.Errorf("page = %dx%d, want 794x1123", layout.Page.Width, layout.Page.Height)
	}
	if layout.Page.HeaderHeight != 52 || layout.Page.Padding != 24 {
		t.Errorf("header/padding = %d/%d", layout.Page.HeaderHeight, layout.Page.Padding)
	}
	if layout.Map.Height != 320 || layout.Map.Zoom != 17 {
		t.Errorf("map band = %d at zoom %d", layout.Map.Height, layout.Map.Zoom)
	}
	if layout.Colors.HeaderBackground != RGB(13, 148, 136) {
		t.Errorf("header_bg = %s", layout.Colors.HeaderBackground.Hex())
	}
	if layout.Colors.Border != RGB(231, 229, 228) {
		t.Errorf("info_border = %s", layout.Colors.Border.Hex())
	}
	if layout.JPEGQuality != 90 {
		t.Errorf("jpeg_quality = %d", layout.JPEGQuality)
	}
	if err := layout.Validate(); err != nil {
		t.Errorf("embedded layout does not validate: %v", err)
	}
}

func TestApplyLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	content := "map:\n  height: 280\ncolors:\n  accent: [200, 10, 10]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Layout: DefaultLayout(), LayoutFile: path}
	if err := cfg.ApplyLayoutFile(); err != nil {
		t.Fatalf("ApplyLayoutFile() error = %v", err)
	}

	if cfg.Layout.Map.Height != 280 {
		t.Errorf("map height = %d, want 280", cfg.Layout.Map.Height)
	}
	if cfg.Layout.Map.Zoom != 17 {
		t.Errorf("map zoom = %d, want the embedded 17", cfg.Layout.Map.Zoom)
	}
	if cfg.Layout.Colors.Accent != RGB(200, 10, 10) {
		t.Errorf("accent = %s", cfg.Layout.Colors.Accent.Hex())
	}
	if cfg.Layout.Page.Width != 794 {
		t.Errorf("page width = %d, want the embedded 794", cfg.Layout.Page.Width)
	}
}

func TestApplyLayoutFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"bad colour", "colors:\n  accent: \"#12\"\n"},
		{"map too tall", "map:\n  height: 1100\n"},
		{"bad quality", "jpeg_quality: 0\n"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "layout"+string(rune('a'+i))+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg := &Config{Layout: DefaultLayout(), LayoutFile: path}
			if err := cfg.ApplyLayoutFile(); err == nil {
				t.Error("expected an error")
			}
			if cfg.Layout.Map.Height != 320 {
				t.Error("a rejected file must not change the layout")
			}
		})
	}
}

func TestApplyLayoutFile_Unset(t *testing.T) {
	cfg := &Config{Layout: DefaultLayout()}
	if err := cfg.ApplyLayoutFile(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestColorHex(t *testing.T) {
	c, err := parseHex("#0D9488")
	if err != nil {
		t.Fatal(err)
	}
	if c.Hex() != "#0d9488" {
		t.Errorf("Hex() = %q", c.Hex())
	}
	if _, err := parseHex("zzzzzz"); err == nil {
		t.Error("expected error for non-hex input")
	}
}
