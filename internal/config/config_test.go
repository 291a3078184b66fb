package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/lookupreport/internal/category"
)

// TestNewConfig documents the defaults; changing one should fail here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 15 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 15*time.Second {
			t.Errorf("expected Timeout to be 15s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Workers is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 4 {
			t.Errorf("expected Workers to be 4, got %d", cfg.Workers)
		}
	})

	t.Run("default HistoryLimit is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.HistoryLimit != 5 {
			t.Errorf("expected HistoryLimit to be 5, got %d", cfg.HistoryLimit)
		}
	})

	t.Run("history is saved under the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBPath() != filepath.Join(XDGDataDir(), "history.db") {
			t.Errorf("unexpected DBPath %q", cfg.DBPath())
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"zero workers", func(c *Config) { c.Workers = 0 }, ErrInvalidWorkers},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, ErrInvalidRateLimit},
		{"zero rate is unlimited", func(c *Config) { c.RateLimit = 0; c.RateBurst = 0 }, nil},
		{"zero burst with rate", func(c *Config) { c.RateBurst = 0 }, ErrInvalidRateBurst},
		{"negative cache ttl", func(c *Config) { c.CacheTTL = -time.Second }, ErrInvalidCacheTTL},
		{"zero cache ttl disables cache", func(c *Config) { c.CacheTTL = 0 }, nil},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"json and markdown", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
		{"json only", func(c *Config) { c.JSONReport = true }, nil},
		{"zero history limit", func(c *Config) { c.HistoryLimit = 0 }, ErrInvalidHistoryLimit},
		{"history without dir", func(c *Config) { c.DBDir = "" }, ErrNoDBDir},
		{"no history and no dir", func(c *Config) { c.DBDir = ""; c.SaveToDB = false }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFileGetCategoryConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: Defaults{Headers: map[string]string{"X-Api-Key": "k", "Accept": "application/json"}},
		Categories: map[string]CategoryConfig{
			"Mobile": {Endpoint: "https://example.test/m?num={query}", Headers: map[string]string{"Accept": "text/json"}},
		},
	}

	t.Run("merges defaults with category headers", func(t *testing.T) {
		t.Parallel()

		got := cf.GetCategoryConfig("mobile")
		want := map[string]string{"X-Api-Key": "k", "Accept": "text/json"}
		if diff := cmp.Diff(want, got.Headers); diff != "" {
			t.Errorf("headers mismatch (-want +got):\n%s", diff)
		}
		if got.Endpoint != "https://example.test/m?num={query}" {
			t.Errorf("unexpected endpoint %q", got.Endpoint)
		}
	})

	t.Run("unknown category gets defaults only", func(t *testing.T) {
		t.Parallel()

		got := cf.GetCategoryConfig("gst")
		if got.Endpoint != "" || got.Headers["X-Api-Key"] != "k" {
			t.Errorf("unexpected config %+v", got)
		}
	})

	t.Run("does not alias the defaults map", func(t *testing.T) {
		t.Parallel()

		got := cf.GetCategoryConfig("ifsc")
		got.Headers["X-Api-Key"] = "changed"
		if cf.Defaults.Headers["X-Api-Key"] != "k" {
			t.Error("defaults were modified")
		}
	})
}

func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("overrides built-in categories", func(t *testing.T) {
		t.Parallel()

		reg := category.DefaultRegistry()
		cf := &File{
			Defaults: Defaults{Headers: map[string]string{"X-Api-Key": "k"}},
			Categories: map[string]CategoryConfig{
				"gst": {Endpoint: "https://example.test/gst/{query}", MaxLength: 20, Transform: "upper"},
			},
		}
		if err := cf.Apply(reg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		gst, err := reg.Get(category.GST)
		if err != nil {
			t.Fatal(err)
		}
		if gst.Endpoint != "https://example.test/gst/{query}" || gst.MaxLength != 20 {
			t.Errorf("override not applied: %+v", gst)
		}
		mobile, _ := reg.Get(category.Mobile)
		if mobile.Headers["X-Api-Key"] != "k" {
			t.Error("default headers should reach every category")
		}
	})

	t.Run("registers new categories in tag order", func(t *testing.T) {
		t.Parallel()

		reg := category.DefaultRegistry()
		before := len(reg.Categories())
		cf := &File{Categories: map[string]CategoryConfig{
			"zeta":     {Endpoint: "https://example.test/z?q="},
			"passport": {Endpoint: "https://example.test/p?q="},
		}}
		if err := cf.Apply(reg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := reg.Categories()[before:]
		want := []category.Category{"passport", "zeta"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("categories mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects unknown transform", func(t *testing.T) {
		t.Parallel()

		cf := &File{Categories: map[string]CategoryConfig{"gst": {Transform: "reverse"}}}
		if err := cf.Apply(category.DefaultRegistry()); !errors.Is(err, ErrInvalidTransform) {
			t.Errorf("expected ErrInvalidTransform, got %v", err)
		}
	})

	t.Run("rejects tags that normalize to the same category", func(t *testing.T) {
		t.Parallel()

		cf := &File{Categories: map[string]CategoryConfig{
			"GST": {Endpoint: "https://example.test/a?q="},
			"gst": {Endpoint: "https://example.test/b?q="},
		}}
		err := cf.Apply(category.DefaultRegistry())
		if !errors.Is(err, ErrDuplicateCategory) {
			t.Fatalf("expected ErrDuplicateCategory, got %v", err)
		}
		if !strings.Contains(err.Error(), `"GST" and "gst"`) {
			t.Errorf("error should name both tags in order, got %v", err)
		}
	})

	t.Run("rejects inverted bounds", func(t *testing.T) {
		t.Parallel()

		cf := &File{Categories: map[string]CategoryConfig{"gst": {MinLength: 10, MaxLength: 5}}}
		if err := cf.Validate(); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("expected ErrInvalidLength, got %v", err)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.lookupreport")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".lookupreport")
		content := `defaults:
  userAgent: "custom/1.0"
  headers:
    X-Api-Key: "secret"
categories:
  vehicle:
    endpoint: "https://example.test/rc?rc={query}"
    minLength: 6
    maxLength: 12
    transform: upper
    errorMessage: "Enter a registration number"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := &File{
			Defaults: Defaults{UserAgent: "custom/1.0", Headers: map[string]string{"X-Api-Key": "secret"}},
			Categories: map[string]CategoryConfig{
				"vehicle": {
					Endpoint:     "https://example.test/rc?rc={query}",
					MinLength:    6,
					MaxLength:    12,
					Transform:    "upper",
					ErrorMessage: "Enter a registration number",
				},
			},
		}
		if diff := cmp.Diff(want, cf); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".lookupreport")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("returns validation error", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".lookupreport")
		content := "categories:\n  gst:\n    transform: lower\n"
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		_, err := LoadConfigFile(configPath)
		if !errors.Is(err, ErrInvalidTransform) || !strings.Contains(err.Error(), "gst") {
			t.Errorf("expected ErrInvalidTransform naming gst, got %v", err)
		}
	})

	t.Run("initializes nil Categories map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".lookupreport")
		if err := os.WriteFile(configPath, []byte("defaults: {}\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Categories == nil {
			t.Error("expected Categories map to be initialized")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if filepath.Base(dir) != AppName {
				t.Errorf("expected %s dir to end with %s, got %q", name, AppName, dir)
			}
		})
	}
}
