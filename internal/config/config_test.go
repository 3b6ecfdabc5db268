package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestNewConfig verifies the documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.DBDir != XDGDataDir() {
		t.Errorf("DBDir = %q, want %q", cfg.DBDir, XDGDataDir())
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxBodySize != 5*1024*1024 {
		t.Errorf("MaxBodySize = %d", cfg.MaxBodySize)
	}
	if cfg.MaxRedirects != 10 {
		t.Errorf("MaxRedirects = %d", cfg.MaxRedirects)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d", cfg.Concurrency)
	}
	if cfg.LockTTL != 5*time.Minute {
		t.Errorf("LockTTL = %v", cfg.LockTTL)
	}
	if cfg.ReportFormat != FormatText {
		t.Errorf("ReportFormat = %q", cfg.ReportFormat)
	}
	if cfg.Proxy != "" || cfg.Verbose || cfg.InsecureSkipVerify {
		t.Error("expected proxy, verbose and insecure to be off")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// TestConfigValidate tests each validation rule in isolation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"empty db dir", func(c *Config) { c.DBDir = "" }, ErrEmptyDBDir},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"zero body size", func(c *Config) { c.MaxBodySize = 0 }, ErrInvalidMaxBodySize},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"zero lock ttl", func(c *Config) { c.LockTTL = 0 }, ErrInvalidLockTTL},
		{"unknown format", func(c *Config) { c.ReportFormat = "pdf" }, ErrInvalidReportFormat},
		{"bad proxy", func(c *Config) { c.Proxy = "localhost" }, ErrInvalidProxy},
		{"good proxy", func(c *Config) { c.Proxy = "127.0.0.1:9050" }, nil},
		{"markdown", func(c *Config) { c.ReportFormat = FormatMarkdown }, nil},
		{"negative redirects allowed", func(c *Config) { c.MaxRedirects = -1 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.DBDir = "/tmp/emissary"
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestTransportOptions tests mapping config onto transport options.
func TestTransportOptions(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Proxy = "127.0.0.1:1080"
	cfg.InsecureSkipVerify = true
	cfg.MaxRedirects = 2

	opts := cfg.TransportOptions()
	if opts.Timeout != cfg.Timeout || opts.ProxyAddress != cfg.Proxy ||
		!opts.InsecureSkipVerify || opts.MaxRedirects != 2 {
		t.Errorf("unexpected options %+v", opts)
	}
}

// TestLoadConfigFile tests YAML parsing and layering onto defaults.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("applies set fields only", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `
timeout: 45s
userAgent: custom-agent
proxy: 127.0.0.1:9050
concurrency: 8
lockTTL: 1m
report:
  format: markdown
  file: out.md
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile: %v", err)
		}

		cfg := NewConfig()
		f.Apply(cfg)

		want := NewConfig()
		want.Timeout = 45 * time.Second
		want.UserAgent = "custom-agent"
		want.Proxy = "127.0.0.1:9050"
		want.Concurrency = 8
		want.LockTTL = time.Minute
		want.ReportFormat = FormatMarkdown
		want.ReportFile = "out.md"

		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("timeout: [unclosed"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()

		var f *File
		cfg := NewConfig()
		f.Apply(cfg)
		if diff := cmp.Diff(NewConfig(), cfg); diff != "" {
			t.Errorf("config changed (-want +got):\n%s", diff)
		}
	})
}

// TestFindConfigFile tests explicit path lookup.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("verbose: true\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := FindConfigFile(path); got != path {
		t.Errorf("FindConfigFile(%q) = %q", path, got)
	}
	if got := FindConfigFile(path + ".missing"); got != "" {
		t.Errorf("expected empty result for missing explicit path, got %q", got)
	}
}

// TestLoad tests the full layering with an explicit file.
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emissary.yaml")
	if err := os.WriteFile(path, []byte("concurrency: 2\nverbose: true\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("EMISSARY_CONCURRENCY", "6")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Concurrency != 6 {
		t.Errorf("Concurrency = %d, want env value 6", cfg.Concurrency)
	}
	if !cfg.Verbose {
		t.Error("expected verbose from file")
	}
	if cfg.ConfigFilePath != path {
		t.Errorf("ConfigFilePath = %q", cfg.ConfigFilePath)
	}

	if _, err := Load(path + ".missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

// TestApplyEnv tests environment overrides.
func TestApplyEnv(t *testing.T) {
	t.Parallel()

	t.Run("overrides set variables", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		err := applyEnv(cfg, map[string]string{
			"EMISSARY_TIMEOUT":       "5s",
			"EMISSARY_PROXY":         "127.0.0.1:1080",
			"EMISSARY_VERBOSE":       "true",
			"EMISSARY_MAX_BODY_SIZE": "1024",
			"EMISSARY_REPORT_FORMAT": "json",
			"UNRELATED":              "x",
		})
		if err != nil {
			t.Fatalf("applyEnv: %v", err)
		}

		want := NewConfig()
		want.Timeout = 5 * time.Second
		want.Proxy = "127.0.0.1:1080"
		want.Verbose = true
		want.MaxBodySize = 1024
		want.ReportFormat = FormatJSON

		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()

		err := applyEnv(NewConfig(), map[string]string{"EMISSARY_TIMEOUT": "soon"})
		if err == nil {
			t.Error("expected parse error")
		}
	})
}
