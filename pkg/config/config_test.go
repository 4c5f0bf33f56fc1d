package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sdejongh/diffdeck/pkg/models"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Image.Threshold != 30 || cfg.Image.MaxWidth != 800 || cfg.Image.MaxHeight != 600 {
		t.Errorf("unexpected image defaults: %+v", cfg.Image)
	}
	if cfg.File.MaxSize != 100*1024*1024 {
		t.Errorf("File.MaxSize = %d", cfg.File.MaxSize)
	}
	if cfg.Share.MaxInline != 2000 {
		t.Errorf("Share.MaxInline = %d", cfg.Share.MaxInline)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad granularity", func(c *Config) { c.Text.Granularity = "sentences" }, "text.granularity"},
		{"negative threshold", func(c *Config) { c.Image.Threshold = -1 }, "image.threshold"},
		{"zero canvas", func(c *Config) { c.Image.MaxHeight = 0 }, "image.max_width"},
		{"bad file mode", func(c *Config) { c.File.Mode = "fuzzy" }, "file.mode"},
		{"negative max size", func(c *Config) { c.File.MaxSize = -5 }, "file.max_size"},
		{"bad backend", func(c *Config) { c.Share.Backend = "redis" }, "share.backend"},
		{"bad output", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"bad log format", func(c *Config) { c.Logging.Format = "logfmt" }, "logging.format"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte("image:\n  threshold: 10\nshare:\n  retention: 24h\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Image.Threshold != 10 {
		t.Errorf("Threshold = %d, want 10", cfg.Image.Threshold)
	}
	if cfg.Image.MaxWidth != 800 {
		t.Errorf("MaxWidth = %d, want default 800", cfg.Image.MaxWidth)
	}
	if cfg.Share.Retention != 24*time.Hour {
		t.Errorf("Retention = %v, want 24h", cfg.Share.Retention)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	if _, err := Parse([]byte("output:\n  format: xml\n")); err == nil {
		t.Error("expected error for invalid output format")
	}
	if _, err := Parse([]byte("text: [unclosed")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Text.Granularity = models.GranularityWords
	cfg.File.Mode = models.FileMetadata
	cfg.Share.Retention = 48 * time.Hour

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded config = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Text.IgnoreCase = true
	cfg.Image.Threshold = 12

	if !cfg.TextOptions().IgnoreCase {
		t.Error("TextOptions().IgnoreCase = false")
	}
	if cfg.ImageOptions().Threshold != 12 {
		t.Errorf("ImageOptions().Threshold = %d", cfg.ImageOptions().Threshold)
	}
	if got := cfg.FileOptions(); got.Mode != models.FileBinary || got.MaxSize != cfg.File.MaxSize {
		t.Errorf("FileOptions() = %+v", got)
	}
}
