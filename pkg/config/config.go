package config

import (
	"time"

	"github.com/sdejongh/diffdeck/pkg/compare"
	"github.com/sdejongh/diffdeck/pkg/models"
	"github.com/sdejongh/diffdeck/pkg/share"
	"github.com/sdejongh/diffdeck/pkg/storage"
)

// Config represents the application configuration
type Config struct {
	Text    TextConfig    `yaml:"text"`
	Image   ImageConfig   `yaml:"image"`
	File    FileConfig    `yaml:"file"`
	Share   ShareConfig   `yaml:"share"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// TextConfig holds text diff defaults
type TextConfig struct {
	Granularity      models.Granularity `yaml:"granularity"`
	IgnoreCase       bool               `yaml:"ignore_case"`
	IgnoreWhitespace bool               `yaml:"ignore_whitespace"`
}

// ImageConfig holds image diff policy
type ImageConfig struct {
	Threshold int `yaml:"threshold"`
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// FileConfig holds file diff policy
type FileConfig struct {
	Mode    models.FileCompareMode `yaml:"mode"`
	MaxSize int64                  `yaml:"max_size"` // bytes
}

// ShareConfig holds share token settings
type ShareConfig struct {
	Backend   string        `yaml:"backend"`    // "local", "memory" or "sqlite"
	Path      string        `yaml:"path"`       // empty = platform data dir
	MaxInline int           `yaml:"max_inline"` // longest token kept in the URL
	Retention time.Duration `yaml:"retention"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Color    bool   `yaml:"color"`    // Colorize text diffs
	Progress bool   `yaml:"progress"` // Show progress bars for large inputs
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Text: TextConfig{
			Granularity: models.GranularityLines,
		},
		Image: ImageConfig{
			Threshold: compare.DefaultPixelThreshold,
			MaxWidth:  compare.DefaultMaxWidth,
			MaxHeight: compare.DefaultMaxHeight,
		},
		File: FileConfig{
			Mode:    models.FileBinary,
			MaxSize: compare.DefaultMaxFileSize,
		},
		Share: ShareConfig{
			Backend:   storage.BackendLocal,
			MaxInline: share.DefaultMaxInline,
			Retention: share.DefaultRetention,
		},
		Output: OutputConfig{
			Format:   "human",
			Color:    true,
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
		},
	}
}

// TextOptions converts the text section into engine options
func (c *Config) TextOptions() compare.TextOptions {
	return compare.TextOptions{
		Granularity:      c.Text.Granularity,
		IgnoreCase:       c.Text.IgnoreCase,
		IgnoreWhitespace: c.Text.IgnoreWhitespace,
	}
}

// ImageOptions converts the image section into engine options
func (c *Config) ImageOptions() compare.ImageOptions {
	return compare.ImageOptions{
		Threshold: c.Image.Threshold,
		MaxWidth:  c.Image.MaxWidth,
		MaxHeight: c.Image.MaxHeight,
	}
}

// FileOptions converts the file section into engine options
func (c *Config) FileOptions() compare.FileOptions {
	return compare.FileOptions{Mode: c.File.Mode, MaxSize: c.File.MaxSize}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validGranularities := map[models.Granularity]bool{
		models.GranularityLines:      true,
		models.GranularityWords:      true,
		models.GranularityCharacters: true,
	}
	if !validGranularities[c.Text.Granularity] {
		return &models.ValidationError{
			Field:   "text.granularity",
			Message: "must be 'lines', 'words', or 'characters'",
		}
	}

	if c.Image.Threshold < 0 || c.Image.Threshold > 765 {
		return &models.ValidationError{
			Field:   "image.threshold",
			Message: "must be between 0 and 765",
		}
	}

	if c.Image.MaxWidth < 1 || c.Image.MaxHeight < 1 {
		return &models.ValidationError{
			Field:   "image.max_width",
			Message: "canvas dimensions must be at least 1",
		}
	}

	validModes := map[models.FileCompareMode]bool{
		models.FileBinary:   true,
		models.FileText:     true,
		models.FileMetadata: true,
	}
	if !validModes[c.File.Mode] {
		return &models.ValidationError{
			Field:   "file.mode",
			Message: "must be 'binary', 'text', or 'metadata'",
		}
	}

	if c.File.MaxSize < 0 {
		return &models.ValidationError{
			Field:   "file.max_size",
			Message: "must not be negative",
		}
	}

	validBackends := map[string]bool{storage.BackendLocal: true, storage.BackendMemory: true, storage.BackendSQLite: true}
	if !validBackends[c.Share.Backend] {
		return &models.ValidationError{
			Field:   "share.backend",
			Message: "must be 'local', 'memory', or 'sqlite'",
		}
	}

	if c.Share.Retention < 0 {
		return &models.ValidationError{
			Field:   "share.retention",
			Message: "must not be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
