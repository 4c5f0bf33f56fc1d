package cli

import (
	"io"

	"github.com/sdejongh/diffdeck/pkg/config"
	"github.com/sdejongh/diffdeck/pkg/logging"
)

// createLogger creates a logger based on configuration.
// A log file wins over console logging; with neither, logs are discarded.
func createLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	format := logging.FormatText
	if cfg.Logging.Format == "json" {
		format = logging.FormatJSON
	}
	level := logging.ParseLevel(cfg.Logging.Level)

	if cfg.Logging.File != "" {
		return logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     format,
			Level:      level,
			MaxSize:    10 * 1024 * 1024, // 10 MB
			MaxBackups: 5,
		})
	}

	if cfg.Logging.Enabled {
		return logging.NewConsoleLogger(stderr, format, level), nil
	}

	return logging.NewNullLogger(), nil
}
