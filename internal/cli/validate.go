package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sdejongh/diffdeck/internal/platform"
	"github.com/sdejongh/diffdeck/pkg/config"
	"github.com/sdejongh/diffdeck/pkg/models"
)

// envPrefix namespaces environment overrides, e.g. DIFFDECK_IMAGE_THRESHOLD
const envPrefix = "DIFFDECK"

// validateInputs checks the two positional inputs of a comparison command
func validateInputs(left, right string) error {
	if err := platform.ValidatePath(left); err != nil {
		return fmt.Errorf("left input: %w", err)
	}
	if err := platform.ValidatePath(right); err != nil {
		return fmt.Errorf("right input: %w", err)
	}
	if left == "-" && right == "-" {
		return fmt.Errorf("only one input can be read from stdin")
	}
	return nil
}

// loadConfig loads the config file, then overlays DIFFDECK_* environment
// variables and the command's changed flags. bindings maps config keys to
// the command-local flag names that override them.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	cfg, err := config.Load(globalFlags.ConfigFile)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, b := range []map[string]string{globalBindings, bindings} {
		for key, name := range b {
			if flag := cmd.Flags().Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := applyOverrides(cfg, v); err != nil {
		return nil, err
	}

	// Quiet and verbose are presentation switches, not config keys
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
	if globalFlags.Verbose {
		cfg.Logging.Enabled = true
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyOverrides copies every key set in v onto cfg
func applyOverrides(cfg *config.Config, v *viper.Viper) error {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	boolean := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
	integer := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	if v.IsSet("text.granularity") {
		cfg.Text.Granularity = models.Granularity(v.GetString("text.granularity"))
	}
	boolean("text.ignore_case", &cfg.Text.IgnoreCase)
	boolean("text.ignore_whitespace", &cfg.Text.IgnoreWhitespace)

	integer("image.threshold", &cfg.Image.Threshold)
	integer("image.max_width", &cfg.Image.MaxWidth)
	integer("image.max_height", &cfg.Image.MaxHeight)

	if v.IsSet("file.mode") {
		cfg.File.Mode = models.FileCompareMode(v.GetString("file.mode"))
	}
	if v.IsSet("file.max_size") {
		size, err := humanize.ParseBytes(v.GetString("file.max_size"))
		if err != nil {
			return fmt.Errorf("invalid max size: %w", err)
		}
		cfg.File.MaxSize = int64(size)
	}

	str("share.backend", &cfg.Share.Backend)
	str("share.path", &cfg.Share.Path)
	integer("share.max_inline", &cfg.Share.MaxInline)
	if v.IsSet("share.retention") {
		d, err := time.ParseDuration(v.GetString("share.retention"))
		if err != nil {
			return fmt.Errorf("invalid retention: %w", err)
		}
		cfg.Share.Retention = d
	}

	str("output.format", &cfg.Output.Format)
	boolean("output.color", &cfg.Output.Color)
	boolean("output.progress", &cfg.Output.Progress)

	boolean("logging.enabled", &cfg.Logging.Enabled)
	str("logging.format", &cfg.Logging.Format)
	str("logging.level", &cfg.Logging.Level)
	str("logging.file", &cfg.Logging.File)

	return nil
}

// createOperation creates the operation record for one comparison
func createOperation(mode models.Mode, left, right string) (*models.Operation, error) {
	operation := &models.Operation{
		ID:        uuid.New().String(),
		Mode:      mode,
		LeftPath:  platform.NormalizePath(left),
		RightPath: platform.NormalizePath(right),
		CreatedAt: time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}
