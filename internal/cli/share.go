package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/sdejongh/diffdeck/internal/platform"
	"github.com/sdejongh/diffdeck/pkg/config"
	"github.com/sdejongh/diffdeck/pkg/input"
	"github.com/sdejongh/diffdeck/pkg/logging"
	"github.com/sdejongh/diffdeck/pkg/models"
	"github.com/sdejongh/diffdeck/pkg/share"
	"github.com/sdejongh/diffdeck/pkg/storage"
)

var shareBindings = map[string]string{
	"share.backend":    "backend",
	"share.path":       "store",
	"share.max_inline": "max-inline",
	"share.retention":  "retention",
}

// NewShareCommand creates the share command
func NewShareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode, decode and expire shareable comparison links",
		Long: `Pack a comparison into a URL fragment and restore it later. Fragments that
would be too long are kept in the share store and referenced by id.`,
	}

	cmd.PersistentFlags().String("backend", "", "share store backend: local, memory, sqlite")
	cmd.PersistentFlags().String("store", "", "share store path (default: platform data dir)")
	cmd.PersistentFlags().Int("max-inline", share.DefaultMaxInline, "longest token kept inline in the fragment")
	cmd.PersistentFlags().String("retention", "", "how long stored shares are kept (e.g. \"168h\")")

	cmd.AddCommand(newShareEncodeCommand())
	cmd.AddCommand(newShareDecodeCommand())
	cmd.AddCommand(newShareSweepCommand())

	return cmd
}

// shareStorePath returns the configured store path or the platform default
func shareStorePath(cfg *config.Config) (string, error) {
	if cfg.Share.Path != "" {
		return cfg.Share.Path, nil
	}
	return platform.ShareStorePath(cfg.Share.Backend)
}

// openShareStore opens the configured store
func openShareStore(cfg *config.Config) (storage.Store, error) {
	path, err := shareStorePath(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Share.Backend, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open share store: %w", err)
	}
	return store, nil
}

func newShareEncodeCommand() *cobra.Command {
	var (
		mode     string
		left     string
		right    string
		settings map[string]string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print a share fragment for two inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, shareBindings)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			state := share.SharedState{Mode: models.Mode(mode), Settings: parseSettings(settings)}
			if !state.Mode.Valid() {
				return fmt.Errorf("unknown mode: %s", mode)
			}

			if state.LeftContent, err = readShareInput(left, cfg); err != nil {
				return err
			}
			if state.RightContent, err = readShareInput(right, cfg); err != nil {
				return err
			}

			// a memory store dies with the process, so its references could never resolve
			var store storage.Store
			if cfg.Share.Backend != storage.BackendMemory {
				if store, err = openShareStore(cfg); err != nil {
					return err
				}
				defer store.Close()
			}

			logger, err := createLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Close()

			fragment, err := share.NewSharer(store, cfg.Share.MaxInline).Share(cmd.Context(), state)
			if err != nil {
				return err
			}

			logger.Info(cmd.Context(), "share created", logging.Fields{
				"mode":   mode,
				"length": len(fragment),
				"stored": !isInline(fragment),
			})

			fmt.Fprintln(cmd.OutOrStdout(), fragment)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(models.ModeText), "comparison mode recorded in the share")
	cmd.Flags().StringVarP(&left, "left", "l", "", "left input file (required)")
	cmd.Flags().StringVarP(&right, "right", "r", "", "right input file (required)")
	cmd.Flags().StringToStringVar(&settings, "setting", nil, "extra setting as key=value (repeatable)")
	cmd.MarkFlagRequired("left")
	cmd.MarkFlagRequired("right")

	return cmd
}

func newShareDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode FRAGMENT",
		Short: "Restore the comparison behind a share fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, shareBindings)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var store storage.Store
			if !isInline(args[0]) {
				if store, err = openShareStore(cfg); err != nil {
					return err
				}
				defer store.Close()
			}

			state, ok, err := share.NewSharer(store, cfg.Share.MaxInline).Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return &StatusError{Status: models.StatusFailed, Err: fmt.Errorf("fragment is malformed or has expired")}
			}

			out := cmd.OutOrStdout()
			if cfg.Output.Format == "json" {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(state)
			}

			fmt.Fprintf(out, "Mode:    %s\n", state.Mode)
			fmt.Fprintf(out, "Created: %s\n", time.UnixMilli(state.Timestamp).Format(time.RFC3339))
			keys := make([]string, 0, len(state.Settings))
			for k := range state.Settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "Setting: %s=%v\n", k, state.Settings[k])
			}
			fmt.Fprintf(out, "\n--- left\n%s\n--- right\n%s\n", state.LeftContent, state.RightContent)
			return nil
		},
	}
}

func newShareSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete stored shares older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, shareBindings)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			unlock, err := lockSweep(cfg)
			if err != nil {
				return err
			}
			defer unlock()

			store, err := openShareStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			logger, err := createLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Close()

			purged, err := share.Sweep(cmd.Context(), store, time.Now(), cfg.Share.Retention)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			logger.Info(cmd.Context(), "share sweep complete", logging.Fields{
				"purged":    purged,
				"retention": cfg.Share.Retention.String(),
			})

			if !cfg.Output.Quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired share(s)\n", purged)
			}
			return nil
		},
	}
}

// lockSweep takes an exclusive lock next to the share store so two sweeps
// never race on the same records. The memory backend needs no lock.
func lockSweep(cfg *config.Config) (func(), error) {
	if cfg.Share.Backend == storage.BackendMemory {
		return func() {}, nil
	}

	path, err := shareStorePath(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create share store directory: %w", err)
	}

	lock := flock.New(filepath.Clean(path) + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock share store: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another sweep is running on %s", path)
	}
	return func() { lock.Unlock() }, nil
}

// readShareInput loads a share side. UTF-8 content is kept as text; anything
// else becomes a base64 data URL so the bytes survive the JSON payload.
func readShareInput(path string, cfg *config.Config) (string, error) {
	buf, err := input.Load(path, input.Options{MaxSize: cfg.File.MaxSize})
	if err != nil {
		return "", err
	}
	if buf.ValidUTF8() {
		return buf.Text(), nil
	}
	return dataURL(buf.MimeType, buf.Data), nil
}

// dataURL renders data as a data: URL with the given media type
func dataURL(mime string, data []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + strings.ReplaceAll(mime, " ", "") + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// parseSettings types key=value flags as bool, number or string
func parseSettings(raw map[string]string) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out[k] = f
		} else if b, err := strconv.ParseBool(v); err == nil {
			out[k] = b
		} else {
			out[k] = v
		}
	}
	return out
}

// isInline reports whether fragment carries its payload rather than a store reference
func isInline(fragment string) bool {
	return !strings.HasPrefix(strings.TrimPrefix(fragment, "#"), share.RefPrefix)
}
