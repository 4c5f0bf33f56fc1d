package cli

import (
	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/sdejongh/diffdeck/pkg/compare"
	"github.com/sdejongh/diffdeck/pkg/input"
	"github.com/sdejongh/diffdeck/pkg/logging"
	"github.com/sdejongh/diffdeck/pkg/models"
)

// scanProgressThreshold is the smallest input that gets a byte-scan progress bar
const scanProgressThreshold = 8 * 1024 * 1024

var fileBindings = map[string]string{
	"file.mode":     "mode",
	"file.max_size": "max-size",
}

// NewFileCommand creates the file command
func NewFileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file LEFT RIGHT",
		Short: "Compare two files by bytes, lines or metadata",
		Long: `Compare two files. binary counts differing bytes, text compares lines at
matching positions, and metadata compares only name, size and modification time.`,
		Args: cobra.ExactArgs(2),
		RunE: runFile,
	}

	cmd.Flags().StringP("mode", "m", string(models.FileBinary), "comparison mode: binary, text, metadata")
	cmd.Flags().String("max-size", "", "reject inputs larger than this (e.g. \"100MB\"); ignored in metadata mode")

	return cmd
}

func runFile(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, models.ModeFile, args[0], args[1], fileBindings)
	if err != nil {
		return err
	}

	opts := s.cfg.FileOptions()
	report := s.newReport(string(opts.Mode))

	left, err := s.loadFile(args[0], opts)
	if err != nil {
		return s.fail(err)
	}
	right, err := s.loadFile(args[1], opts)
	if err != nil {
		return s.fail(err)
	}
	report.LeftSize = left.Size
	report.RightSize = right.Size

	engine := compare.NewFileEngine()
	var bar *pb.ProgressBar
	if w := s.progress(); w != nil && opts.Mode == models.FileBinary && max(left.Size, right.Size) >= scanProgressThreshold {
		bar = pb.New64(min(left.Size, right.Size))
		bar.Set(pb.Bytes, true)
		bar.SetWriter(w)
		bar.Start()
	}
	engine.SetProgressCallback(func(current, total int64) {
		if bar != nil {
			bar.SetTotal(total)
			bar.SetCurrent(current)
		}
		s.logger.Debug(s.ctx(), "comparing bytes", logging.Fields{"current": current, "total": total})
	})

	result, err := engine.Compare(left, right, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return s.fail(err)
	}

	report.Result = *result
	if opts.Mode == models.FileMetadata {
		report.Differences = compare.MetadataDifferences(result)
	}
	return s.finish(report)
}

// loadFile loads one side in the representation the mode needs:
// metadata never reads content, binary forces raw bytes and text detects.
func (s *session) loadFile(path string, opts compare.FileOptions) (*models.FileBuffer, error) {
	switch opts.Mode {
	case models.FileMetadata:
		if path == "-" {
			return nil, &compare.Error{Kind: compare.KindInvalidOption, Message: "metadata mode cannot read from stdin"}
		}
		return input.Stat(path)
	case models.FileBinary:
		return s.loadBinary(path, input.Options{MaxSize: opts.MaxSize, Encoding: models.EncodingBinary, Progress: s.progress()})
	default:
		return s.loadBinary(path, input.Options{MaxSize: opts.MaxSize, Progress: s.progress()})
	}
}
