package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/diffdeck/pkg/compare"
	"github.com/sdejongh/diffdeck/pkg/input"
	"github.com/sdejongh/diffdeck/pkg/logging"
	"github.com/sdejongh/diffdeck/pkg/models"
	"github.com/sdejongh/diffdeck/pkg/output"
)

// ImageFlags holds image command flags
type ImageFlags struct {
	Mask      string
	Threshold int
	MaxWidth  int
	MaxHeight int
}

var imageFlags ImageFlags

var imageBindings = map[string]string{
	"image.threshold":  "threshold",
	"image.max_width":  "max-width",
	"image.max_height": "max-height",
	"file.max_size":    "max-size",
}

// NewImageCommand creates the image command
func NewImageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image LEFT RIGHT",
		Short: "Compare two images pixel by pixel",
		Long: `Scale both images onto a shared white canvas and count the pixels whose
summed RGB distance exceeds the threshold. PNG, JPEG, GIF, BMP and WebP are supported.`,
		Args: cobra.ExactArgs(2),
		RunE: runImage,
	}

	cmd.Flags().StringVar(&imageFlags.Mask, "mask", "", "write the difference mask to this PNG file")
	cmd.Flags().IntVarP(&imageFlags.Threshold, "threshold", "t", compare.DefaultPixelThreshold, "per-pixel RGB distance above which a pixel differs")
	cmd.Flags().IntVar(&imageFlags.MaxWidth, "max-width", compare.DefaultMaxWidth, "canvas width limit")
	cmd.Flags().IntVar(&imageFlags.MaxHeight, "max-height", compare.DefaultMaxHeight, "canvas height limit")
	cmd.Flags().String("max-size", "", "reject inputs larger than this (e.g. \"10MB\")")

	return cmd
}

func runImage(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, models.ModeImage, args[0], args[1], imageBindings)
	if err != nil {
		return err
	}

	report := s.newReport("")

	opts := input.Options{MaxSize: s.cfg.File.MaxSize, Encoding: models.EncodingBinary, Progress: s.progress()}
	left, err := s.loadBinary(args[0], opts)
	if err != nil {
		return s.fail(err)
	}
	right, err := s.loadBinary(args[1], opts)
	if err != nil {
		return s.fail(err)
	}
	report.LeftSize = left.Size
	report.RightSize = right.Size

	diff, err := compare.NewImageEngine().CompareEncoded(s.ctx(), left.Data, right.Data, s.cfg.ImageOptions())
	if err != nil {
		return s.fail(err)
	}
	s.logger.Debug(s.ctx(), "images composited", logging.Fields{
		"width":  diff.Width,
		"height": diff.Height,
		"scale":  diff.Scale,
	})

	if imageFlags.Mask != "" {
		if err := output.WriteMask(imageFlags.Mask, diff.Mask); err != nil {
			return s.fail(err)
		}
		report.MaskPath = imageFlags.Mask
	}

	report.Result = diff.Result
	return s.finish(report)
}

// loadBinary reads path, or stdin for "-"
func (s *session) loadBinary(path string, opts input.Options) (*models.FileBuffer, error) {
	if path == "-" {
		return input.LoadReader("stdin", s.cmd.InOrStdin(), opts)
	}
	return input.Load(path, opts)
}
