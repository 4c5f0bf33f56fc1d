package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/sdejongh/diffdeck/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	added   *color.Color
	removed *color.Color
	dim     *color.Color
	plain   bool
}

// NewHumanFormatter creates a new human-readable formatter.
// With useColor false, inline changes are bracketed instead of colored.
func NewHumanFormatter(useColor bool) *HumanFormatter {
	f := &HumanFormatter{
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		dim:     color.New(color.Faint),
		plain:   !useColor,
	}
	for _, c := range []*color.Color{f.added, f.removed, f.dim} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// Report writes the diff body followed by a summary
func (f *HumanFormatter) Report(w io.Writer, report *models.Report) error {
	if w == nil {
		w = io.Discard
	}

	if len(report.Segments) > 0 {
		if report.Detail == string(models.GranularityLines) {
			f.writeLines(w, report.Segments)
		} else {
			f.writeInline(w, report.Segments)
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "Compared %s: %s <> %s", report.Mode, report.LeftPath, report.RightPath)
	if report.Detail != "" {
		fmt.Fprintf(w, " (%s)", report.Detail)
	}
	fmt.Fprintf(w, " in %s\n", report.Duration.Round(time.Millisecond))

	if report.LeftSize > 0 || report.RightSize > 0 {
		fmt.Fprintf(w, "  Sizes:      %s / %s\n",
			humanize.IBytes(uint64(report.LeftSize)), humanize.IBytes(uint64(report.RightSize)))
	}

	unit := unitFor(report)
	r := report.Result
	if report.Detail == string(models.FileMetadata) {
		if len(report.Differences) == 0 {
			fmt.Fprintf(w, "  Metadata:   name, size and modification time match\n")
		} else {
			names := make([]string, len(report.Differences))
			for i, d := range report.Differences {
				names[i] = string(d)
			}
			fmt.Fprintf(w, "  Metadata:   %s differ\n", strings.Join(names, ", "))
		}
	} else {
		fmt.Fprintf(w, "  Added:      %s %s\n", humanize.Comma(int64(r.Added)), unit)
		fmt.Fprintf(w, "  Removed:    %s %s\n", humanize.Comma(int64(r.Removed)), unit)
		fmt.Fprintf(w, "  Modified:   %s %s\n", humanize.Comma(int64(r.Modified)), unit)
		fmt.Fprintf(w, "  Unchanged:  %s %s\n", humanize.Comma(int64(r.Unchanged)), unit)
		fmt.Fprintf(w, "  Total:      %s %s\n", humanize.Comma(int64(r.Total)), unit)
		if r.Total > 0 && report.Mode == models.ModeImage {
			pct := float64(r.Modified) * 100 / float64(r.Total)
			fmt.Fprintf(w, "  Changed:    %s%%\n", humanize.FtoaWithDigits(pct, 2))
		}
	}

	if r.FirstDifference >= 0 && report.Mode == models.ModeFile && report.Detail == string(models.FileBinary) {
		fmt.Fprintf(w, "  First diff: byte %s\n", humanize.Comma(r.FirstDifference))
	}
	if report.MaskPath != "" {
		fmt.Fprintf(w, "  Mask:       %s\n", report.MaskPath)
	}

	fmt.Fprintf(w, "\nStatus: %s\n", report.Status)
	return nil
}

// writeLines renders a line diff with +/- gutters
func (f *HumanFormatter) writeLines(w io.Writer, segments []models.Segment) {
	for _, seg := range segments {
		prefix, c := "  ", f.dim
		switch seg.Kind {
		case models.SegmentAdded:
			prefix, c = "+ ", f.added
		case models.SegmentRemoved:
			prefix, c = "- ", f.removed
		}
		for _, line := range strings.SplitAfter(seg.Value, "\n") {
			if line == "" {
				continue
			}
			c.Fprint(w, prefix+strings.TrimSuffix(line, "\n"))
			fmt.Fprintln(w)
		}
	}
}

// writeInline renders word and character diffs in running text
func (f *HumanFormatter) writeInline(w io.Writer, segments []models.Segment) {
	for _, seg := range segments {
		switch seg.Kind {
		case models.SegmentAdded:
			if f.plain {
				fmt.Fprintf(w, "{+%s+}", seg.Value)
			} else {
				f.added.Fprint(w, seg.Value)
			}
		case models.SegmentRemoved:
			if f.plain {
				fmt.Fprintf(w, "[-%s-]", seg.Value)
			} else {
				f.removed.Fprint(w, seg.Value)
			}
		default:
			fmt.Fprint(w, seg.Value)
		}
	}
	if n := len(segments); n > 0 && !strings.HasSuffix(segments[n-1].Value, "\n") {
		fmt.Fprintln(w)
	}
}

// Error reports an error
func (f *HumanFormatter) Error(w io.Writer, err error) error {
	if w != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// unitFor names what the counters of a report count
func unitFor(report *models.Report) string {
	switch report.Mode {
	case models.ModeText:
		return "segments"
	case models.ModeImage:
		return "pixels"
	}
	if report.Detail == string(models.FileText) {
		return "lines"
	}
	return "bytes"
}
