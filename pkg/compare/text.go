package compare

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/sdejongh/diffdeck/pkg/models"
)

// TextOptions configures one text comparison
type TextOptions struct {
	Granularity      models.Granularity
	IgnoreCase       bool
	IgnoreWhitespace bool
}

// DefaultTextOptions returns line granularity with no normalization
func DefaultTextOptions() TextOptions {
	return TextOptions{Granularity: models.GranularityLines}
}

// TextEngine diffs two strings at line, word or character granularity
type TextEngine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewTextEngine creates a text engine. The diff runs to completion; there is
// no time budget that would degrade it to a coarser result.
func NewTextEngine() *TextEngine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &TextEngine{dmp: dmp}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize applies the case and whitespace pre-pass to s
func Normalize(s string, opts TextOptions) string {
	if opts.IgnoreCase {
		s = strings.ToLower(s)
	}
	if opts.IgnoreWhitespace {
		s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	}
	return s
}

// Compare diffs left against right. Segment values reference the
// normalized text, not the original inputs. Both inputs must be valid UTF-8.
func (e *TextEngine) Compare(left, right string, opts TextOptions) (*models.TextDiff, error) {
	if left == "" && right == "" {
		return nil, newError(KindInputMissing, "nothing to compare: both inputs are empty")
	}
	if !utf8.ValidString(left) {
		return nil, newError(KindTypeMismatch, "left input is not valid UTF-8 text")
	}
	if !utf8.ValidString(right) {
		return nil, newError(KindTypeMismatch, "right input is not valid UTF-8 text")
	}

	left = Normalize(left, opts)
	right = Normalize(right, opts)
	if left == "" && right == "" {
		return nil, newError(KindInputMissing, "nothing to compare: both inputs are empty after normalization")
	}

	var diffs []diffmatchpatch.Diff
	var decode func(string) ([]string, error)

	switch opts.Granularity {
	case models.GranularityCharacters:
		diffs = e.dmp.DiffMainRunes([]rune(left), []rune(right), false)
		decode = func(s string) ([]string, error) {
			out := make([]string, 0, len(s))
			for _, r := range s {
				out = append(out, string(r))
			}
			return out, nil
		}

	case models.GranularityLines, models.GranularityWords:
		split := splitLines
		if opts.Granularity == models.GranularityWords {
			split = splitWords
		}
		enc := newTokenEncoder()
		lr, err := enc.encode(split(left))
		if err != nil {
			return nil, err
		}
		rr, err := enc.encode(split(right))
		if err != nil {
			return nil, err
		}
		diffs = e.dmp.DiffCleanupMerge(e.dmp.DiffMainRunes(lr, rr, false))
		decode = enc.decode

	default:
		return nil, newError(KindInvalidOption, "unknown granularity %q (valid: lines, words, characters)", opts.Granularity)
	}

	out := &models.TextDiff{
		Segments: make([]models.Segment, 0, len(diffs)),
		Result:   models.ComparisonResult{FirstDifference: -1},
	}

	for _, d := range diffs {
		tokens, err := decode(d.Text)
		if err != nil {
			return nil, err
		}
		if len(tokens) == 0 {
			continue
		}

		seg := models.Segment{Value: strings.Join(tokens, ""), Count: len(tokens)}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			seg.Kind = models.SegmentAdded
			out.Result.Added++
		case diffmatchpatch.DiffDelete:
			seg.Kind = models.SegmentRemoved
			out.Result.Removed++
		default:
			seg.Kind = models.SegmentUnchanged
			out.Result.Unchanged++
		}

		if seg.Kind != models.SegmentUnchanged && out.Result.FirstDifference < 0 {
			out.Result.FirstDifference = int64(len(out.Segments))
		}
		out.Segments = append(out.Segments, seg)
	}

	out.Result.Total = uint64(len(out.Segments))
	return out, nil
}
