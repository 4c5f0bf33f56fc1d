package compare

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/sdejongh/diffdeck/pkg/models"
)

func textOpts(g models.Granularity) TextOptions {
	return TextOptions{Granularity: g}
}

var allGranularities = []models.Granularity{
	models.GranularityLines,
	models.GranularityWords,
	models.GranularityCharacters,
}

// rebuild reconstructs both inputs from the segments
func rebuild(segments []models.Segment) (string, string) {
	var left, right strings.Builder
	for _, s := range segments {
		if s.Kind != models.SegmentAdded {
			left.WriteString(s.Value)
		}
		if s.Kind != models.SegmentRemoved {
			right.WriteString(s.Value)
		}
	}
	return left.String(), right.String()
}

func TestTextEngine_Identical(t *testing.T) {
	engine := NewTextEngine()
	inputs := []string{"a", "hello world", "line one\nline two\n", "tab\tseparated  words", "ünïcödé ✓"}

	for _, g := range allGranularities {
		for _, in := range inputs {
			t.Run(string(g)+"/"+in, func(t *testing.T) {
				diff, err := engine.Compare(in, in, textOpts(g))
				if err != nil {
					t.Fatalf("Compare() error = %v", err)
				}
				r := diff.Result
				if r.Added != 0 || r.Removed != 0 {
					t.Errorf("added=%d removed=%d, want 0", r.Added, r.Removed)
				}
				if r.Unchanged != r.Total {
					t.Errorf("unchanged=%d total=%d, want equal", r.Unchanged, r.Total)
				}
				if r.FirstDifference != -1 {
					t.Errorf("FirstDifference = %d, want -1", r.FirstDifference)
				}
			})
		}
	}
}

func TestTextEngine_Reconstruction(t *testing.T) {
	engine := NewTextEngine()
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"a\nb\nc\n", "a\nc\nd\n"},
		{"the quick brown fox", "the slow brown dog"},
		{"", "only right"},
		{"only left", ""},
		{"no newline", "no newline\n"},
	}

	for _, g := range allGranularities {
		for _, p := range pairs {
			t.Run(string(g), func(t *testing.T) {
				diff, err := engine.Compare(p[0], p[1], textOpts(g))
				if err != nil {
					t.Fatalf("Compare() error = %v", err)
				}
				left, right := rebuild(diff.Segments)
				if left != p[0] || right != p[1] {
					t.Errorf("rebuild = (%q, %q), want (%q, %q)", left, right, p[0], p[1])
				}
				if diff.Result.Added+diff.Result.Removed < 1 {
					t.Error("different inputs should produce at least one added or removed segment")
				}
				if diff.Result.Modified != 0 {
					t.Errorf("Modified = %d, text engine never reports modified", diff.Result.Modified)
				}
				if diff.Result.Total != uint64(len(diff.Segments)) {
					t.Errorf("Total = %d, want segment count %d", diff.Result.Total, len(diff.Segments))
				}
			})
		}
	}
}

func TestTextEngine_ChangedLine(t *testing.T) {
	engine := NewTextEngine()

	diff, err := engine.Compare("a\nb\n", "a\nc\n", textOpts(models.GranularityLines))
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	want := []models.Segment{
		{Kind: models.SegmentUnchanged, Value: "a\n", Count: 1},
		{Kind: models.SegmentRemoved, Value: "b\n", Count: 1},
		{Kind: models.SegmentAdded, Value: "c\n", Count: 1},
	}
	if len(diff.Segments) != len(want) {
		t.Fatalf("got %d segments, want %d: %+v", len(diff.Segments), len(want), diff.Segments)
	}
	for i := range want {
		if diff.Segments[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, diff.Segments[i], want[i])
		}
	}

	r := diff.Result
	if r.Added != 1 || r.Removed != 1 || r.Unchanged != 1 || r.Total != 3 {
		t.Errorf("result = %+v, want added=1 removed=1 unchanged=1 total=3", r)
	}
	if r.FirstDifference != 1 {
		t.Errorf("FirstDifference = %d, want 1", r.FirstDifference)
	}
}

func TestTextEngine_Words(t *testing.T) {
	engine := NewTextEngine()

	diff, err := engine.Compare("the quick fox", "the slow fox", textOpts(models.GranularityWords))
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	r := diff.Result
	if r.Added != 1 || r.Removed != 1 || r.Unchanged != 2 {
		t.Errorf("result = %+v, want added=1 removed=1 unchanged=2", r)
	}
	for _, s := range diff.Segments {
		if s.Kind == models.SegmentRemoved && s.Value != "quick" {
			t.Errorf("removed segment = %q, want quick", s.Value)
		}
		if s.Kind == models.SegmentAdded && s.Value != "slow" {
			t.Errorf("added segment = %q, want slow", s.Value)
		}
	}
}

func TestTextEngine_Normalization(t *testing.T) {
	engine := NewTextEngine()

	tests := []struct {
		name  string
		left  string
		right string
		opts  TextOptions
	}{
		{"IgnoreCase", "ABC", "abc", TextOptions{Granularity: models.GranularityLines, IgnoreCase: true}},
		{"IgnoreWhitespace", "a  b", "a b", TextOptions{Granularity: models.GranularityLines, IgnoreWhitespace: true}},
		{"IgnoreWhitespaceTrim", "  a\t\nb  ", "a b", TextOptions{Granularity: models.GranularityWords, IgnoreWhitespace: true}},
		{"Both", "Hello   WORLD", "hello world", TextOptions{Granularity: models.GranularityCharacters, IgnoreCase: true, IgnoreWhitespace: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff, err := engine.Compare(tt.left, tt.right, tt.opts)
			if err != nil {
				t.Fatalf("Compare() error = %v", err)
			}
			if diff.Result.Added != 0 || diff.Result.Removed != 0 {
				t.Errorf("result = %+v, want fully unchanged", diff.Result)
			}
		})
	}

	t.Run("WithoutFlags", func(t *testing.T) {
		diff, err := engine.Compare("ABC", "abc", textOpts(models.GranularityLines))
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if diff.Result.Identical() {
			t.Error("case-sensitive comparison should differ")
		}
	})

	t.Run("SegmentsReferenceNormalizedText", func(t *testing.T) {
		diff, err := engine.Compare("A  B", "a b", TextOptions{Granularity: models.GranularityLines, IgnoreCase: true, IgnoreWhitespace: true})
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if len(diff.Segments) != 1 || diff.Segments[0].Value != "a b" {
			t.Errorf("segments = %+v, want single segment %q", diff.Segments, "a b")
		}
	})
}

func TestTextEngine_OneSideEmpty(t *testing.T) {
	engine := NewTextEngine()

	diff, err := engine.Compare("", "abc", textOpts(models.GranularityCharacters))
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(diff.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(diff.Segments))
	}
	seg := diff.Segments[0]
	if seg.Kind != models.SegmentAdded || seg.Value != "abc" || seg.Count != 3 {
		t.Errorf("segment = %+v, want added \"abc\" count 3", seg)
	}

	diff, err = engine.Compare("x\ny\n", "", textOpts(models.GranularityLines))
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(diff.Segments) != 1 || diff.Segments[0].Kind != models.SegmentRemoved || diff.Segments[0].Count != 2 {
		t.Errorf("segments = %+v, want one removed segment of 2 lines", diff.Segments)
	}
}

func TestTextEngine_Errors(t *testing.T) {
	engine := NewTextEngine()

	_, err := engine.Compare("", "", textOpts(models.GranularityLines))
	if !errors.Is(err, ErrInputMissing) {
		t.Errorf("both empty: error = %v, want ErrInputMissing", err)
	}

	_, err = engine.Compare("a", "b", textOpts("sentences"))
	if !errors.Is(err, ErrInvalidOption) {
		t.Errorf("bad granularity: error = %v, want ErrInvalidOption", err)
	}
}

func TestTextEngine_EmptyAfterNormalization(t *testing.T) {
	engine := NewTextEngine()
	opts := TextOptions{Granularity: models.GranularityLines, IgnoreWhitespace: true}

	_, err := engine.Compare("  ", "\t\n", opts)
	if !errors.Is(err, ErrInputMissing) {
		t.Errorf("whitespace only: error = %v, want ErrInputMissing", err)
	}

	// one side still has content, so this is a real diff
	diff, err := engine.Compare("  ", "x", opts)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if diff.Result.Added != 1 {
		t.Errorf("Added = %d, want 1", diff.Result.Added)
	}
}

func TestTextEngine_RejectsInvalidUTF8(t *testing.T) {
	engine := NewTextEngine()

	for _, g := range allGranularities {
		t.Run(string(g), func(t *testing.T) {
			_, err := engine.Compare("\xff", "\uFFFD", textOpts(g))
			if !errors.Is(err, ErrTypeMismatch) {
				t.Errorf("invalid left: error = %v, want ErrTypeMismatch", err)
			}
			_, err = engine.Compare("ok", "ok\xc3", textOpts(g))
			if !errors.Is(err, ErrTypeMismatch) {
				t.Errorf("invalid right: error = %v, want ErrTypeMismatch", err)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a\n"}},
		{"a\nb", []string{"a\n", "b"}},
		{"\n\n", []string{"\n", "\n"}},
	}

	for _, tt := range tests {
		got := splitLines(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("splitLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenEncoder_SkipsSurrogates(t *testing.T) {
	enc := newTokenEncoder()

	n := surrogateMin + 16
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = strconv.Itoa(i)
	}

	runes, err := enc.encode(tokens)
	if err != nil {
		t.Fatalf("encode() error = %v", err)
	}
	for _, r := range runes {
		if r >= surrogateMin && r <= surrogateMax {
			t.Fatalf("encode() produced surrogate %U", r)
		}
	}

	decoded, err := enc.decode(string(runes))
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if len(decoded) != n {
		t.Fatalf("decode() returned %d tokens, want %d", len(decoded), n)
	}
	for i := range tokens {
		if decoded[i] != tokens[i] {
			t.Fatalf("token %d = %q, want %q", i, decoded[i], tokens[i])
		}
	}
}
