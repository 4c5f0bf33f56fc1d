package compare

import (
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
)

// splitLines splits s after every newline, keeping the terminator on each line
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := make([]string, 0, strings.Count(s, "\n")+1)
	for {
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			lines = append(lines, s)
			return lines
		}
		lines = append(lines, s[:idx+1])
		s = s[idx+1:]
		if s == "" {
			return lines
		}
	}
}

// splitWords splits s on Unicode word boundaries. Whitespace and punctuation
// become tokens of their own, so joining the tokens yields s again.
func splitWords(s string) []string {
	var tokens []string
	iter := words.FromString(s)
	for iter.Next() {
		tokens = append(tokens, iter.Value())
	}
	return tokens
}

// tokenEncoder maps each distinct token to a single rune so the rune-level
// diff can run over tokens. Surrogate code points are skipped because they do
// not survive the round trip through a Go string.
type tokenEncoder struct {
	index  map[string]rune
	tokens []string
}

func newTokenEncoder() *tokenEncoder {
	return &tokenEncoder{index: make(map[string]rune)}
}

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

func (e *tokenEncoder) encode(tokens []string) ([]rune, error) {
	out := make([]rune, len(tokens))
	for i, tok := range tokens {
		r, ok := e.index[tok]
		if !ok {
			n := rune(len(e.tokens))
			if n >= surrogateMin {
				n += surrogateMax - surrogateMin + 1
			}
			if n > utf8.MaxRune {
				return nil, newError(KindSizeLimit, "too many distinct tokens to diff (limit %d)", len(e.tokens))
			}
			r = n
			e.index[tok] = r
			e.tokens = append(e.tokens, tok)
		}
		out[i] = r
	}
	return out, nil
}

func (e *tokenEncoder) decode(s string) ([]string, error) {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		idx := int(r)
		if idx > surrogateMax {
			idx -= surrogateMax - surrogateMin + 1
		}
		if idx < 0 || idx >= len(e.tokens) {
			return nil, newError(KindDecodeFailure, "diff produced unknown token %d", idx)
		}
		out = append(out, e.tokens[idx])
	}
	return out, nil
}
