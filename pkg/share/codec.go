// Package share turns comparison state into URL-fragment tokens and back.
//
// A token is the JSON form of a SharedState, deflated and base64url-encoded,
// behind the "share=" discriminator. Decoding never fails loudly: anything
// that is not a valid token yields ok == false, which callers treat exactly
// like a first visit with no shared state.
package share

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/flate"

	"github.com/sdejongh/diffdeck/pkg/models"
)

const (
	// Prefix marks an inline share token
	Prefix = "share="
	// RefPrefix marks a token whose payload lives in a Store
	RefPrefix = "share-ref="

	// maxDecodedSize caps decompression so a hostile token cannot exhaust memory
	maxDecodedSize = 256 << 20
)

// SharedState is everything needed to restore a comparison
type SharedState struct {
	Mode         models.Mode    `json:"mode"`
	LeftContent  string         `json:"leftContent"`
	RightContent string         `json:"rightContent"`
	Settings     map[string]any `json:"settings"`

	// Timestamp is the creation time in milliseconds since the Unix epoch
	Timestamp int64 `json:"timestamp"`
}

// Encode returns the inline token for s, including the discriminator prefix.
// Contents must be valid UTF-8 and Settings values must be JSON-native
// (nil, bool, float64, string, []any or map[string]any) so that Decode
// returns exactly s. Binary content is carried as a data URL.
func Encode(s SharedState) (string, error) {
	if err := checkState(s); err != nil {
		return "", err
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal shared state: %w", err)
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("failed to create compressor: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return "", fmt.Errorf("failed to compress shared state: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to compress shared state: %w", err)
	}

	return Prefix + base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses an inline token. A leading '#' is accepted so a raw URL
// fragment can be passed straight in.
func Decode(token string) (SharedState, bool) {
	token = strings.TrimPrefix(token, "#")
	if !strings.HasPrefix(token, Prefix) {
		return SharedState{}, false
	}

	compressed, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(token, Prefix))
	if err != nil || len(compressed) == 0 {
		return SharedState{}, false
	}

	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()

	payload, err := io.ReadAll(io.LimitReader(r, maxDecodedSize+1))
	if err != nil || len(payload) > maxDecodedSize {
		return SharedState{}, false
	}

	var s SharedState
	if err := json.Unmarshal(payload, &s); err != nil {
		return SharedState{}, false
	}
	if !s.Mode.Valid() {
		return SharedState{}, false
	}
	return s, true
}

// checkState rejects values the JSON round trip would alter
func checkState(s SharedState) error {
	if !utf8.ValidString(s.LeftContent) {
		return fmt.Errorf("left content is not valid UTF-8")
	}
	if !utf8.ValidString(s.RightContent) {
		return fmt.Errorf("right content is not valid UTF-8")
	}
	for k, v := range s.Settings {
		if !utf8.ValidString(k) {
			return fmt.Errorf("setting key %q is not valid UTF-8", k)
		}
		if err := checkValue(v); err != nil {
			return fmt.Errorf("setting %q: %w", k, err)
		}
	}
	return nil
}

func checkValue(v any) error {
	switch v := v.(type) {
	case nil, bool, float64:
		return nil
	case string:
		if !utf8.ValidString(v) {
			return fmt.Errorf("string is not valid UTF-8")
		}
		return nil
	case []any:
		for _, e := range v {
			if err := checkValue(e); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for k, e := range v {
			if !utf8.ValidString(k) {
				return fmt.Errorf("key %q is not valid UTF-8", k)
			}
			if err := checkValue(e); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported type %T", v)
	}
}

// Fragment renders a token as a URL fragment
func Fragment(token string) string {
	return "#" + token
}
