package share

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/sdejongh/diffdeck/pkg/storage"
)

// KeyPrefix namespaces share records inside a Store
const KeyPrefix = "share:"

// DefaultMaxInline is the longest token embedded directly in a fragment
const DefaultMaxInline = 2000

// record is what the Sharer writes to the Store for oversized tokens
type record struct {
	CreatedAt int64  `json:"createdAt"`
	Token     string `json:"token"`
}

// Sharer produces share fragments, moving tokens longer than maxInline out
// of the URL and into a Store. A nil Store or a non-positive maxInline keeps
// every token inline.
type Sharer struct {
	store     storage.Store
	maxInline int
	now       func() time.Time
}

// NewSharer creates a sharer
func NewSharer(store storage.Store, maxInline int) *Sharer {
	return &Sharer{store: store, maxInline: maxInline, now: time.Now}
}

// Share returns the URL fragment for state. A zero Timestamp is set to now.
func (s *Sharer) Share(ctx context.Context, state SharedState) (string, error) {
	now := s.now()
	if state.Timestamp == 0 {
		state.Timestamp = now.UnixMilli()
	}

	token, err := Encode(state)
	if err != nil {
		return "", err
	}

	if s.store == nil || s.maxInline <= 0 || len(token) <= s.maxInline {
		return Fragment(token), nil
	}

	id := uuid.NewString()
	data, err := json.Marshal(record{CreatedAt: now.UnixMilli(), Token: token})
	if err != nil {
		return "", fmt.Errorf("failed to marshal share record: %w", err)
	}
	if err := s.store.Set(ctx, KeyPrefix+id, data); err != nil {
		return "", fmt.Errorf("failed to store shared state: %w", err)
	}

	return Fragment(RefPrefix + id), nil
}

// Resolve restores the state behind an inline or referenced fragment.
// Malformed, unknown or expired-and-swept references return ok == false
// with a nil error; only Store I/O failures are reported.
func (s *Sharer) Resolve(ctx context.Context, fragment string) (SharedState, bool, error) {
	fragment = strings.TrimPrefix(fragment, "#")

	if !strings.HasPrefix(fragment, RefPrefix) {
		state, ok := Decode(fragment)
		return state, ok, nil
	}

	id := strings.TrimPrefix(fragment, RefPrefix)
	if s.store == nil || uuid.Validate(id) != nil {
		return SharedState{}, false, nil
	}

	data, ok, err := s.store.Get(ctx, KeyPrefix+id)
	if err != nil {
		return SharedState{}, false, fmt.Errorf("failed to load shared state: %w", err)
	}
	if !ok {
		return SharedState{}, false, nil
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return SharedState{}, false, nil
	}
	state, ok := Decode(rec.Token)
	return state, ok, nil
}
