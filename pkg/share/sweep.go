package share

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/sdejongh/diffdeck/pkg/storage"
)

// DefaultRetention is how long stored share records are kept
const DefaultRetention = 7 * 24 * time.Hour

// Sweep deletes share records older than retention, along with records that
// can no longer be read. Keys outside the share namespace are left alone.
// It returns the number of records deleted.
func Sweep(ctx context.Context, store storage.Store, now time.Time, retention time.Duration) (int, error) {
	keys, err := store.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list share records: %w", err)
	}

	cutoff := now.Add(-retention).UnixMilli()
	purged := 0

	for _, key := range keys {
		if !strings.HasPrefix(key, KeyPrefix) {
			continue
		}

		select {
		case <-ctx.Done():
			return purged, ctx.Err()
		default:
		}

		data, ok, err := store.Get(ctx, key)
		if err != nil {
			return purged, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !ok {
			continue
		}

		var rec record
		if err := json.Unmarshal(data, &rec); err == nil && rec.CreatedAt >= cutoff {
			continue
		}

		if err := store.Delete(ctx, key); err != nil {
			return purged, fmt.Errorf("failed to delete %s: %w", key, err)
		}
		purged++
	}

	return purged, nil
}
