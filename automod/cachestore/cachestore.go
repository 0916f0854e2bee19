package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Namespaced string cache. A miss is an empty string, not an error.
type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, error)
	Set(ctx context.Context, name, key string, val string) error
	Purge(ctx context.Context, name, key string) error
}

// Reads a JSON-encoded value. Reports false on a miss. A value that does not decode is
// purged and reported as an error.
func GetJSON[T any](ctx context.Context, cs CacheStore, name, key string) (T, bool, error) {
	var out T
	raw, err := cs.Get(ctx, name, key)
	if err != nil || raw == "" {
		return out, false, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		if perr := cs.Purge(ctx, name, key); perr != nil {
			return out, false, perr
		}
		return out, false, fmt.Errorf("decoding cached %s: %w", name, err)
	}
	return out, true, nil
}

func SetJSON(ctx context.Context, cs CacheStore, name, key string, val any) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return cs.Set(ctx, name, key, string(b))
}
