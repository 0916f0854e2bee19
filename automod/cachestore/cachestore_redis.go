package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// Cache shared between bot processes, eg a staging bot and the live one watching the
// same channel. Lookups first hit a small process-local TinyLFU tier, so a busy
// chatter's user record is not fetched from redis on every message.
type RedisCacheStore struct {
	Data *cache.Cache
	TTL  time.Duration
}

var _ CacheStore = (*RedisCacheStore)(nil)

// size of the process-local tier, in entries
const localCacheEntries = 10_000

func NewRedisCacheStore(ctx context.Context, rdb *redis.Client, ttl time.Duration) (*RedisCacheStore, error) {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis cache unreachable: %w", err)
	}
	return &RedisCacheStore{
		Data: cache.New(&cache.Options{
			Redis:      rdb,
			LocalCache: cache.NewTinyLFU(localCacheEntries, ttl),
		}),
		TTL: ttl,
	}, nil
}

func redisCacheKey(name, key string) string {
	return "modbot/cache/" + name + "/" + key
}

func (s *RedisCacheStore) Get(ctx context.Context, name, key string) (string, error) {
	var val string
	err := s.Data.Get(ctx, redisCacheKey(name, key), &val)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("reading cached %s %s: %w", name, key, err)
	}
	return val, nil
}

func (s *RedisCacheStore) Set(ctx context.Context, name, key string, val string) error {
	err := s.Data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   redisCacheKey(name, key),
		Value: val,
		TTL:   s.TTL,
	})
	if err != nil {
		return fmt.Errorf("caching %s %s: %w", name, key, err)
	}
	return nil
}

// Drops the entry from redis and from this process's local tier. Other processes keep
// their local copy until it expires.
func (s *RedisCacheStore) Purge(ctx context.Context, name, key string) error {
	err := s.Data.Delete(ctx, redisCacheKey(name, key))
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return fmt.Errorf("purging cached %s %s: %w", name, key, err)
	}
	return nil
}
