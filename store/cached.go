package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/tppcore/modbot/automod/cachestore"
	"github.com/tppcore/modbot/chat"
	"github.com/tppcore/modbot/models"
)

// Wraps a user recorder with a cache, so that a user chatting repeatedly does not cause
// a database write per message. A cached user is re-recorded once their attributes
// change, or once their cached record is older than RefreshInterval.
type CachedUserRepo struct {
	Inner  chat.UserRecorder
	Cache  cachestore.CacheStore
	Logger *slog.Logger
	// how stale the activity timestamps of a cached user may get
	RefreshInterval time.Duration
}

var _ chat.UserRecorder = (*CachedUserRepo)(nil)

func NewCachedUserRepo(inner chat.UserRecorder, cache cachestore.CacheStore) *CachedUserRepo {
	return &CachedUserRepo{
		Inner:           inner,
		Cache:           cache,
		Logger:          slog.Default(),
		RefreshInterval: 5 * time.Minute,
	}
}

const userCacheName = "user"

func sameAttributes(u models.User, info models.UserInfo) bool {
	if u.SimpleName != info.SimpleName || u.DisplayName != info.DisplayName {
		return false
	}
	if (u.Color == nil) != (info.Color == nil) {
		return false
	}
	return u.Color == nil || *u.Color == *info.Color
}

func (r *CachedUserRepo) RecordUser(ctx context.Context, info models.UserInfo) (models.User, error) {
	cached, ok, err := cachestore.GetJSON[models.User](ctx, r.Cache, userCacheName, info.ID)
	if err != nil {
		r.Logger.Warn("failed to read user cache", "user", info.ID, "err", err)
	} else if ok && sameAttributes(cached, info) && info.UpdatedAt.Sub(cached.LastUpdatedAt) < r.RefreshInterval {
		return cached, nil
	}

	user, err := r.Inner.RecordUser(ctx, info)
	if err != nil {
		return models.User{}, err
	}
	if err := cachestore.SetJSON(ctx, r.Cache, userCacheName, info.ID, user); err != nil {
		r.Logger.Warn("failed to write user cache", "user", info.ID, "err", err)
	}
	return user, nil
}
