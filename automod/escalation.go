package automod

import (
	"context"
	"fmt"
	"time"

	"github.com/tppcore/modbot/models"
)

var (
	// window within which earlier timeouts count towards escalation
	RecentTimeoutsWindow   = 7 * 24 * time.Hour
	InitialTimeoutDuration = 2 * time.Minute
	// twitch does not allow timeouts beyond 2 weeks
	MaxTimeoutDuration = 14*24*time.Hour - time.Second
)

// Duration of the next timeout for a user with recentBans timeouts in the recent window.
// The first freeTimeouts timeouts get the initial duration, each further one adds
// another initial duration on top, up to MaxTimeoutDuration.
func TimeoutDuration(recentBans int64, freeTimeouts int) time.Duration {
	increases := recentBans - int64(freeTimeouts)
	if increases < 0 {
		increases = 0
	}
	// avoid overflowing the multiplication below
	if increases >= int64(MaxTimeoutDuration/InitialTimeoutDuration) {
		return MaxTimeoutDuration
	}
	d := InitialTimeoutDuration * time.Duration(increases+1)
	if d > MaxTimeoutDuration {
		d = MaxTimeoutDuration
	}
	return d
}

func (e *Engine) CalculateTimeoutDuration(ctx context.Context, user models.User) (time.Duration, error) {
	cutoff := e.now().Add(-RecentTimeoutsWindow)
	recentBans, err := e.ModLog.CountRecentBans(ctx, user, cutoff)
	if err != nil {
		return 0, fmt.Errorf("counting recent timeouts: %w", err)
	}
	return TimeoutDuration(recentBans, e.Config.FreeTimeouts), nil
}
