package rules

import (
	"context"
	"unicode/utf8"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/automod/countstore"
	"github.com/tppcore/modbot/automod/helpers"
	"github.com/tppcore/modbot/automod/keyword"
	"github.com/tppcore/modbot/chat"
)

var (
	// normalized messages shorter than this are never treated as copypasta
	CopypastaMinLength = 20
	// points for each earlier copy of the same message by the same user within the minute
	CopypastaRepeatPoints = 50
	// distinct senders of the same message within the hour before it counts as copypasta
	CopypastaSenderThreshold = 5
	CopypastaSpreadPoints    = 30
)

// Gives points for repeating the same message, and for joining in on a message many
// other users are pasting. Messages are compared after normalization and hashing.
type CopypastaRule struct {
	Counters countstore.CountStore
}

var _ automod.Rule = (*CopypastaRule)(nil)

func (r *CopypastaRule) ID() string { return "copypasta" }

func (r *CopypastaRule) Check(ctx context.Context, msg chat.Message) (automod.Result, error) {
	text := keyword.NormalizeText(msg.Text)
	if utf8.RuneCountInString(text) < CopypastaMinLength {
		return automod.Nothing(), nil
	}
	hash := helpers.HashOfString(text)
	userKey := msg.User.ID + "/" + hash

	repeats, err := r.Counters.GetCount(ctx, "copypasta-user", userKey, countstore.PeriodMinute)
	if err != nil {
		return automod.Nothing(), err
	}
	if err := r.Counters.Increment(ctx, "copypasta-user", userKey); err != nil {
		return automod.Nothing(), err
	}
	if err := r.Counters.IncrementDistinct(ctx, "copypasta-senders", hash, msg.User.ID); err != nil {
		return automod.Nothing(), err
	}
	senders, err := r.Counters.GetCountDistinct(ctx, "copypasta-senders", hash, countstore.PeriodHour)
	if err != nil {
		return automod.Nothing(), err
	}

	points := repeats * CopypastaRepeatPoints
	if senders >= CopypastaSenderThreshold {
		points += CopypastaSpreadPoints
	}
	if points == 0 {
		return automod.Nothing(), nil
	}
	return automod.GivePoints(points), nil
}
