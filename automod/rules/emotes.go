package rules

import (
	"context"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/chat"
)

var (
	// emotes per message before points are given
	FreeEmotes           = 10
	PointsPerExcessEmote = 10
)

// Gives points for emote spam.
type EmoteRule struct{}

var _ automod.Rule = (*EmoteRule)(nil)

func (r *EmoteRule) ID() string { return "emotes" }

func (r *EmoteRule) Check(ctx context.Context, msg chat.Message) (automod.Result, error) {
	excess := len(msg.Details.Emotes) - FreeEmotes
	if excess <= 0 {
		return automod.Nothing(), nil
	}
	return automod.GivePoints(excess * PointsPerExcessEmote), nil
}
