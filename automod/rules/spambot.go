package rules

import (
	"context"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/automod/countstore"
	"github.com/tppcore/modbot/automod/helpers"
	"github.com/tppcore/modbot/automod/keyword"
	"github.com/tppcore/modbot/automod/setstore"
	"github.com/tppcore/modbot/chat"
)

const (
	SpambotPhrasesSet = "spambot-phrases"
	// login tokens typical for follower-selling bot accounts
	SpambotNameTokensSet = "spambot-name-tokens"
)

// phrases always matched, on top of the spambot-phrases set
var defaultSpambotPhrases = []string{
	"wanna become famous",
	"buy followers primes and viewers",
	"bigfollows",
}

// Catches common chat spam bots: known advertisement phrases get a timeout, as do links
// posted by accounts with bot-like logins. A user whose first message in an hour is
// nothing but a link gets that message deleted.
type SpambotRule struct {
	Sets     setstore.SetStore
	Counters countstore.CountStore
}

var _ automod.Rule = (*SpambotRule)(nil)

func (r *SpambotRule) ID() string { return "spambot" }

func (r *SpambotRule) Check(ctx context.Context, msg chat.Message) (automod.Result, error) {
	extra, err := r.Sets.Members(ctx, SpambotPhrasesSet)
	if err != nil {
		return automod.Nothing(), err
	}
	tokens := keyword.TokenizeText(msg.Text)
	for _, phrase := range append(extra, defaultSpambotPhrases...) {
		if keyword.ContainsPhrase(tokens, phrase) {
			return automod.Timeout("Detected spam bot message."), nil
		}
	}

	hasURL := len(helpers.ExtractTextURLs(msg.Text)) > 0
	if hasURL {
		for _, tok := range keyword.TokenizeIdentifier(msg.User.SimpleName) {
			botName, err := r.Sets.InSet(ctx, SpambotNameTokensSet, tok)
			if err != nil {
				return automod.Nothing(), err
			}
			if botName {
				return automod.Timeout("Detected spam bot message."), nil
			}
		}
	}

	seen, err := r.Counters.GetCount(ctx, "user-messages", msg.User.ID, countstore.PeriodHour)
	if err != nil {
		return automod.Nothing(), err
	}
	if err := r.Counters.Increment(ctx, "user-messages", msg.User.ID); err != nil {
		return automod.Nothing(), err
	}
	if seen == 0 && hasURL && helpers.IsOnlyURL(msg.Text) {
		return automod.DeleteMessage(), nil
	}
	return automod.Nothing(), nil
}
