package rules

import (
	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/automod/countstore"
	"github.com/tppcore/modbot/automod/setstore"
)

// The standard rule set, in evaluation order. When several rules ask for a timeout the
// earliest one wins, so the most specific rules come first.
func DefaultRules(sets setstore.SetStore, counters countstore.CountStore) []automod.Rule {
	return []automod.Rule{
		&BannedURLsRule{Sets: sets},
		&SpambotRule{Sets: sets, Counters: counters},
		&EmoteRule{},
		&CopypastaRule{Counters: counters},
		&UnicodeCategoryRule{},
		GtubeRule,
	}
}
