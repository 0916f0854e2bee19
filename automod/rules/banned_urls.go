package rules

import (
	"context"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/automod/helpers"
	"github.com/tppcore/modbot/automod/setstore"
	"github.com/tppcore/modbot/chat"
)

const BannedDomainsSet = "banned-domains"

// Times out users posting links to any domain (or subdomain of a domain) in the
// banned-domains set.
type BannedURLsRule struct {
	Sets setstore.SetStore
}

var _ automod.Rule = (*BannedURLsRule)(nil)

func (r *BannedURLsRule) ID() string { return "banned-urls" }

func (r *BannedURLsRule) Check(ctx context.Context, msg chat.Message) (automod.Result, error) {
	for _, u := range helpers.DedupeStrings(helpers.ExtractTextURLs(msg.Text)) {
		domain := helpers.URLDomain(u)
		if domain == "" {
			continue
		}
		for _, d := range helpers.ParentDomains(domain) {
			banned, err := r.Sets.InSet(ctx, BannedDomainsSet, d)
			if err != nil {
				return automod.Nothing(), err
			}
			if banned {
				return automod.Timeout("Posting links to banned websites is not allowed."), nil
			}
		}
	}
	return automod.Nothing(), nil
}
