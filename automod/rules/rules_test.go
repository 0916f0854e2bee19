package rules

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/chat"
)

func TestBannedURLsRule(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	rule := &BannedURLsRule{Sets: setsFixture()}

	fixtures := []struct {
		text string
		kind automod.ResultKind
	}{
		{text: "hello chat", kind: automod.ResultNothing},
		{text: "look at twitch.tv/directory", kind: automod.ResultNothing},
		{text: "look at https://banned.example/pic.png", kind: automod.ResultTimeout},
		{text: "look at www.Banned.Example", kind: automod.ResultTimeout},
		{text: "look at sub.grabify.link/abc", kind: automod.ResultTimeout},
		{text: "notbanned.example is fine", kind: automod.ResultNothing},
	}
	for _, fix := range fixtures {
		res, err := rule.Check(ctx, msgFixture(1, fix.text))
		assert.NoError(err)
		assert.Equal(fix.kind, res.Kind(), fix.text)
	}
}

func TestSpambotRulePhrases(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	rule := &SpambotRule{Sets: setsFixture(), Counters: countersFixture()}

	res, err := rule.Check(ctx, msgFixture(1, "Wanna become famous? Buy followers, primes and viewers on example.com"))
	assert.NoError(err)
	assert.Equal(automod.ResultTimeout, res.Kind())

	res, err = rule.Check(ctx, msgFixture(2, "get CHEAP viewers now"))
	assert.NoError(err)
	assert.Equal(automod.ResultTimeout, res.Kind())

	res, err = rule.Check(ctx, msgFixture(3, "what a cheap trick"))
	assert.NoError(err)
	assert.Equal(automod.ResultNothing, res.Kind())
}

func TestSpambotRuleBotNames(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	rule := &SpambotRule{Sets: setsFixture(), Counters: countersFixture()}

	bot := msgFixture(1, "hey streamer, check out example.com")
	bot.User.SimpleName = "cheap_followers_4u"
	res, err := rule.Check(ctx, bot)
	assert.NoError(err)
	assert.Equal(automod.ResultTimeout, res.Kind())

	// no link, no timeout
	bot.Text = "hey streamer"
	res, err = rule.Check(ctx, bot)
	assert.NoError(err)
	assert.Equal(automod.ResultNothing, res.Kind())
}

func TestSpambotRuleFirstMessageLink(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	rule := &SpambotRule{Sets: setsFixture(), Counters: countersFixture()}

	res, err := rule.Check(ctx, msgFixture(1, "https://example.com/xyz"))
	assert.NoError(err)
	assert.Equal(automod.ResultDeleteMessage, res.Kind())

	// a user who has been chatting may post links
	res, err = rule.Check(ctx, msgFixture(2, "hi"))
	assert.NoError(err)
	assert.Equal(automod.ResultNothing, res.Kind())
	res, err = rule.Check(ctx, msgFixture(2, "https://example.com/xyz"))
	assert.NoError(err)
	assert.Equal(automod.ResultNothing, res.Kind())
}

func TestEmoteRule(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	rule := &EmoteRule{}

	withEmotes := func(n int) chat.Message {
		msg := msgFixture(1, strings.TrimSpace(strings.Repeat("Kappa ", n)))
		for i := 0; i < n; i++ {
			msg.Details.Emotes = append(msg.Details.Emotes, chat.Emote{ID: "25", Name: "Kappa", Start: i * 6, End: i*6 + 4})
		}
		return msg
	}

	res, err := rule.Check(ctx, withEmotes(10))
	assert.NoError(err)
	assert.Equal(automod.ResultNothing, res.Kind())

	res, err = rule.Check(ctx, withEmotes(14))
	assert.NoError(err)
	assert.Equal(automod.ResultGivePoints, res.Kind())
	assert.Equal(40, res.Points())
}

func TestCopypastaRuleRepeats(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	rule := &CopypastaRule{Counters: countersFixture()}
	pasta := "this is a very long copypasta that everybody loves"

	res, err := rule.Check(ctx, msgFixture(1, pasta))
	assert.NoError(err)
	assert.Equal(automod.ResultNothing, res.Kind())

	// same text modulo case and punctuation
	res, err = rule.Check(ctx, msgFixture(1, strings.ToUpper(pasta)+"!!!"))
	assert.NoError(err)
	assert.Equal(automod.ResultGivePoints, res.Kind())
	assert.Equal(CopypastaRepeatPoints, res.Points())

	res, err = rule.Check(ctx, msgFixture(1, pasta))
	assert.NoError(err)
	assert.Equal(2*CopypastaRepeatPoints, res.Points())

	// short messages are never copypasta
	for i := 0; i < 3; i++ {
		res, err = rule.Check(ctx, msgFixture(1, "PogChamp"))
		assert.NoError(err)
		assert.Equal(automod.ResultNothing, res.Kind())
	}
}

func TestCopypastaRuleSpread(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	rule := &CopypastaRule{Counters: countersFixture()}
	pasta := "everybody paste this into chat right now"

	for u := 1; u < CopypastaSenderThreshold; u++ {
		res, err := rule.Check(ctx, msgFixture(u, pasta))
		assert.NoError(err)
		assert.Equal(automod.ResultNothing, res.Kind())
	}
	res, err := rule.Check(ctx, msgFixture(CopypastaSenderThreshold, pasta))
	assert.NoError(err)
	assert.Equal(automod.ResultGivePoints, res.Kind())
	assert.Equal(CopypastaSpreadPoints, res.Points())
}

func TestUnicodeCategoryRule(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	rule := &UnicodeCategoryRule{}

	res, err := rule.Check(ctx, msgFixture(1, "perfectly normal message, with accents: café"))
	assert.NoError(err)
	assert.Equal(automod.ResultNothing, res.Kind())

	zalgo := strings.Repeat("a\u0301\u0302\u0303\u0304", 12)
	res, err = rule.Check(ctx, msgFixture(1, zalgo))
	assert.NoError(err)
	assert.Equal(automod.ResultDeleteMessage, res.Kind())

	symbols := strings.Repeat("★", 20)
	res, err = rule.Check(ctx, msgFixture(1, symbols))
	assert.NoError(err)
	assert.Equal(automod.ResultGivePoints, res.Kind())
	assert.Equal(20*PointsPerSymbol, res.Points())

	// a few emoji in an otherwise normal sentence are fine
	res, err = rule.Check(ctx, msgFixture(1, "gg everyone ★★ see you tomorrow"))
	assert.NoError(err)
	assert.Equal(automod.ResultNothing, res.Kind())
}

func TestGtubeRule(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	res, err := GtubeRule.Check(ctx, msgFixture(1, "test "+gtubeString))
	assert.NoError(err)
	assert.Equal(automod.ResultDeleteMessage, res.Kind())
	assert.Equal("gtube", GtubeRule.ID())
}

func TestDefaultRulesWithEngine(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	rules := DefaultRules(setsFixture(), countersFixture())
	var ids []string
	for _, r := range rules {
		ids = append(ids, r.ID())
	}
	assert.Equal([]string{"banned-urls", "spambot", "emotes", "copypasta", "unicode-category", "gtube"}, ids)

	eng, exec, modlog := automod.EngineTestFixture(rules...)
	v, err := eng.Check(ctx, msgFixture(1, "hello everyone"))
	assert.NoError(err)
	assert.True(v.Accepted)

	v, err = eng.Check(ctx, msgFixture(1, "free stuff at banned.example"))
	assert.NoError(err)
	assert.Equal(automod.ActionTimeout, v.Action)
	assert.Equal("banned-urls", v.Rule)
	assert.Len(exec.Timeouts, 1)
	assert.Len(modlog.Entries, 1)

	// repeating a copypasta quickly adds up to a timeout
	pasta := "this copypasta is going to get me in trouble"
	// 0 + 50 + 100 + 150 points
	var last automod.Verdict
	for i := 0; i < 4; i++ {
		last, err = eng.Check(ctx, msgFixture(2, pasta))
		assert.NoError(err)
	}
	assert.Equal(automod.ActionTimeout, last.Action)
	assert.Equal("copypasta", last.Rule)
}
