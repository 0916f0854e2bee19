package rules

import (
	"context"
	"strings"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/chat"
)

// https://en.wikipedia.org/wiki/GTUBE
var gtubeString = "XJS*C4JDBQADN1.NSBN3*2IDNEN*GTUBE-STANDARD-ANTI-UBE-TEST-EMAIL*C.34X"

// Deletes messages containing the GTUBE test string. Useful for checking the whole
// moderation path in a live channel.
var GtubeRule = automod.NewRule("gtube", func(ctx context.Context, msg chat.Message) (automod.Result, error) {
	if strings.Contains(msg.Text, gtubeString) {
		return automod.DeleteMessage(), nil
	}
	return automod.Nothing(), nil
})
