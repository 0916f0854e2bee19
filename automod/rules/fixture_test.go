package rules

import (
	"strconv"
	"time"

	"github.com/tppcore/modbot/automod/countstore"
	"github.com/tppcore/modbot/automod/setstore"
	"github.com/tppcore/modbot/chat"
	"github.com/tppcore/modbot/models"
)

func setsFixture() *setstore.MemSetStore {
	sets := setstore.NewMemSetStore()
	sets.Add(BannedDomainsSet, "banned.example", "grabify.link")
	sets.Add(SpambotPhrasesSet, "cheap viewers")
	sets.Add(SpambotNameTokensSet, "followers", "viewbot")
	return sets
}

func countersFixture() *countstore.MemCountStore {
	cs := countstore.NewMemCountStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cs.Now = func() time.Time { return now }
	return cs
}

func msgFixture(userID int, text string) chat.Message {
	id := strconv.Itoa(userID)
	return chat.Message{
		User:    models.User{ID: id, SimpleName: "user" + id, DisplayName: "User" + id},
		Text:    text,
		Source:  chat.SourceChat,
		Details: chat.Details{MessageID: "msg-" + id},
	}
}
