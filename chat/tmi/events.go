package tmi

import (
	"strings"
)

// A chat message received in a joined channel (PRIVMSG).
type PrivateMessage struct {
	ID          string
	Channel     string
	UserID      string
	Login       string
	DisplayName string
	// as sent by the server, eg "#1E90FF", possibly empty
	Color         string
	Text          string
	IsAction      bool
	IsBroadcaster bool
	IsModerator   bool
	Emotes        []Emote
}

// A private message sent directly to the bot account.
type WhisperMessage struct {
	UserID      string
	Login       string
	DisplayName string
	Color       string
	Text        string
	Emotes      []Emote
}

func displayName(m *Message) string {
	if dn := m.Tags["display-name"]; dn != "" {
		return dn
	}
	return m.Nick()
}

func newPrivateMessage(m *Message) PrivateMessage {
	text, isAction := parseAction(m.Trailing())
	badges := parseBadges(m.Tags["badges"])
	var channel string
	if len(m.Params) > 0 {
		channel = strings.TrimPrefix(m.Params[0], "#")
	}
	_, isBroadcaster := badges["broadcaster"]
	_, hasModBadge := badges["moderator"]
	return PrivateMessage{
		ID:            m.Tags["id"],
		Channel:       channel,
		UserID:        m.Tags["user-id"],
		Login:         m.Nick(),
		DisplayName:   displayName(m),
		Color:         m.Tags["color"],
		Text:          text,
		IsAction:      isAction,
		IsBroadcaster: isBroadcaster,
		IsModerator:   m.Tags["mod"] == "1" || hasModBadge,
		Emotes:        parseEmotes(m.Tags["emotes"], text),
	}
}

func newWhisperMessage(m *Message) WhisperMessage {
	text := m.Trailing()
	return WhisperMessage{
		UserID:      m.Tags["user-id"],
		Login:       m.Nick(),
		DisplayName: displayName(m),
		Color:       m.Tags["color"],
		Text:        text,
		Emotes:      parseEmotes(m.Tags["emotes"], text),
	}
}
