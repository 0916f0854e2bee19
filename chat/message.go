package chat

import (
	"github.com/tppcore/modbot/models"
)

type Source int

const (
	SourceChat Source = iota
	SourceWhisper
)

func (s Source) String() string {
	switch s {
	case SourceChat:
		return "chat"
	case SourceWhisper:
		return "whisper"
	default:
		return "unknown"
	}
}

// An emote occurrence within message text. Start and End are inclusive rune offsets.
type Emote struct {
	ID    string
	Name  string
	Start int
	End   int
}

// Protocol-level details of a message. The zero value means: no message id, not an
// action, not from staff, no emotes.
type Details struct {
	// empty for whispers and synthetic messages
	MessageID string
	IsAction  bool
	IsStaff   bool
	Emotes    []Emote
}

// A single inbound chat message or whisper. Treated as immutable once constructed.
type Message struct {
	User    models.User
	Text    string
	Source  Source
	Details Details
}

func (m Message) String() string {
	return m.Source.String() + " " + m.User.String() + ": " + m.Text
}
