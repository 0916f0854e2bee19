package chat

// Maximum message length of the Twitch Messaging Interface (TMI). The limit is counted in
// characters, not bytes.
const MaxMessageLength = 500

const (
	actionPrefix = "/me "
	// visual representation of the longest possible username (25 characters)
	whisperPrefix = "/w ,,,,,''''',,,,,''''',,,,, "
)

var (
	RegularSendBudget = MaxMessageLength - len(actionPrefix)
	WhisperSendBudget = MaxMessageLength - len(whisperPrefix)
)

// Splits text into chunks which each fit into a maximum length. The maximum passed in
// should already account for any fixed prefix the chunks get sent with.
type MessageSplitter struct {
	maxLength int
}

func NewMessageSplitter(maxLength int) *MessageSplitter {
	if maxLength < 1 {
		panic("message splitter max length must be positive")
	}
	return &MessageSplitter{maxLength: maxLength}
}

func (s *MessageSplitter) MaxLength() int {
	return s.maxLength
}

// Returns the ordered chunks for text. Breaks happen at the last space that still fits,
// and that single space is dropped. Chunks may be empty when the text has runs of
// spaces; senders skip those. Tokens longer than the maximum get cut hard at
// exactly the maximum, in which case nothing is dropped.
func (s *MessageSplitter) FitToMaxLength(text string) []string {
	rest := []rune(text)
	if len(rest) <= s.maxLength {
		return []string{text}
	}
	var chunks []string
	for len(rest) > s.maxLength {
		// a space directly after the window still allows a clean break. A space at index
		// 0 (left over from a run of spaces) gives an empty chunk, which keeps the
		// rejoined text intact.
		cut := -1
		for i := s.maxLength; i >= 0; i-- {
			if rest[i] == ' ' {
				cut = i
				break
			}
		}
		if cut < 0 {
			chunks = append(chunks, string(rest[:s.maxLength]))
			rest = rest[s.maxLength:]
			continue
		}
		chunks = append(chunks, string(rest[:cut]))
		rest = rest[cut+1:]
	}
	return append(chunks, string(rest))
}
