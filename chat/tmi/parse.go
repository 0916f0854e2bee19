package tmi

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

var ErrEmptyMessage = errors.New("empty IRC message")

// A single IRC line, including IRCv3 message tags.
type Message struct {
	Tags    map[string]string
	Prefix  string
	Command string
	Params  []string
}

var tagValueReplacer = strings.NewReplacer(`\:`, ";", `\s`, " ", `\\`, `\`, `\r`, "\r", `\n`, "\n")

// Parses one IRC line (without the trailing CRLF).
func ParseMessage(line string) (*Message, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, ErrEmptyMessage
	}
	msg := &Message{Tags: map[string]string{}}

	if line[0] == '@' {
		raw, rest, ok := strings.Cut(line[1:], " ")
		if !ok {
			return nil, errors.New("IRC message has tags but no command")
		}
		for _, kv := range strings.Split(raw, ";") {
			k, v, _ := strings.Cut(kv, "=")
			msg.Tags[k] = tagValueReplacer.Replace(v)
		}
		line = strings.TrimLeft(rest, " ")
	}

	if strings.HasPrefix(line, ":") {
		prefix, rest, ok := strings.Cut(line[1:], " ")
		if !ok {
			return nil, errors.New("IRC message has prefix but no command")
		}
		msg.Prefix = prefix
		line = strings.TrimLeft(rest, " ")
	}

	for line != "" {
		if line[0] == ':' {
			msg.Params = append(msg.Params, line[1:])
			break
		}
		param, rest, _ := strings.Cut(line, " ")
		if msg.Command == "" {
			msg.Command = strings.ToUpper(param)
		} else {
			msg.Params = append(msg.Params, param)
		}
		line = strings.TrimLeft(rest, " ")
	}
	if msg.Command == "" {
		return nil, errors.New("IRC message without command")
	}
	return msg, nil
}

// Nickname part of the prefix, eg "foo" for "foo!foo@foo.tmi.twitch.tv".
func (m *Message) Nick() string {
	nick, _, _ := strings.Cut(m.Prefix, "!")
	return nick
}

// Last parameter, which is the free-form text for PRIVMSG and WHISPER.
func (m *Message) Trailing() string {
	if len(m.Params) == 0 {
		return ""
	}
	return m.Params[len(m.Params)-1]
}

type Emote struct {
	ID    string
	Name  string
	Start int
	End   int
}

// Parses the "emotes" tag, eg "25:0-4,12-16/1902:6-10", resolving names from the text.
// Offsets are rune offsets into text. Malformed entries are skipped.
func parseEmotes(tag, text string) []Emote {
	if tag == "" {
		return nil
	}
	runes := []rune(text)
	var out []Emote
	for _, group := range strings.Split(tag, "/") {
		id, ranges, ok := strings.Cut(group, ":")
		if !ok {
			continue
		}
		for _, r := range strings.Split(ranges, ",") {
			a, b, ok := strings.Cut(r, "-")
			if !ok {
				continue
			}
			start, err1 := strconv.Atoi(a)
			end, err2 := strconv.Atoi(b)
			if err1 != nil || err2 != nil || start < 0 || end < start || end >= len(runes) {
				continue
			}
			out = append(out, Emote{ID: id, Name: string(runes[start : end+1]), Start: start, End: end})
		}
	}
	slices.SortFunc(out, func(a, b Emote) int { return a.Start - b.Start })
	return out
}

// Parses a "badges" tag like "broadcaster/1,subscriber/12" into name → version.
func parseBadges(tag string) map[string]string {
	out := map[string]string{}
	if tag == "" {
		return out
	}
	for _, b := range strings.Split(tag, ",") {
		name, version, _ := strings.Cut(b, "/")
		if name != "" {
			out[name] = version
		}
	}
	return out
}

const (
	actionStart = "\x01ACTION "
	actionEnd   = "\x01"
)

// Strips CTCP ACTION framing ("/me" messages) and reports whether it was present.
func parseAction(text string) (string, bool) {
	if strings.HasPrefix(text, actionStart) && strings.HasSuffix(text, actionEnd) {
		return strings.TrimSuffix(strings.TrimPrefix(text, actionStart), actionEnd), true
	}
	return text, false
}
