package chat

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitterShortText(t *testing.T) {
	assert := assert.New(t)
	s := NewMessageSplitter(10)

	assert.Equal([]string{""}, s.FitToMaxLength(""))
	assert.Equal([]string{"hello"}, s.FitToMaxLength("hello"))
	assert.Equal([]string{"0123456789"}, s.FitToMaxLength("0123456789"))
}

func TestSplitterBreaksOnSpaces(t *testing.T) {
	assert := assert.New(t)
	s := NewMessageSplitter(10)

	assert.Equal([]string{"aaa bbb", "ccc ddd"}, s.FitToMaxLength("aaa bbb ccc ddd"))
	// space right after the window
	assert.Equal([]string{"0123456789", "abc"}, s.FitToMaxLength("0123456789 abc"))
	assert.Equal([]string{"aaaa", "bbbbbbbbbb", "c"}, s.FitToMaxLength("aaaa bbbbbbbbbb c"))
}

func TestSplitterHardCut(t *testing.T) {
	assert := assert.New(t)
	s := NewMessageSplitter(RegularSendBudget)
	assert.Equal(496, RegularSendBudget)

	text := strings.Repeat("x", 600)
	chunks := s.FitToMaxLength(text)
	assert.Equal(2, len(chunks))
	assert.Equal(496, len(chunks[0]))
	assert.Equal(104, len(chunks[1]))
	assert.Equal(text, strings.Join(chunks, ""))

	// a leading space is still a break, so only the over-long token gets cut
	text = " " + strings.Repeat("y", 20)
	chunks = NewMessageSplitter(10).FitToMaxLength(text)
	assert.Equal([]string{"", "yyyyyyyyyy", "yyyyyyyyyy"}, chunks)
}

func TestSplitterRepeatedSpaces(t *testing.T) {
	assert := assert.New(t)
	s := NewMessageSplitter(5)

	assert.Equal([]string{"hello", "", "world"}, s.FitToMaxLength("hello  world"))
	assert.Equal([]string{"hello", " ", "world"}, s.FitToMaxLength("hello   world"))
	assert.Equal([]string{"ab cd", " "}, s.FitToMaxLength("ab cd  "))
	for _, text := range []string{"hello  world", "  hi  there  ", "a     b", "      "} {
		chunks := s.FitToMaxLength(text)
		assert.Equal(text, strings.Join(chunks, " "), text)
		for _, c := range chunks {
			assert.LessOrEqual(utf8.RuneCountInString(c), 5)
			// no word gets cut, every word here fits the budget
			assert.NotContains([]string{"worl", "ther", "th"}, c)
		}
	}
}

func TestSplitterCountsRunes(t *testing.T) {
	assert := assert.New(t)
	s := NewMessageSplitter(5)

	chunks := s.FitToMaxLength("ääääää öö")
	assert.Equal([]string{"äääää", "ä öö"}, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(utf8.RuneCountInString(c), 5)
	}
}

func TestSplitterRoundTrip(t *testing.T) {
	assert := assert.New(t)
	rng := rand.New(rand.NewSource(42))
	words := []string{"a", "hi", "kappa", "PogChamp", "ünïcödé", "x"}

	for _, max := range []int{8, 13, RegularSendBudget, WhisperSendBudget} {
		s := NewMessageSplitter(max)
		for i := 0; i < 200; i++ {
			// words never exceed the budget, so every break is on a space
			n := rng.Intn(300)
			parts := make([]string, n)
			for j := range parts {
				parts[j] = words[rng.Intn(len(words))]
			}
			// runs of spaces, plus leading and trailing ones
			seps := []string{" ", " ", " ", "  ", "   "}
			var sb strings.Builder
			if rng.Intn(4) == 0 {
				sb.WriteString(strings.Repeat(" ", 1+rng.Intn(3)))
			}
			for j, p := range parts {
				if j > 0 {
					sb.WriteString(seps[rng.Intn(len(seps))])
				}
				sb.WriteString(p)
			}
			if rng.Intn(4) == 0 {
				sb.WriteString(strings.Repeat(" ", 1+rng.Intn(3)))
			}
			text := sb.String()
			chunks := s.FitToMaxLength(text)
			assert.Equal(text, strings.Join(chunks, " "))
			for _, c := range chunks {
				assert.LessOrEqual(utf8.RuneCountInString(c), max)
			}
		}
	}
}

func TestSendBudgets(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(496, RegularSendBudget)
	assert.Equal(500-len("/w ")-25-len(" "), WhisperSendBudget)
}
