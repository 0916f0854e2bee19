package helpers

import (
	"testing"

	"github.com/tppcore/modbot/automod/keyword"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeText(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		s   string
		out []string
	}{
		{
			s:   "1 'Two' three!",
			out: []string{"1", "two", "three"},
		},
		{
			s:   "  foo1;bar2,baz3...",
			out: []string{"foo1", "bar2", "baz3"},
		},
		{
			s:   "https://example.com/index.html",
			out: []string{"https", "example", "com", "index", "html"},
		},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, keyword.TokenizeText(fix.s))
	}
}

func TestExtractURL(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		s   string
		out []string
	}{
		{
			s:   "this is a description with example.com mentioned in the middle",
			out: []string{"example.com"},
		},
		{
			s:   "this is another example with https://en.wikipedia.org/index.html: and archive.org, and https://eff.org/... and twitch.tv.",
			out: []string{"https://en.wikipedia.org/index.html", "archive.org", "https://eff.org/", "twitch.tv"},
		},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, ExtractTextURLs(fix.s))
	}
}

func TestURLDomain(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("example.com", URLDomain("https://www.Example.com/path?q=1"))
	assert.Equal("clips.twitch.tv", URLDomain("clips.twitch.tv/SomeClip"))
	assert.Equal("", URLDomain("https://"))
}

func TestParentDomains(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"a.b.example.com", "b.example.com", "example.com"}, ParentDomains("a.b.example.com"))
	assert.Equal([]string{"example.com"}, ParentDomains("example.com"))
	assert.Equal([]string{"localhost"}, ParentDomains("localhost"))
}

func TestIsOnlyURL(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsOnlyURL("https://example.com/free-followers"))
	assert.True(IsOnlyURL("  example.com  "))
	assert.False(IsOnlyURL("check out example.com"))
	assert.False(IsOnlyURL("hello"))
	assert.False(IsOnlyURL(""))
}

func TestHashOfString(t *testing.T) {
	assert := assert.New(t)

	// hashing function should be consistent over time
	assert.Equal("4e6f69c0e3d10992", HashOfString("dummy-value"))
}

func TestDedupeStrings(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"a", "b"}, DedupeStrings([]string{"a", "b", "a"}))
	assert.Nil(DedupeStrings(nil))
}
