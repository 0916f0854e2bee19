package tmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	msg, err := ParseMessage("PING :tmi.twitch.tv\r\n")
	require.NoError(err)
	assert.Equal("PING", msg.Command)
	assert.Equal("tmi.twitch.tv", msg.Trailing())
	assert.Empty(msg.Prefix)

	msg, err = ParseMessage(":tmi.twitch.tv 001 modbot :Welcome, GLHF!")
	require.NoError(err)
	assert.Equal("001", msg.Command)
	assert.Equal([]string{"modbot", "Welcome, GLHF!"}, msg.Params)

	msg, err = ParseMessage(`@badge-info=;badges=broadcaster/1;color=#0D4200;display-name=Ronni;emotes=25:0-4,12-16/1902:6-10;id=b34ccfc7-4977-403a-8a94-33c6bac34fb8;mod=0;user-id=1337;msg=a\sb\:c :ronni!ronni@ronni.tmi.twitch.tv PRIVMSG #ronni :Kappa Keepo Kappa`)
	require.NoError(err)
	assert.Equal("PRIVMSG", msg.Command)
	assert.Equal("ronni", msg.Nick())
	assert.Equal([]string{"#ronni", "Kappa Keepo Kappa"}, msg.Params)
	assert.Equal("#0D4200", msg.Tags["color"])
	assert.Equal("", msg.Tags["badge-info"])
	assert.Equal("a b;c", msg.Tags["msg"])

	_, err = ParseMessage("")
	assert.ErrorIs(err, ErrEmptyMessage)
	_, err = ParseMessage("@a=b")
	assert.Error(err)
	_, err = ParseMessage(":prefix.only")
	assert.Error(err)
}

func TestPrivateMessageTranslation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	msg, err := ParseMessage(`@badges=broadcaster/1,subscriber/0;color=#0D4200;display-name=Ronni;emotes=25:0-4,12-16/1902:6-10;id=abc-123;mod=0;user-id=1337 :ronni!ronni@ronni.tmi.twitch.tv PRIVMSG #Ronni :Kappa Keepo Kappa`)
	require.NoError(err)
	pm := newPrivateMessage(msg)
	assert.Equal("abc-123", pm.ID)
	assert.Equal("Ronni", pm.Channel)
	assert.Equal("1337", pm.UserID)
	assert.Equal("ronni", pm.Login)
	assert.Equal("Ronni", pm.DisplayName)
	assert.Equal("#0D4200", pm.Color)
	assert.True(pm.IsBroadcaster)
	assert.False(pm.IsModerator)
	assert.False(pm.IsAction)
	assert.Equal([]Emote{
		{ID: "25", Name: "Kappa", Start: 0, End: 4},
		{ID: "1902", Name: "Keepo", Start: 6, End: 10},
		{ID: "25", Name: "Kappa", Start: 12, End: 16},
	}, pm.Emotes)

	msg, err = ParseMessage("@mod=1;user-id=42 :someone!someone@someone.tmi.twitch.tv PRIVMSG #chan :\x01ACTION waves\x01")
	require.NoError(err)
	pm = newPrivateMessage(msg)
	assert.True(pm.IsAction)
	assert.True(pm.IsModerator)
	assert.Equal("waves", pm.Text)
	assert.Equal("someone", pm.DisplayName)
	assert.Empty(pm.Emotes)
}

func TestWhisperTranslation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	msg, err := ParseMessage("@color=;display-name=Foo;user-id=99 :foo!foo@foo.tmi.twitch.tv WHISPER modbot :!balance")
	require.NoError(err)
	wm := newWhisperMessage(msg)
	assert.Equal("99", wm.UserID)
	assert.Equal("foo", wm.Login)
	assert.Equal("Foo", wm.DisplayName)
	assert.Equal("", wm.Color)
	assert.Equal("!balance", wm.Text)
}

func TestParseEmotesSkipsGarbage(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(parseEmotes("", "text"))
	assert.Empty(parseEmotes("25:0-99", "short"))
	assert.Empty(parseEmotes("25:x-1,3", "short"))
	assert.Equal([]Emote{{ID: "1", Name: "ä", Start: 1, End: 1}}, parseEmotes("1:1-1", "öäü"))
}
