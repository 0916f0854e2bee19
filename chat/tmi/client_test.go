package tmi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimal fake chat server: accepts the login, then forwards every line it receives
// on lines, and writes every line sent on push to the client.
func fakeServer(t *testing.T, welcome string) (*httptest.Server, chan string, chan string) {
	lines := make(chan string, 64)
	push := make(chan string, 64)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		done := make(chan struct{})
		defer close(done)
		var wmu sync.Mutex
		write := func(l string) error {
			wmu.Lock()
			defer wmu.Unlock()
			return conn.WriteMessage(websocket.TextMessage, []byte(l+"\r\n"))
		}
		go func() {
			for {
				select {
				case <-done:
					return
				case l := <-push:
					if err := write(l); err != nil {
						return
					}
				}
			}
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			for _, l := range strings.Split(string(data), "\r\n") {
				if l == "" {
					continue
				}
				if strings.HasPrefix(l, "NICK ") {
					_ = write(welcome)
				}
				lines <- l
			}
		}
	}))
	return srv, lines, push
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func nextLine(t *testing.T, lines chan string) string {
	select {
	case l := <-lines:
		return l
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for line")
		return ""
	}
}

func TestClientLoginAndSend(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	srv, lines, push := fakeServer(t, ":tmi.twitch.tv 001 modbot :Welcome, GLHF!")
	defer srv.Close()

	c := NewClient(wsURL(srv), "ModBot", "secret", "#SomeChannel")
	c.Limiter = nil
	received := make(chan PrivateMessage, 1)
	c.OnPrivateMessage(func(pm PrivateMessage) { received <- pm })

	require.NoError(c.Connect(ctx))
	assert.True(c.IsConnected())
	assert.ErrorIs(c.Connect(ctx), ErrAlreadyOpen)

	assert.Equal("CAP REQ :twitch.tv/tags twitch.tv/commands", nextLine(t, lines))
	assert.Equal("PASS oauth:secret", nextLine(t, lines))
	assert.Equal("NICK modbot", nextLine(t, lines))
	assert.Equal("JOIN #somechannel", nextLine(t, lines))

	push <- "PING :tmi.twitch.tv"
	assert.Equal("PONG :tmi.twitch.tv", nextLine(t, lines))

	push <- "@id=m1;user-id=5;display-name=Alice :alice!alice@alice.tmi.twitch.tv PRIVMSG #somechannel :hello there"
	select {
	case pm := <-received:
		assert.Equal("m1", pm.ID)
		assert.Equal("hello there", pm.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}

	require.NoError(c.Say(ctx, "SomeChannel", "/me line one\nline two"))
	assert.Equal("PRIVMSG #somechannel :/me line one line two", nextLine(t, lines))
	require.NoError(c.Whisper(ctx, "Alice", "psst"))
	assert.Equal("PRIVMSG #jtv :/w alice psst", nextLine(t, lines))

	assert.NoError(c.Close())
	assert.False(c.IsConnected())
}

func TestClientLoginRejected(t *testing.T) {
	assert := assert.New(t)

	srv, _, _ := fakeServer(t, ":tmi.twitch.tv NOTICE * :Login authentication failed")
	defer srv.Close()

	c := NewClient(wsURL(srv), "modbot", "oauth:wrong", "chan")
	err := c.Connect(context.Background())
	assert.ErrorIs(err, ErrLoginFailed)
	assert.False(c.IsConnected())
}

func TestClientReconnectAfterServerDrop(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	srv, _, push := fakeServer(t, ":tmi.twitch.tv 001 modbot :Welcome, GLHF!")
	defer srv.Close()

	c := NewClient(wsURL(srv), "modbot", "x", "chan")
	require.NoError(c.Connect(ctx))

	push <- ":tmi.twitch.tv RECONNECT"
	assert.Eventually(func() bool { return !c.IsConnected() }, 5*time.Second, 10*time.Millisecond)

	require.NoError(c.Reconnect(ctx))
	assert.True(c.IsConnected())
	assert.NoError(c.Close())
}
