package tmi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const DefaultHost = "wss://irc-ws.chat.twitch.tv:443"

var (
	ErrLoginFailed    = errors.New("chat server rejected login")
	ErrAlreadyOpen    = errors.New("chat client already has an open connection")
	ErrConnectionLost = errors.New("chat connection closed during login")
)

// how long to wait for the server welcome after sending credentials
var loginTimeout = 15 * time.Second

// Client for the Twitch Messaging Interface over websocket. Joins a single channel.
//
// Outbound lines are queued and written by a per-connection writer goroutine, so they
// survive a reconnect. Inbound events are delivered on the connection's read goroutine;
// handlers should not block.
type Client struct {
	Host       string
	Username   string
	OAuthToken string
	Channel    string
	Logger     *slog.Logger
	// limits outbound PRIVMSG lines; nil means no limit
	Limiter *rate.Limiter

	out       chan string
	connected atomic.Bool

	mu        sync.Mutex
	sess      *session
	onPrivmsg func(PrivateMessage)
	onWhisper func(WhisperMessage)
}

type session struct {
	conn      *websocket.Conn
	ctx       context.Context
	cancel    context.CancelFunc
	ctrl      chan string
	welcome   chan error
	closeOnce sync.Once
	closeErr  error
}

func NewClient(host, username, oauthToken, channel string) *Client {
	if host == "" {
		host = DefaultHost
	}
	return &Client{
		Host:       host,
		Username:   username,
		OAuthToken: oauthToken,
		Channel:    normalizeChannel(channel),
		Logger:     slog.Default().With("system", "tmi"),
		// Twitch allows 20 messages per 30 seconds for regular accounts
		Limiter: rate.NewLimiter(rate.Every(30*time.Second/20), 1),
		out:     make(chan string, 256),
	}
}

func normalizeChannel(channel string) string {
	return strings.ToLower(strings.TrimPrefix(channel, "#"))
}

func (c *Client) OnPrivateMessage(fn func(PrivateMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPrivmsg = fn
}

func (c *Client) OnWhisper(fn func(WhisperMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onWhisper = fn
}

func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Dials the server, logs in and joins the configured channel. Returns once the server
// has accepted the login.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.mu.Unlock()

	hdr := http.Header{
		"User-Agent": []string{fmt.Sprintf("modbot/%s", versioninfo.Short())},
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.Host, hdr)
	if err != nil {
		return fmt.Errorf("dialing chat server: %w", err)
	}

	token := c.OAuthToken
	if !strings.HasPrefix(token, "oauth:") {
		token = "oauth:" + token
	}
	login := []string{
		"CAP REQ :twitch.tv/tags twitch.tv/commands",
		"PASS " + token,
		"NICK " + strings.ToLower(c.Username),
	}
	for _, line := range login {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line+"\r\n")); err != nil {
			_ = conn.Close()
			return fmt.Errorf("sending login: %w", err)
		}
	}

	sctx, cancel := context.WithCancel(context.Background())
	s := &session{
		conn:    conn,
		ctx:     sctx,
		cancel:  cancel,
		ctrl:    make(chan string, 16),
		welcome: make(chan error, 1),
	}
	c.mu.Lock()
	c.sess = s
	c.mu.Unlock()
	go c.readLoop(s)

	lctx, lcancel := context.WithTimeout(ctx, loginTimeout)
	defer lcancel()
	select {
	case err := <-s.welcome:
		if err != nil {
			c.closeSession(s)
			return err
		}
	case <-s.ctx.Done():
		return ErrConnectionLost
	case <-lctx.Done():
		c.closeSession(s)
		return fmt.Errorf("waiting for chat login: %w", lctx.Err())
	}

	c.mu.Lock()
	if c.sess != s {
		c.mu.Unlock()
		return ErrConnectionLost
	}
	c.connected.Store(true)
	c.mu.Unlock()

	s.ctrl <- "JOIN #" + c.Channel
	go c.writeLoop(s)
	c.Logger.Info("connected to chat", "host", c.Host, "channel", c.Channel)
	return nil
}

// Drops the current connection, if any, and connects again.
func (c *Client) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	s := c.sess
	c.mu.Unlock()
	if s != nil {
		c.closeSession(s)
	}
	return c.Connect(ctx)
}

func (c *Client) Close() error {
	c.mu.Lock()
	s := c.sess
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	return c.closeSession(s)
}

func (c *Client) closeSession(s *session) error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.conn.Close()
	})
	c.mu.Lock()
	if c.sess == s {
		c.sess = nil
		c.connected.Store(false)
	}
	c.mu.Unlock()
	return s.closeErr
}

// Queues a chat message to the given channel. Returns once the line is queued, not once
// it is written.
func (c *Client) Say(ctx context.Context, channel, text string) error {
	return c.enqueue(ctx, "PRIVMSG #"+normalizeChannel(channel)+" :"+text)
}

// Queues a whisper to the given user login.
func (c *Client) Whisper(ctx context.Context, user, text string) error {
	return c.enqueue(ctx, "PRIVMSG #jtv :/w "+strings.ToLower(user)+" "+text)
}

func (c *Client) enqueue(ctx context.Context, line string) error {
	// IRC lines can't carry line breaks
	line = strings.NewReplacer("\r", " ", "\n", " ").Replace(line)
	select {
	case c.out <- line:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) readLoop(s *session) {
	defer c.closeSession(s)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() == nil {
				c.Logger.Warn("chat connection read failed", "err", err)
			}
			return
		}
		for _, line := range strings.Split(string(data), "\r\n") {
			if line == "" {
				continue
			}
			msg, err := ParseMessage(line)
			if err != nil {
				c.Logger.Warn("failed to parse chat line", "err", err, "line", line)
				continue
			}
			c.handle(s, msg)
		}
	}
}

func (c *Client) handle(s *session, msg *Message) {
	switch msg.Command {
	case "PING":
		select {
		case s.ctrl <- "PONG :" + msg.Trailing():
		default:
			c.Logger.Warn("control queue full, dropping PONG")
		}
	case "001":
		s.signalWelcome(nil)
	case "NOTICE":
		text := msg.Trailing()
		if strings.Contains(text, "Login authentication failed") || strings.Contains(text, "Improperly formatted auth") {
			s.signalWelcome(fmt.Errorf("%w: %s", ErrLoginFailed, text))
			return
		}
		c.Logger.Info("chat notice", "msgID", msg.Tags["msg-id"], "text", text)
	case "RECONNECT":
		c.Logger.Info("chat server requested reconnect")
		c.closeSession(s)
	case "PRIVMSG":
		c.mu.Lock()
		h := c.onPrivmsg
		c.mu.Unlock()
		if h != nil {
			h(newPrivateMessage(msg))
		}
	case "WHISPER":
		c.mu.Lock()
		h := c.onWhisper
		c.mu.Unlock()
		if h != nil {
			h(newWhisperMessage(msg))
		}
	}
}

func (s *session) signalWelcome(err error) {
	select {
	case s.welcome <- err:
	default:
	}
}

func (c *Client) writeLoop(s *session) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case line := <-s.ctrl:
			if err := s.write(line); err != nil {
				c.Logger.Warn("chat connection write failed", "err", err)
				c.closeSession(s)
				return
			}
		case line := <-c.out:
			if c.Limiter != nil {
				if err := c.Limiter.Wait(s.ctx); err != nil {
					c.Logger.Warn("dropping outbound chat line, connection closed", "line", line)
					return
				}
			}
			if err := s.write(line); err != nil {
				c.Logger.Warn("chat connection write failed", "err", err, "line", line)
				c.closeSession(s)
				return
			}
		}
	}
}

func (s *session) write(line string) error {
	return s.conn.WriteMessage(websocket.TextMessage, []byte(line+"\r\n"))
}
