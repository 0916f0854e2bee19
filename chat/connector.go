package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tppcore/modbot/chat/tmi"
	"github.com/tppcore/modbot/models"
)

var ErrAlreadyConnected = errors.New("can only ever connect once per chat connector")

// The raw chat connection a Connector drives. Implemented by *tmi.Client.
type Transport interface {
	Reconnector
	Connect(ctx context.Context) error
	Close() error
	Say(ctx context.Context, channel, text string) error
	Whisper(ctx context.Context, user, text string) error
	OnPrivateMessage(fn func(tmi.PrivateMessage))
	OnWhisper(fn func(tmi.WhisperMessage))
}

var _ Transport = (*tmi.Client)(nil)

// Records (upserts) a chat user on every observed message.
type UserRecorder interface {
	RecordUser(ctx context.Context, info models.UserInfo) (models.User, error)
}

// Receives every inbound message. Called from a goroutine per inbound event, so
// subscribers may run concurrently with each other.
type Subscriber func(ctx context.Context, msg Message)

type Config struct {
	Channel              string
	Suppressions         []SuppressionType
	SuppressionOverrides []string
}

// Owns a single chat connection: translates inbound events into Messages, sends
// outbound messages and whispers, and performs moderation actions.
type Connector struct {
	Logger *slog.Logger
	// defaults to time.Now
	Now func() time.Time

	transport       Transport
	users           UserRecorder
	channel         string
	suppression     *Suppression
	regularSplitter *MessageSplitter
	whisperSplitter *MessageSplitter

	subMu       sync.RWMutex
	subscribers []Subscriber

	mu             sync.Mutex
	connected      bool
	stopMonitor    context.CancelFunc
	monitorDone    chan struct{}
	handlerCtx     context.Context
	cancelHandlers context.CancelFunc

	// guards handlers.Add against the Wait in Close. Separate from mu, since inbound
	// events can arrive while Connect holds mu.
	handlerMu sync.Mutex
	closing   bool
	handlers  sync.WaitGroup
}

func NewConnector(transport Transport, users UserRecorder, config Config) *Connector {
	hctx, cancel := context.WithCancel(context.Background())
	return &Connector{
		Logger:          slog.Default().With("system", "chat"),
		Now:             time.Now,
		transport:       transport,
		users:           users,
		channel:         strings.ToLower(strings.TrimPrefix(config.Channel, "#")),
		suppression:     NewSuppression(config.Suppressions, config.SuppressionOverrides),
		regularSplitter: NewMessageSplitter(RegularSendBudget),
		whisperSplitter: NewMessageSplitter(WhisperSendBudget),
		handlerCtx:      hctx,
		cancelHandlers:  cancel,
	}
}

func (c *Connector) Subscribe(fn Subscriber) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Registers inbound handlers, connects, and starts the connection monitor. May only be
// called once; any further call returns ErrAlreadyConnected. A failed initial connect is
// not returned, the monitor keeps retrying it.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return ErrAlreadyConnected
	}
	c.connected = true

	c.transport.OnPrivateMessage(c.privateMessageReceived)
	c.transport.OnWhisper(c.whisperReceived)
	if err := c.transport.Connect(ctx); err != nil {
		c.Logger.Error("initial chat connect failed, leaving it to the connection monitor", "err", err)
	}

	mctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	monitor := &Monitor{Conn: c.transport, Logger: c.Logger}
	go func() {
		defer close(done)
		monitor.Run(mctx)
	}()
	c.stopMonitor = cancel
	c.monitorDone = done
	return nil
}

// Stops the monitor, disconnects and unregisters the inbound handlers. The monitor is
// always stopped, even if disconnecting fails.
func (c *Connector) Close() error {
	c.mu.Lock()
	connected := c.connected
	stop, done := c.stopMonitor, c.monitorDone
	c.mu.Unlock()

	var err error
	if connected {
		stop()
		<-done
		err = c.transport.Close()
	}
	c.transport.OnPrivateMessage(nil)
	c.transport.OnWhisper(nil)
	// a read loop may still hold a handler it fetched before unregistering
	c.handlerMu.Lock()
	c.closing = true
	c.handlerMu.Unlock()
	c.cancelHandlers()
	c.handlers.Wait()
	c.Logger.Debug("chat connector is now fully shut down")
	return err
}

func (c *Connector) SendMessage(ctx context.Context, text string) error {
	if c.suppression.Suppressed(SuppressMessage, c.channel) {
		outboundSuppressed.WithLabelValues("message").Inc()
		c.Logger.Debug("(suppressed) outbound message", "channel", c.channel, "text", text)
		return nil
	}
	c.Logger.Debug("outbound message", "channel", c.channel, "text", text)
	for _, part := range c.regularSplitter.FitToMaxLength(text) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if err := c.transport.Say(ctx, c.channel, actionPrefix+part); err != nil {
			return fmt.Errorf("sending chat message: %w", err)
		}
		outboundChunks.WithLabelValues("message").Inc()
	}
	return nil
}

func (c *Connector) SendWhisper(ctx context.Context, target models.User, text string) error {
	if c.suppression.Suppressed(SuppressWhisper, target.SimpleName) {
		outboundSuppressed.WithLabelValues("whisper").Inc()
		c.Logger.Debug("(suppressed) outbound whisper", "target", target.SimpleName, "text", text)
		return nil
	}
	c.Logger.Debug("outbound whisper", "target", target.SimpleName, "text", text)
	for _, part := range c.whisperSplitter.FitToMaxLength(text) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if err := c.transport.Whisper(ctx, target.SimpleName, part); err != nil {
			return fmt.Errorf("sending whisper: %w", err)
		}
		outboundChunks.WithLabelValues("whisper").Inc()
	}
	return nil
}

func (c *Connector) DeleteMessage(ctx context.Context, messageID string) error {
	outboundChunks.WithLabelValues("delete").Inc()
	return c.transport.Say(ctx, c.channel, "/delete "+messageID)
}

// Times out the user for the given duration, rounded down to whole seconds.
func (c *Connector) Timeout(ctx context.Context, user models.User, reason string, duration time.Duration) error {
	if reason == "" {
		reason = "no timeout reason was given"
	}
	secs := int64(duration / time.Second)
	outboundChunks.WithLabelValues("timeout").Inc()
	return c.transport.Say(ctx, c.channel, fmt.Sprintf("/timeout %s %d %s", user.SimpleName, secs, reason))
}

func (c *Connector) privateMessageReceived(pm tmi.PrivateMessage) {
	c.dispatch(func(ctx context.Context) {
		c.Logger.Debug("inbound message", "channel", pm.Channel, "user", pm.Login, "text", pm.Text)
		user, err := c.users.RecordUser(ctx, c.userInfo(pm.UserID, pm.DisplayName, pm.Login, pm.Color))
		if err != nil {
			c.Logger.Error("failed to record chat user", "err", err, "userID", pm.UserID)
			return
		}
		inboundEvents.WithLabelValues(SourceChat.String()).Inc()
		c.publish(ctx, Message{
			User:   user,
			Text:   pm.Text,
			Source: SourceChat,
			Details: Details{
				MessageID: pm.ID,
				IsAction:  pm.IsAction,
				IsStaff:   pm.IsBroadcaster || pm.IsModerator,
				Emotes:    convertEmotes(pm.Emotes),
			},
		})
	})
}

func (c *Connector) whisperReceived(wm tmi.WhisperMessage) {
	c.dispatch(func(ctx context.Context) {
		c.Logger.Debug("inbound whisper", "user", wm.Login, "text", wm.Text)
		user, err := c.users.RecordUser(ctx, c.userInfo(wm.UserID, wm.DisplayName, wm.Login, wm.Color))
		if err != nil {
			c.Logger.Error("failed to record whisper user", "err", err, "userID", wm.UserID)
			return
		}
		inboundEvents.WithLabelValues(SourceWhisper.String()).Inc()
		c.publish(ctx, Message{
			User:   user,
			Text:   wm.Text,
			Source: SourceWhisper,
			Details: Details{
				Emotes: convertEmotes(wm.Emotes),
			},
		})
	})
}

// runs fn off the transport's read goroutine, tracked so Close can wait for it
func (c *Connector) dispatch(fn func(ctx context.Context)) {
	c.handlerMu.Lock()
	if c.closing {
		c.handlerMu.Unlock()
		return
	}
	c.handlers.Add(1)
	c.handlerMu.Unlock()
	go func() {
		defer c.handlers.Done()
		fn(c.handlerCtx)
	}()
}

func (c *Connector) publish(ctx context.Context, msg Message) {
	c.subMu.RLock()
	subs := c.subscribers
	c.subMu.RUnlock()
	for _, fn := range subs {
		fn(ctx, msg)
	}
}

func (c *Connector) userInfo(id, displayName, login, color string) models.UserInfo {
	var col *string
	if trimmed := strings.TrimLeft(color, "#"); trimmed != "" {
		col = &trimmed
	}
	return models.UserInfo{
		ID:          id,
		DisplayName: displayName,
		SimpleName:  login,
		Color:       col,
		FromMessage: true,
		UpdatedAt:   c.Now(),
	}
}

func convertEmotes(in []tmi.Emote) []Emote {
	if len(in) == 0 {
		return nil
	}
	out := make([]Emote, len(in))
	for i, e := range in {
		out[i] = Emote{ID: e.ID, Name: e.Name, Start: e.Start, End: e.End}
	}
	return out
}
