package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/tppcore/modbot/chat/tmi"
	"github.com/tppcore/modbot/models"
)

// In-memory Transport for tests. Records every outbound line as "say <channel> <text>"
// or "whisper <user> <text>". Intentionally exported, for use in other packages.
type MockTransport struct {
	mu         sync.Mutex
	Connected  bool
	Sent       []string
	Reconnects int
	// returned from Reconnect / Close when set
	ReconnectErr error
	CloseErr     error

	onPrivmsg func(tmi.PrivateMessage)
	onWhisper func(tmi.WhisperMessage)
}

var _ Transport = (*MockTransport)(nil)

func (t *MockTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Connected
}

func (t *MockTransport) SetConnected(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Connected = v
}

func (t *MockTransport) Connect(ctx context.Context) error {
	t.SetConnected(true)
	return nil
}

func (t *MockTransport) Reconnect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Reconnects++
	if t.ReconnectErr != nil {
		return t.ReconnectErr
	}
	t.Connected = true
	return nil
}

func (t *MockTransport) Close() error {
	t.SetConnected(false)
	return t.CloseErr
}

func (t *MockTransport) Say(ctx context.Context, channel, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Sent = append(t.Sent, "say "+channel+" "+text)
	return nil
}

func (t *MockTransport) Whisper(ctx context.Context, user, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Sent = append(t.Sent, "whisper "+user+" "+text)
	return nil
}

func (t *MockTransport) SentLines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.Sent...)
}

func (t *MockTransport) ReconnectCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Reconnects
}

func (t *MockTransport) OnPrivateMessage(fn func(tmi.PrivateMessage)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPrivmsg = fn
}

func (t *MockTransport) OnWhisper(fn func(tmi.WhisperMessage)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onWhisper = fn
}

var ErrNoHandler = errors.New("no handler registered")

// Delivers a chat message as if it was received from the server.
func (t *MockTransport) Receive(pm tmi.PrivateMessage) error {
	t.mu.Lock()
	h := t.onPrivmsg
	t.mu.Unlock()
	if h == nil {
		return ErrNoHandler
	}
	h(pm)
	return nil
}

func (t *MockTransport) ReceiveWhisper(wm tmi.WhisperMessage) error {
	t.mu.Lock()
	h := t.onWhisper
	t.mu.Unlock()
	if h == nil {
		return ErrNoHandler
	}
	h(wm)
	return nil
}

// UserRecorder which turns every observation straight into a User, without storage.
type MockUserRecorder struct{}

func (MockUserRecorder) RecordUser(ctx context.Context, info models.UserInfo) (models.User, error) {
	return models.User{
		ID:            info.ID,
		SimpleName:    info.SimpleName,
		DisplayName:   info.DisplayName,
		Color:         info.Color,
		FirstActiveAt: info.UpdatedAt,
		LastUpdatedAt: info.UpdatedAt,
	}, nil
}
