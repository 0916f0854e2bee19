package chat

import (
	"context"
	"log/slog"
	"time"
)

const (
	MinReconnectDelay = 3 * time.Second
	MaxReconnectDelay = 10 * time.Minute
)

// The parts of a connection the monitor needs to supervise.
type Reconnector interface {
	IsConnected() bool
	Reconnect(ctx context.Context) error
}

// Periodically checks the connection and reconnects if needed. The transport's own
// disconnect signalling is not reliable enough to depend on, so the connection gets
// polled, more rarely the longer it is up and backing off while it is down.
type Monitor struct {
	Conn   Reconnector
	Logger *slog.Logger
}

// Returns the delay to use after observing the given connectivity state, clamped to
// [MinReconnectDelay, MaxReconnectDelay].
func NextDelay(prev time.Duration, connected bool) time.Duration {
	var d time.Duration
	if connected {
		d = prev / 2
	} else {
		d = prev * 2
	}
	if d > MaxReconnectDelay {
		d = MaxReconnectDelay
	}
	if d < MinReconnectDelay {
		d = MinReconnectDelay
	}
	return d
}

// Runs until the context is cancelled. Reconnect failures get logged and retried; they
// never end the loop.
func (m *Monitor) Run(ctx context.Context) {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := MinReconnectDelay
	for {
		connected := m.Conn.IsConnected()
		delay = NextDelay(delay, connected)

		if !connected {
			logger.Error("not connected to chat, trying to reconnect")
			reconnectAttempts.Inc()
			if err := m.Conn.Reconnect(ctx); err != nil {
				reconnectFailures.Inc()
				logger.Error("failed to reconnect", "err", err, "retry", delay)
			}
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}
