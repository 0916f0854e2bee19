package automod

import (
	"context"
	"sync"
	"time"

	"github.com/tppcore/modbot/models"
)

// Records executor calls instead of performing them. Intended for tests.
type MockExecutor struct {
	mu       sync.Mutex
	Deleted  []string
	Timeouts []MockTimeout
}

type MockTimeout struct {
	User     models.User
	Reason   string
	Duration time.Duration
}

var _ Executor = (*MockExecutor)(nil)

func (m *MockExecutor) DeleteMessage(ctx context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, messageID)
	return nil
}

func (m *MockExecutor) Timeout(ctx context.Context, user models.User, reason string, duration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Timeouts = append(m.Timeouts, MockTimeout{User: user, Reason: reason, Duration: duration})
	return nil
}

// In-memory ModLog. Intended for tests.
type MockModLog struct {
	mu      sync.Mutex
	Entries []models.ModLog
	// when set, returned from every call
	Err error
}

var _ ModLog = (*MockModLog)(nil)

func (m *MockModLog) LogModAction(ctx context.Context, user models.User, reason, rule string, timestamp time.Time) (*models.ModLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	entry := models.ModLog{
		ID:        uint64(len(m.Entries) + 1),
		UserID:    user.ID,
		Reason:    reason,
		Rule:      rule,
		Timestamp: timestamp,
	}
	m.Entries = append(m.Entries, entry)
	return &entry, nil
}

func (m *MockModLog) CountRecentBans(ctx context.Context, user models.User, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for _, e := range m.Entries {
		if e.UserID == user.ID && !e.Timestamp.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

// Engine with mock collaborators, default config and a fixed clock. Intentionally
// exported, for use in other packages.
func EngineTestFixture(rules ...Rule) (*Engine, *MockExecutor, *MockModLog) {
	exec := &MockExecutor{}
	modlog := &MockModLog{}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	eng := &Engine{
		Rules:    rules,
		Executor: exec,
		ModLog:   modlog,
		Config:   DefaultConfig(),
		Now:      func() time.Time { return now },
	}
	return eng, exec, modlog
}
