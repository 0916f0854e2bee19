package automod

import (
	"sync"
	"time"
)

// Decaying offense point total for a single user. Decay is applied lazily on read.
type PointStore struct {
	points         float64
	updatedAt      time.Time
	decayPerSecond float64
}

func NewPointStore(now time.Time, decayPerSecond float64) *PointStore {
	return &PointStore{updatedAt: now, decayPerSecond: decayPerSecond}
}

// max(0, stored - decay * seconds since last update)
func (p *PointStore) Current(now time.Time) float64 {
	elapsed := now.Sub(p.updatedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	v := p.points - p.decayPerSecond*elapsed
	if v < 0 {
		return 0
	}
	return v
}

func (p *PointStore) Add(now time.Time, n int) {
	p.points = p.Current(now) + float64(n)
	p.updatedAt = now
}

func (p *PointStore) IsEmpty(now time.Time) bool {
	return p.Current(now) <= 0
}

// Per-user point stores, keyed by user id. Every method locks; callers never see a
// store outside the lock.
type pointTable struct {
	mu     sync.Mutex
	stores map[string]*PointStore
}

// Purges expired entries, adds n points for the user and returns the decayed total. If
// the total reaches threshold the entry is removed and spent is true.
func (t *pointTable) add(userID string, n int, now time.Time, decayPerSecond, threshold float64) (total float64, spent bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stores == nil {
		t.stores = make(map[string]*PointStore)
	}

	// clean up expired entries, so the table only holds currently-offending users
	for id, s := range t.stores {
		if s.IsEmpty(now) {
			delete(t.stores, id)
		}
	}

	store, ok := t.stores[userID]
	if !ok {
		store = NewPointStore(now, decayPerSecond)
		t.stores[userID] = store
	}
	store.Add(now, n)
	total = store.Current(now)
	if total >= threshold {
		delete(t.stores, userID)
		return total, true
	}
	return total, false
}

func (t *pointTable) current(userID string, now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.stores[userID]
	if !ok {
		return 0
	}
	return s.Current(now)
}

// Number of users currently holding points. Feeds the offending-users gauge.
func (t *pointTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stores)
}
