package countstore

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Process-local counters. Buckets are held in size-bounded LRUs and expire after
// bucketTTL without writes, so this is best-effort for PeriodTotal.
type MemCountStore struct {
	// defaults to time.Now
	Now func() time.Time

	mu             sync.Mutex
	counts         *expirable.LRU[string, int]
	distinctCounts *expirable.LRU[string, map[string]bool]
}

var _ CountStore = (*MemCountStore)(nil)

const (
	memCapacity  = 100_000
	memBucketTTL = 2 * time.Hour
)

func NewMemCountStore() *MemCountStore {
	return &MemCountStore{
		counts:         expirable.NewLRU[string, int](memCapacity, nil, memBucketTTL),
		distinctCounts: expirable.NewLRU[string, map[string]bool](memCapacity, nil, memBucketTTL),
	}
}

func (s *MemCountStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MemCountStore) GetCount(ctx context.Context, name, val, period string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.counts.Get(periodBucket(name, val, period, s.now()))
	return v, nil
}

func (s *MemCountStore) Increment(ctx context.Context, name, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, p := range allPeriods {
		k := periodBucket(name, val, p, now)
		v, _ := s.counts.Get(k)
		s.counts.Add(k, v+1)
	}
	return nil
}

func (s *MemCountStore) GetCountDistinct(ctx context.Context, name, bucket, period string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, _ := s.distinctCounts.Get(periodBucket(name, bucket, period, s.now()))
	return len(m), nil
}

func (s *MemCountStore) IncrementDistinct(ctx context.Context, name, bucket, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, p := range allPeriods {
		k := periodBucket(name, bucket, p, now)
		m, ok := s.distinctCounts.Get(k)
		if !ok {
			m = make(map[string]bool)
		}
		m[val] = true
		s.distinctCounts.Add(k, m)
	}
	return nil
}
