package setstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Named sets of strings (banned domains, spam phrases, etc), used for rule configuration.
type SetStore interface {
	InSet(ctx context.Context, name, val string) (bool, error)
	// all members of a set, in no particular order
	Members(ctx context.Context, name string) ([]string, error)
}

// Values are matched case-insensitively.
type MemSetStore struct {
	mu   sync.RWMutex
	sets map[string]map[string]bool
}

var _ SetStore = (*MemSetStore)(nil)

func NewMemSetStore() *MemSetStore {
	return &MemSetStore{
		sets: make(map[string]map[string]bool),
	}
}

func (s *MemSetStore) InSet(ctx context.Context, name, val string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[name]
	if !ok {
		// NOTE: currently returns false when entire set isn't found
		return false, nil
	}
	return set[strings.ToLower(val)], nil
}

func (s *MemSetStore) Members(ctx context.Context, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.sets[name]
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out, nil
}

// Replaces the named set.
func (s *MemSetStore) Add(name string, vals ...string) {
	m := make(map[string]bool, len(vals))
	for _, val := range vals {
		m[strings.ToLower(val)] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[name] = m
}

// Loads a JSON object mapping set names to lists of values. Sets present in the file
// replace existing sets of the same name.
func (s *MemSetStore) LoadFromFileJSON(p string) error {

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var sets map[string][]string
	if err := json.Unmarshal(raw, &sets); err != nil {
		return fmt.Errorf("parsing sets file %s: %w", p, err)
	}

	for name, l := range sets {
		s.Add(name, l...)
	}
	return nil
}
