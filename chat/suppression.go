package chat

import (
	"fmt"
	"strings"
)

type SuppressionType string

const (
	SuppressMessage SuppressionType = "message"
	SuppressWhisper SuppressionType = "whisper"
)

func ParseSuppressionType(raw string) (SuppressionType, error) {
	switch t := SuppressionType(strings.ToLower(strings.TrimSpace(raw))); t {
	case SuppressMessage, SuppressWhisper:
		return t, nil
	default:
		return "", fmt.Errorf("unknown suppression type: %q", raw)
	}
}

// Operator-configured dry-run policy for outbound sends. Overrides name channels or
// users which are still sent to, compared case-insensitively.
type Suppression struct {
	types     map[SuppressionType]bool
	overrides map[string]bool
}

func NewSuppression(types []SuppressionType, overrides []string) *Suppression {
	s := &Suppression{
		types:     make(map[SuppressionType]bool, len(types)),
		overrides: make(map[string]bool, len(overrides)),
	}
	for _, t := range types {
		s.types[t] = true
	}
	for _, o := range overrides {
		s.overrides[strings.ToLower(o)] = true
	}
	return s
}

func (s *Suppression) Suppressed(t SuppressionType, target string) bool {
	return s.types[t] && !s.overrides[strings.ToLower(target)]
}
