package automod

import (
	"context"

	"github.com/tppcore/modbot/chat"
)

type ResultKind int

const (
	ResultNothing ResultKind = iota
	ResultGivePoints
	ResultDeleteMessage
	ResultTimeout
)

func (k ResultKind) String() string {
	switch k {
	case ResultNothing:
		return "nothing"
	case ResultGivePoints:
		return "points"
	case ResultDeleteMessage:
		return "delete"
	case ResultTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome of running a single rule against a message. Construct with Nothing,
// GivePoints, DeleteMessage or Timeout; the zero value is Nothing.
type Result struct {
	kind   ResultKind
	points int
	reason string
}

func Nothing() Result {
	return Result{kind: ResultNothing}
}

// Grants offense points to the message author. Points decay over time, and once enough
// accumulate the author gets timed out.
func GivePoints(n int) Result {
	return Result{kind: ResultGivePoints, points: n}
}

func DeleteMessage() Result {
	return Result{kind: ResultDeleteMessage}
}

// Times out the message author. The reason is shown to the user.
func Timeout(reason string) Result {
	return Result{kind: ResultTimeout, reason: reason}
}

func (r Result) Kind() ResultKind { return r.kind }
func (r Result) Points() int      { return r.points }
func (r Result) Reason() string   { return r.reason }

// A moderation rule. Rules may keep private state (eg, recent message history), but
// must be safe for concurrent use since messages are checked concurrently.
type Rule interface {
	// stable identifier, recorded in the moderation log
	ID() string
	Check(ctx context.Context, msg chat.Message) (Result, error)
}

type RuleFunc func(ctx context.Context, msg chat.Message) (Result, error)

type funcRule struct {
	id string
	fn RuleFunc
}

func (r funcRule) ID() string { return r.id }

func (r funcRule) Check(ctx context.Context, msg chat.Message) (Result, error) {
	return r.fn(ctx, msg)
}

// Wraps a stateless rule function.
func NewRule(id string, fn RuleFunc) Rule {
	return funcRule{id: id, fn: fn}
}
