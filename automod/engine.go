package automod

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tppcore/modbot/chat"
	"github.com/tppcore/modbot/models"
)

// Performs moderation actions. Implemented by *chat.Connector.
type Executor interface {
	DeleteMessage(ctx context.Context, messageID string) error
	// an empty reason means no reason was given
	Timeout(ctx context.Context, user models.User, reason string, duration time.Duration) error
}

var _ Executor = (*chat.Connector)(nil)

type ModLog interface {
	LogModAction(ctx context.Context, user models.User, reason, rule string, timestamp time.Time) (*models.ModLog, error)
	CountRecentBans(ctx context.Context, user models.User, cutoff time.Time) (int64, error)
}

type Config struct {
	// number of recent timeouts before durations start escalating
	FreeTimeouts         int
	PointsDecayPerSecond float64
	// point grants below this are ignored
	MinPoints        int
	PointsForTimeout int
}

func DefaultConfig() Config {
	return Config{
		FreeTimeouts:         2,
		PointsDecayPerSecond: 1,
		MinPoints:            20,
		PointsForTimeout:     300,
	}
}

const (
	pointsTimeoutReason = "You have accumulated too many points through various methods of spam."
	timeoutReasonPrefix = "Your message was timed out for the following reason: "
)

// runtime for executing rules, tracking offense points, and performing moderation actions.
//
// Rules run in the order given. If several rules ask for a timeout, the first one (in
// rule order) is the one which gets executed and logged. Timeouts synthesized from
// accumulated points come after all rule-requested timeouts.
type Engine struct {
	Logger   *slog.Logger
	Rules    []Rule
	Executor Executor
	ModLog   ModLog
	Config   Config
	// optional, gets told about every timeout
	Notifier Notifier
	// defaults to time.Now
	Now func() time.Time

	points pointTable
}

type Action int

const (
	ActionNone Action = iota
	ActionDelete
	ActionTimeout
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionDelete:
		return "delete"
	case ActionTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome of checking a message. Only accepted messages should be processed further.
type Verdict struct {
	Accepted bool
	Action   Action
	// identifier of the rule responsible for the action
	Rule     string
	Reason   string
	Duration time.Duration
}

type ruleResult struct {
	result Result
	rule   string
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Grants points to a user. Returns a Timeout result if this pushed the user over the
// configured threshold (consuming their points), and Nothing otherwise.
func (e *Engine) ApplyPoints(user models.User, points int) Result {
	if points < e.Config.MinPoints {
		e.logger().Debug("ignoring points below minimum", "user", user.String(), "points", points, "min", e.Config.MinPoints)
		return Nothing()
	}
	pointsGranted.Add(float64(points))
	total, spent := e.points.add(user.ID, points, e.now(), e.Config.PointsDecayPerSecond, float64(e.Config.PointsForTimeout))
	offendingUsers.Set(float64(e.points.size()))
	if spent {
		e.logger().Info("user accumulated enough points for a timeout", "user", user.String(), "points", total)
		return Timeout(pointsTimeoutReason)
	}
	return Nothing()
}

// Current decayed points of a user.
func (e *Engine) Points(user models.User) float64 {
	return e.points.current(user.ID, e.now())
}

// Checks a message against all rules and performs at most one punitive action: a
// timeout takes precedence over deleting the message.
func (e *Engine) Check(ctx context.Context, msg chat.Message) (Verdict, error) {
	ctx, span := otel.Tracer("automod").Start(ctx, "Check", trace.WithAttributes(
		attribute.String("user", msg.User.ID),
		attribute.String("source", msg.Source.String()),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		checkDuration.Observe(time.Since(start).Seconds())
	}()

	logger := e.logger().With("user", msg.User.String(), "messageID", msg.Details.MessageID)

	var (
		timeout     *ruleResult
		deleteRule  string
		deleteFound bool
		pointQueue  []ruleResult
	)
	process := func(res Result, rule string) {
		switch res.Kind() {
		case ResultNothing:
		case ResultGivePoints:
			pointQueue = append(pointQueue, ruleResult{result: res, rule: rule})
		case ResultDeleteMessage:
			if !deleteFound {
				deleteFound = true
				deleteRule = rule
			}
		case ResultTimeout:
			if timeout == nil {
				timeout = &ruleResult{result: res, rule: rule}
			}
		default:
			logger.Warn("unhandled moderation rule result", "kind", res.Kind(), "rule", rule)
		}
	}

	for _, rule := range e.Rules {
		res, err := e.runRule(ctx, logger, rule, msg)
		if err != nil {
			checkErrors.Inc()
			return Verdict{}, fmt.Errorf("moderation rule %s: %w", rule.ID(), err)
		}
		process(res, rule.ID())
	}
	// applying points only ever yields Nothing or Timeout, so this terminates
	for len(pointQueue) > 0 {
		next := pointQueue[0]
		pointQueue = pointQueue[1:]
		process(e.ApplyPoints(msg.User, next.result.Points()), next.rule)
	}

	if timeout != nil {
		v, err := e.executeTimeout(ctx, logger, msg, *timeout)
		if err != nil {
			checkErrors.Inc()
			return Verdict{}, err
		}
		verdictCount.WithLabelValues(ActionTimeout.String()).Inc()
		return v, nil
	}
	if deleteFound {
		if msg.Details.MessageID != "" {
			if err := e.Executor.DeleteMessage(ctx, msg.Details.MessageID); err != nil {
				checkErrors.Inc()
				return Verdict{}, fmt.Errorf("deleting message: %w", err)
			}
			logger.Info("deleted message", "rule", deleteRule)
		} else {
			// chat messages always have an id; whispers don't, but never get moderated
			logger.Warn("cannot delete message because it is missing a message id", "rule", deleteRule, "source", msg.Source)
		}
		verdictCount.WithLabelValues(ActionDelete.String()).Inc()
		return Verdict{Action: ActionDelete, Rule: deleteRule}, nil
	}
	verdictCount.WithLabelValues(ActionNone.String()).Inc()
	return Verdict{Accepted: true, Action: ActionNone}, nil
}

func (e *Engine) executeTimeout(ctx context.Context, logger *slog.Logger, msg chat.Message, rr ruleResult) (Verdict, error) {
	reason := rr.result.Reason()
	duration, err := e.CalculateTimeoutDuration(ctx, msg.User)
	if err != nil {
		return Verdict{}, err
	}
	if err := e.Executor.Timeout(ctx, msg.User, timeoutReasonPrefix+reason, duration); err != nil {
		return Verdict{}, fmt.Errorf("timing out user: %w", err)
	}
	if _, err := e.ModLog.LogModAction(ctx, msg.User, reason, rr.rule, e.now()); err != nil {
		return Verdict{}, fmt.Errorf("logging mod action: %w", err)
	}
	logger.Info("timed out user", "rule", rr.rule, "reason", reason, "duration", duration)

	v := Verdict{Action: ActionTimeout, Rule: rr.rule, Reason: reason, Duration: duration}
	if e.Notifier != nil {
		if err := e.Notifier.SendTimeout(ctx, msg, v); err != nil {
			logger.Warn("failed to send timeout notification", "err", err)
		}
	}
	return v, nil
}

func (e *Engine) runRule(ctx context.Context, logger *slog.Logger, rule Rule, msg chat.Message) (res Result, err error) {
	// similar to an HTTP server, we want to recover any panics from rule execution
	defer func() {
		if r := recover(); r != nil {
			logger.Error("moderation rule execution exception", "err", r, "rule", rule.ID())
			res, err = Nothing(), nil
		}
	}()
	res, err = rule.Check(ctx, msg)
	if err == nil && res.Kind() != ResultNothing {
		ruleHitCount.WithLabelValues(rule.ID(), res.Kind().String()).Inc()
	}
	return res, err
}
