package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tppcore/modbot/models"
	"github.com/tppcore/modbot/store"
)

// Returns store.ErrUserNotFound for unknown users.
type UserLookup interface {
	GetUserBySimpleName(ctx context.Context, simpleName string) (models.User, error)
}

type ModLogLookup interface {
	RecentEntries(ctx context.Context, user models.User, limit int) ([]models.ModLog, error)
}

// Commands restricted to the configured operators.
type OperatorCommands struct {
	// lower-cased logins
	Operators map[string]bool
	Users     UserLookup
	ModLog    ModLogLookup
	// called once when an operator issues "stop"
	Stop func()

	stopOnce sync.Once
}

func NewOperatorCommands(operators []string, users UserLookup, modlog ModLogLookup, stop func()) *OperatorCommands {
	ops := make(map[string]bool, len(operators))
	for _, o := range operators {
		ops[strings.ToLower(o)] = true
	}
	return &OperatorCommands{Operators: ops, Users: users, ModLog: modlog, Stop: stop}
}

func (o *OperatorCommands) Install(r *Registry) {
	r.Register(CommandDef{
		Name:        "stop",
		Description: "Operators only: shut down the bot.",
		Handler:     o.operatorOnly(o.stop),
	})
	r.Register(CommandDef{
		Name:        "modlog",
		Aliases:     []string{"timeouts"},
		Description: "Operators only: show the most recent automatic timeouts of a user. Argument: <user>",
		Handler:     o.operatorOnly(o.modlog),
	})
}

func (o *OperatorCommands) operatorOnly(fn HandlerFunc) Handler {
	return HandlerFunc(func(ctx context.Context, cmd Command) (Result, error) {
		if !o.Operators[strings.ToLower(cmd.Message.User.SimpleName)] {
			return Result{Response: "Only operators can use that command"}, nil
		}
		return fn(ctx, cmd)
	})
}

func (o *OperatorCommands) stop(ctx context.Context, cmd Command) (Result, error) {
	stopping := false
	o.stopOnce.Do(func() {
		stopping = true
		if o.Stop != nil {
			o.Stop()
		}
	})
	if !stopping {
		return Result{Response: "already stopping"}, nil
	}
	return Result{Response: "stopping"}, nil
}

func (o *OperatorCommands) modlog(ctx context.Context, cmd Command) (Result, error) {
	if len(cmd.Args) != 1 || cmd.Args[0] == "" {
		return Result{Response: "usage: modlog <user>"}, nil
	}
	name := strings.ToLower(strings.TrimPrefix(cmd.Args[0], "@"))
	user, err := o.Users.GetUserBySimpleName(ctx, name)
	if errors.Is(err, store.ErrUserNotFound) {
		return Result{Response: fmt.Sprintf("unknown user '%s'", name)}, nil
	} else if err != nil {
		return Result{}, err
	}
	entries, err := o.ModLog.RecentEntries(ctx, user, 3)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return Result{Response: fmt.Sprintf("%s has no recent timeouts", user.SimpleName)}, nil
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s by %s (%s)", e.Timestamp.UTC().Format("2006-01-02 15:04"), e.Rule, e.Reason))
	}
	return Result{Response: fmt.Sprintf("recent timeouts of %s: %s", user.SimpleName, strings.Join(parts, "; "))}, nil
}
