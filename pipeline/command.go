package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tppcore/modbot/chat"
)

// A chat command invocation: "!name arg1 arg2" in chat, or "name arg1 arg2" (the "!" is
// optional) in whispers.
type Command struct {
	// lower-cased, without the "!" prefix
	Name    string
	Args    []string
	Message chat.Message
}

type ResponseTarget int

const (
	// reply the same way the command came in
	TargetSource ResponseTarget = iota
	TargetChat
	TargetWhisper
	TargetNone
)

type Result struct {
	// empty means no response
	Response string
	Target   ResponseTarget
}

type Handler interface {
	HandleCommand(ctx context.Context, cmd Command) (Result, error)
}

type HandlerFunc func(ctx context.Context, cmd Command) (Result, error)

func (f HandlerFunc) HandleCommand(ctx context.Context, cmd Command) (Result, error) {
	return f(ctx, cmd)
}

// Parses the command out of a message, if it is one.
func ParseCommand(msg chat.Message) (Command, bool) {
	parts := strings.Split(msg.Text, " ")
	name := parts[0]
	switch msg.Source {
	case chat.SourceWhisper:
		name = strings.TrimPrefix(name, "!")
	case chat.SourceChat:
		if !strings.HasPrefix(name, "!") {
			return Command{}, false
		}
		name = name[1:]
	default:
		return Command{}, false
	}
	if name == "" {
		return Command{}, false
	}
	return Command{
		Name:    strings.ToLower(name),
		Args:    parts[1:],
		Message: msg,
	}, true
}

type CommandDef struct {
	Name        string
	Aliases     []string
	Description string
	Handler     Handler
}

// Handler dispatching to registered commands by name or alias. Unknown commands get no
// response.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*CommandDef
	// primary names, in registration order
	names []string
}

var _ Handler = (*Registry)(nil)

func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]*CommandDef)}
	r.Register(CommandDef{
		Name:        "help",
		Description: "Lists commands, or describes the command given as argument.",
		Handler:     HandlerFunc(r.help),
	})
	return r
}

// Panics on a duplicate name or alias, since that is a programming error.
func (r *Registry) Register(def CommandDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range append([]string{def.Name}, def.Aliases...) {
		n = strings.ToLower(n)
		if _, ok := r.commands[n]; ok {
			panic(fmt.Sprintf("duplicate command name: %s", n))
		}
		r.commands[n] = &def
	}
	r.names = append(r.names, strings.ToLower(def.Name))
}

func (r *Registry) lookup(name string) (*CommandDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.commands[name]
	return def, ok
}

func (r *Registry) HandleCommand(ctx context.Context, cmd Command) (Result, error) {
	def, ok := r.lookup(cmd.Name)
	if !ok {
		return Result{}, nil
	}
	commandsHandled.WithLabelValues(def.Name).Inc()
	return def.Handler.HandleCommand(ctx, cmd)
}

func (r *Registry) help(ctx context.Context, cmd Command) (Result, error) {
	if len(cmd.Args) > 0 && cmd.Args[0] != "" {
		name := strings.ToLower(strings.TrimPrefix(cmd.Args[0], "!"))
		def, ok := r.lookup(name)
		if !ok {
			return Result{Response: fmt.Sprintf("unknown command '%s'", name)}, nil
		}
		desc := def.Description
		if desc == "" {
			desc = "no description"
		}
		return Result{Response: fmt.Sprintf("%s: %s", def.Name, desc)}, nil
	}
	r.mu.RLock()
	names := slices.Clone(r.names)
	r.mu.RUnlock()
	slices.Sort(names)
	return Result{Response: "available commands: " + strings.Join(names, ", ")}, nil
}
