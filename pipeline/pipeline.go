package pipeline

import (
	"context"
	"log/slog"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/chat"
	"github.com/tppcore/modbot/models"
)

type Moderator interface {
	Check(ctx context.Context, msg chat.Message) (automod.Verdict, error)
}

var _ Moderator = (*automod.Engine)(nil)

type Responder interface {
	SendMessage(ctx context.Context, text string) error
	SendWhisper(ctx context.Context, target models.User, text string) error
}

var _ Responder = (*chat.Connector)(nil)

// Routes inbound chat messages: chat messages from non-staff users are moderated first;
// messages that get through are checked for commands, whose responses are sent back.
type Pipeline struct {
	Logger    *slog.Logger
	Moderator Moderator
	Commands  Handler
	Responder Responder
}

func New(moderator Moderator, commands Handler, responder Responder) *Pipeline {
	return &Pipeline{
		Logger:    slog.Default(),
		Moderator: moderator,
		Commands:  commands,
		Responder: responder,
	}
}

// Registers the pipeline with a connector.
func (p *Pipeline) Attach(c *chat.Connector) {
	c.Subscribe(p.HandleMessage)
}

func (p *Pipeline) HandleMessage(ctx context.Context, msg chat.Message) {
	logger := p.Logger.With("user", msg.User.String(), "source", msg.Source)

	if !msg.Details.IsStaff && msg.Source == chat.SourceChat {
		v, err := p.Moderator.Check(ctx, msg)
		if err != nil {
			messagesProcessed.WithLabelValues("error").Inc()
			logger.Error("failed to moderate message", "err", err)
			return
		}
		if !v.Accepted {
			messagesProcessed.WithLabelValues("rejected").Inc()
			return
		}
	}
	messagesProcessed.WithLabelValues("accepted").Inc()

	cmd, ok := ParseCommand(msg)
	if !ok || p.Commands == nil {
		return
	}
	logger = logger.With("command", cmd.Name)
	res, err := p.Commands.HandleCommand(ctx, cmd)
	if err != nil {
		logger.Error("command failed", "err", err)
		return
	}
	if err := p.respond(ctx, msg, res); err != nil {
		logger.Error("failed to send command response", "err", err)
	}
}

func (p *Pipeline) respond(ctx context.Context, msg chat.Message, res Result) error {
	if res.Response == "" {
		return nil
	}
	target := res.Target
	if target == TargetSource {
		target = TargetChat
		if msg.Source == chat.SourceWhisper {
			target = TargetWhisper
		}
	}
	switch target {
	case TargetChat:
		return p.Responder.SendMessage(ctx, "@"+msg.User.SimpleName+" "+res.Response)
	case TargetWhisper:
		return p.Responder.SendWhisper(ctx, msg.User, res.Response)
	default:
		return nil
	}
}
