package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v2"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/chat"
	"github.com/tppcore/modbot/chat/tmi"
)

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "connect to chat and moderate it",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "tmi-host",
			Usage:   "websocket URL of the twitch chat server",
			Value:   tmi.DefaultHost,
			EnvVars: []string{"MODBOT_TMI_HOST"},
		},
		&cli.StringFlag{
			Name:     "channel",
			Usage:    "chat channel to join and moderate",
			Required: true,
			EnvVars:  []string{"MODBOT_CHANNEL"},
		},
		&cli.StringFlag{
			Name:     "username",
			Usage:    "login of the bot account",
			Required: true,
			EnvVars:  []string{"MODBOT_USERNAME"},
		},
		&cli.StringFlag{
			Name:     "oauth-token",
			Usage:    "chat OAuth token of the bot account (without 'oauth:' prefix)",
			Required: true,
			EnvVars:  []string{"MODBOT_OAUTH_TOKEN"},
		},
		&cli.StringSliceFlag{
			Name:    "suppress",
			Usage:   "outbound message types to suppress (message, whisper)",
			EnvVars: []string{"MODBOT_SUPPRESS"},
		},
		&cli.StringSliceFlag{
			Name:    "suppression-override",
			Usage:   "channels or users which still receive suppressed message types",
			EnvVars: []string{"MODBOT_SUPPRESSION_OVERRIDES"},
		},
		&cli.StringSliceFlag{
			Name:    "operator",
			Usage:   "logins allowed to use operator commands",
			EnvVars: []string{"MODBOT_OPERATORS"},
		},
		&cli.IntFlag{
			Name:    "free-timeouts",
			Usage:   "recent timeouts before timeout durations start to escalate",
			Value:   automod.DefaultConfig().FreeTimeouts,
			EnvVars: []string{"MODBOT_FREE_TIMEOUTS"},
		},
		&cli.Float64Flag{
			Name:    "points-decay-per-second",
			Value:   automod.DefaultConfig().PointsDecayPerSecond,
			EnvVars: []string{"MODBOT_POINTS_DECAY_PER_SECOND"},
		},
		&cli.IntFlag{
			Name:    "min-points",
			Usage:   "point grants below this are ignored",
			Value:   automod.DefaultConfig().MinPoints,
			EnvVars: []string{"MODBOT_MIN_POINTS"},
		},
		&cli.IntFlag{
			Name:    "points-for-timeout",
			Value:   automod.DefaultConfig().PointsForTimeout,
			EnvVars: []string{"MODBOT_POINTS_FOR_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Value:   "sqlite://data/modbot/modbot.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"MAX_DB_CONNECTIONS"},
			Value:   20,
		},
		&cli.BoolFlag{
			Name:    "db-tracing",
			Usage:   "trace database queries with OpenTelemetry",
			EnvVars: []string{"MODBOT_DB_TRACING"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis server for counters and caches; in-process stores are used if not set",
			EnvVars: []string{"MODBOT_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "sets-json",
			Usage:   "path to JSON file with named sets (banned-domains, spambot-phrases)",
			EnvVars: []string{"MODBOT_SETS_JSON"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "slack incoming webhook notified about every timeout",
			EnvVars: []string{"SLACK_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3998",
			EnvVars: []string{"MODBOT_METRICS_LISTEN"},
		},
		&cli.Float64Flag{
			Name:    "send-rate-limit",
			Usage:   "max outbound chat lines per second",
			Value:   20.0 / 30.0,
			EnvVars: []string{"MODBOT_SEND_RATE_LIMIT"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger, err := configLogger(cctx)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdownOTEL, err := configOTEL(ctx, "modbot")
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		defer shutdownOTEL()

		var suppressions []chat.SuppressionType
		for _, raw := range cctx.StringSlice("suppress") {
			st, err := chat.ParseSuppressionType(raw)
			if err != nil {
				return err
			}
			suppressions = append(suppressions, st)
		}

		srv, err := NewServer(ctx, Config{
			Logger:               logger,
			TMIHost:              cctx.String("tmi-host"),
			Channel:              cctx.String("channel"),
			Username:             cctx.String("username"),
			OAuthToken:           cctx.String("oauth-token"),
			Suppressions:         suppressions,
			SuppressionOverrides: cctx.StringSlice("suppression-override"),
			Operators:            cctx.StringSlice("operator"),
			Engine: automod.Config{
				FreeTimeouts:         cctx.Int("free-timeouts"),
				PointsDecayPerSecond: cctx.Float64("points-decay-per-second"),
				MinPoints:            cctx.Int("min-points"),
				PointsForTimeout:     cctx.Int("points-for-timeout"),
			},
			DatabaseURL:      cctx.String("database-url"),
			MaxDBConnections: cctx.Int("max-db-connections"),
			DBTracing:        cctx.Bool("db-tracing"),
			RedisURL:         cctx.String("redis-url"),
			SetsFileJSON:     cctx.String("sets-json"),
			SlackWebhookURL:  cctx.String("slack-webhook-url"),
			MetricsListen:    cctx.String("metrics-listen"),
			SendRateLimit:    cctx.Float64("send-rate-limit"),
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(); err != nil {
				logger.Error("failed to start metrics endpoint", "err", err)
				stop()
			}
		}()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("failed to run modbot: %w", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
