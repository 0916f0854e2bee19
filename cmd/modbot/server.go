package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/automod/cachestore"
	"github.com/tppcore/modbot/automod/countstore"
	"github.com/tppcore/modbot/automod/rules"
	"github.com/tppcore/modbot/automod/setstore"
	"github.com/tppcore/modbot/chat"
	"github.com/tppcore/modbot/chat/tmi"
	"github.com/tppcore/modbot/pipeline"
	"github.com/tppcore/modbot/store"
	"github.com/tppcore/modbot/util"
)

type Server struct {
	logger    *slog.Logger
	db        *gorm.DB
	rdb       *redis.Client
	connector *chat.Connector
	engine    *automod.Engine
	metrics   *http.Server

	// cancelled by the operator "stop" command
	ctx  context.Context
	stop context.CancelFunc
}

type Config struct {
	Logger               *slog.Logger
	TMIHost              string
	Channel              string
	Username             string
	OAuthToken           string
	Suppressions         []chat.SuppressionType
	SuppressionOverrides []string
	Operators            []string
	Engine               automod.Config
	DatabaseURL          string
	MaxDBConnections     int
	DBTracing            bool
	RedisURL             string
	SetsFileJSON         string
	SlackWebhookURL      string
	MetricsListen        string
	// outbound lines per second; zero or less disables limiting
	SendRateLimit float64
}

func NewServer(ctx context.Context, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	db, err := store.SetupDatabase(config.DatabaseURL, config.MaxDBConnections, logger)
	if err != nil {
		return nil, err
	}
	if config.DBTracing {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, fmt.Errorf("enabling database tracing: %w", err)
		}
	}
	if err := store.MigrateDatabase(db); err != nil {
		return nil, err
	}

	sets := setstore.NewMemSetStore()
	if config.SetsFileJSON != "" {
		if err := sets.LoadFromFileJSON(config.SetsFileJSON); err != nil {
			return nil, fmt.Errorf("initializing in-process setstore: %w", err)
		}
		logger.Info("loaded set config from JSON", "path", config.SetsFileJSON)
	}

	var counters countstore.CountStore
	var cache cachestore.CacheStore
	var rdb *redis.Client
	if config.RedisURL != "" {
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %w", err)
		}
		rdb = redis.NewClient(opt)

		cnt, err := countstore.NewRedisCountStore(ctx, rdb)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %w", err)
		}
		counters = cnt

		csh, err := cachestore.NewRedisCacheStore(ctx, rdb, 30*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %w", err)
		}
		cache = csh
	} else {
		counters = countstore.NewMemCountStore()
		cache = cachestore.NewMemCacheStore(5_000, 30*time.Minute)
	}

	users := store.NewUserRepo(db)
	cachedUsers := store.NewCachedUserRepo(users, cache)
	cachedUsers.Logger = logger
	modlog := store.NewModLogRepo(db)

	client := tmi.NewClient(config.TMIHost, config.Username, config.OAuthToken, config.Channel)
	client.Logger = logger.With("system", "tmi")
	if config.SendRateLimit > 0 {
		client.Limiter = rate.NewLimiter(rate.Limit(config.SendRateLimit), 1)
	} else {
		client.Limiter = nil
	}

	connector := chat.NewConnector(client, cachedUsers, chat.Config{
		Channel:              config.Channel,
		Suppressions:         config.Suppressions,
		SuppressionOverrides: config.SuppressionOverrides,
	})
	connector.Logger = logger.With("system", "chat")

	engine := &automod.Engine{
		Logger:   logger.With("system", "automod"),
		Rules:    rules.DefaultRules(sets, counters),
		Executor: connector,
		ModLog:   modlog,
		Config:   config.Engine,
	}
	if config.SlackWebhookURL != "" {
		engine.Notifier = &automod.SlackNotifier{
			SlackWebhookURL: config.SlackWebhookURL,
			Client:          util.RobustHTTPClient(logger),
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	sctx, stop := context.WithCancel(ctx)
	s := &Server{
		logger:    logger,
		db:        db,
		rdb:       rdb,
		connector: connector,
		engine:    engine,
		metrics: &http.Server{
			Addr:              config.MetricsListen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ctx:  sctx,
		stop: stop,
	}

	commands := pipeline.NewRegistry()
	pipeline.NewOperatorCommands(config.Operators, users, modlog, func() {
		logger.Warn("stop requested by operator")
		stop()
	}).Install(commands)

	p := pipeline.New(engine, commands, connector)
	p.Logger = logger.With("system", "pipeline")
	p.Attach(connector)

	return s, nil
}

func (s *Server) RunMetrics() error {
	if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Connects to chat and blocks until ctx is done or an operator stops the bot.
func (s *Server) Run(ctx context.Context) error {
	if err := s.connector.Connect(ctx); err != nil {
		return err
	}
	s.logger.Info("modbot running")
	select {
	case <-ctx.Done():
	case <-s.ctx.Done():
	}
	s.logger.Info("shutting down")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	var errs []error
	if err := s.connector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing chat connector: %w", err))
	}
	if err := s.metrics.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stopping metrics endpoint: %w", err))
	}
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing redis client: %w", err))
		}
	}
	if sqldb, err := s.db.DB(); err == nil {
		if err := sqldb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	return errors.Join(errs...)
}
