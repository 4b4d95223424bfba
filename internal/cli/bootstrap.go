package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/hearth"
	"github.com/aretw0/hearth/internal/config"
	"github.com/aretw0/hearth/internal/worker"
	"github.com/aretw0/hearth/pkg/actions"
	"github.com/aretw0/hearth/pkg/adapters/file"
	"github.com/aretw0/hearth/pkg/adapters/memory"
	"github.com/aretw0/hearth/pkg/adapters/redis"
	"github.com/aretw0/hearth/pkg/dispatch"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/lexer"
	"github.com/aretw0/hearth/pkg/observability"
	"github.com/aretw0/hearth/pkg/ports"
	"github.com/aretw0/hearth/pkg/session/middleware"
	backend "github.com/redis/go-redis/v9"
)

// App is a fully wired assistant plus the resources it holds open.
type App struct {
	Config    *config.Config
	Assistant *hearth.Assistant
	Metrics   *observability.Metrics
	Broker    ports.Broker
	Store     ports.StateStore
	Logger    *slog.Logger

	// Demo answers requests in process when the broker backend is memory.
	Demo *worker.Demo

	sessionClient *backend.Client
}

// Bootstrap builds the broker, dispatcher, handlers, registry and session
// store described by cfg.
func Bootstrap(cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:  cfg,
		Metrics: observability.NewMetrics(),
		Logger:  logger,
	}
	hooks := domain.MergeHooks(app.Metrics.Hooks(), observability.LogHooks(logger))

	forms, err := cfg.DomainForms()
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		forms = hearth.DefaultForms()
	}

	app.Broker, app.Demo, err = newBroker(cfg, forms, logger)
	if err != nil {
		return nil, err
	}

	d := dispatch.New(app.Broker,
		dispatch.WithTimeout(cfg.Broker.Timeout),
		dispatch.WithHooks(hooks),
		dispatch.WithLogger(logger),
	)
	handlers := actions.NewHandlers(actions.Deps{
		Dispatcher: d,
		Files:      file.NewLister(),
		Config:     cfg.Store(),
		Recovery:   actions.RefreshCredentials(d, cfg.Auth.Channel),
		Logger:     logger,
	})

	reg, err := hearth.NewRegistry(forms, handlers)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("invalid forms: %w", err)
	}

	opts := []hearth.Option{
		hearth.WithHooks(hooks),
		hearth.WithLogger(logger),
	}
	if len(cfg.Lexicon.Countries) > 0 {
		opts = append(opts, hearth.WithLexer(lexer.New(cfg.Lexicon.Countries)))
	}

	switch cfg.Sessions.Backend {
	case "", "memory":
		app.Store = memory.NewStore()
	case "file":
		app.Store = file.New(cfg.Sessions.Dir)
	case "redis":
		app.sessionClient = backend.NewClient(redisOptions(cfg))
		app.Store = redis.NewFromClient(app.sessionClient,
			redis.WithTTL(cfg.Sessions.TTL),
			redis.WithPrefix(cfg.Sessions.Prefix),
		)
		if cfg.Sessions.Locking {
			opts = append(opts, hearth.WithLocker(redis.NewLocker(app.sessionClient, cfg.Sessions.Prefix)))
		}
	default:
		_ = app.Close()
		return nil, fmt.Errorf("unknown sessions backend %q", cfg.Sessions.Backend)
	}
	if cfg.Sessions.EncryptionKey != "" {
		mw, err := sealSessions(cfg.Sessions)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Store = middleware.Chain(app.Store, mw)
	}
	opts = append(opts, hearth.WithStore(app.Store))

	app.Assistant = hearth.New(reg, opts...)
	logger.Debug("Assistant ready",
		"broker", cfg.Broker.Backend,
		"sessions", cfg.Sessions.Backend,
		"forms", len(forms),
	)
	return app, nil
}

// Close releases the broker and the session store connection.
func (a *App) Close() error {
	var errs []error
	if a.Broker != nil {
		errs = append(errs, a.Broker.Close())
	}
	if a.sessionClient != nil {
		errs = append(errs, a.sessionClient.Close())
	}
	return errors.Join(errs...)
}

// Channels lists the worker channel of every form plus the auth channel,
// without duplicates.
func Channels(cfg *config.Config, forms []domain.Form) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(ch string) {
		if ch != "" && !seen[ch] {
			seen[ch] = true
			out = append(out, ch)
		}
	}
	for _, f := range forms {
		add(actions.Channel(cfg.Store(), f))
	}
	add(cfg.Auth.Channel)
	return out
}

func newBroker(cfg *config.Config, forms []domain.Form, logger *slog.Logger) (ports.Broker, *worker.Demo, error) {
	switch cfg.Broker.Backend {
	case "", "memory":
		b := memory.NewBroker()
		demo := worker.NewDemo(worker.WithLogger(logger))
		for _, ch := range Channels(cfg, forms) {
			b.Handle(ch, demo.Handle)
		}
		return b, demo, nil
	case "redis":
		return redis.NewBroker(redisOptions(cfg),
			redis.WithQueuePrefix(cfg.Broker.Prefix),
			redis.WithReplyTTL(cfg.Broker.ReplyTTL),
			redis.WithQueueLogger(logger),
		), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown broker backend %q", cfg.Broker.Backend)
	}
}

func redisOptions(cfg *config.Config) *backend.Options {
	return &backend.Options{
		Addr:     cfg.Broker.Address,
		Password: cfg.Broker.Password,
		DB:       cfg.Broker.DB,
	}
}

// Connect opens the broker early so a misconfigured address fails at start
// rather than on the first command.
func (a *App) Connect(ctx context.Context) error {
	if err := a.Broker.Connect(ctx); err != nil {
		return fmt.Errorf("broker %s: %w", a.Config.Broker.Address, err)
	}
	return nil
}

func sealSessions(cfg config.SessionsConfig) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("sessions.encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("sessions.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return middleware.NewEncryption(enc)
}
