package hearth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/hearth/internal/logging"
	"github.com/aretw0/hearth/internal/runtime"
	"github.com/aretw0/hearth/pkg/adapters/memory"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/lexer"
	"github.com/aretw0/hearth/pkg/ports"
	"github.com/aretw0/hearth/pkg/registry"
	"github.com/aretw0/hearth/pkg/session"
)

// Version is set at build time with -ldflags "-X github.com/aretw0/hearth.Version=...".
var Version = "dev"

// Assistant is the high-level entry point of the library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Assistant struct {
	engine   *runtime.Engine
	registry *registry.Registry
	sessions *session.Manager
	lexer    *lexer.Lexer

	store  ports.StateStore
	locker ports.DistributedLocker
	hooks  domain.Hooks
	logger *slog.Logger
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(a *Assistant) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// WithStore persists conversations in store instead of process memory.
func WithStore(store ports.StateStore) Option {
	return func(a *Assistant) {
		a.store = store
	}
}

// WithLocker serializes turns of one session across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *Assistant) {
		a.locker = locker
	}
}

// WithLexer replaces the default tokenizer used by Say.
func WithLexer(l *lexer.Lexer) Option {
	return func(a *Assistant) {
		a.lexer = l
	}
}

// New creates an Assistant over a registry built with NewRegistry.
func New(reg *registry.Registry, opts ...Option) *Assistant {
	a := &Assistant{registry: reg}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.store == nil {
		a.store = memory.NewStore()
	}
	if a.lexer == nil {
		a.lexer = lexer.Default()
	}

	sessionOpts := []session.Option{session.WithLogger(a.logger)}
	if a.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(a.locker))
	}
	a.sessions = session.NewManager(a.store, sessionOpts...)

	a.engine = runtime.NewEngine(reg, a.sessions,
		runtime.WithHooks(a.hooks),
		runtime.WithLogger(a.logger),
	)
	return a
}

// Say tokenizes text and interprets it in the given session.
func (a *Assistant) Say(ctx context.Context, sessionID, text string) (*domain.Reply, error) {
	tokens, err := a.Tokenize(text)
	if err != nil {
		return nil, err
	}
	return a.Interpret(ctx, sessionID, tokens)
}

// Interpret runs already tokenized input. Not understanding or failing to
// execute a command is reported in the Reply, not as an error.
func (a *Assistant) Interpret(ctx context.Context, sessionID string, tokens []domain.Token) (*domain.Reply, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return a.engine.Interpret(ctx, sessionID, tokens)
}

// Tokenize splits text into typed tokens.
func (a *Assistant) Tokenize(text string) ([]domain.Token, error) {
	return a.lexer.Tokenize(text)
}

// Forms returns a copy of the registered forms.
func (a *Assistant) Forms() []domain.Form {
	return a.registry.Forms()
}

// Session returns the stored conversation of sessionID.
func (a *Assistant) Session(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	return a.sessions.Load(ctx, sessionID)
}

// Sessions lists the known session IDs.
func (a *Assistant) Sessions(ctx context.Context) ([]string, error) {
	return a.sessions.List(ctx)
}

// EndSession forgets the conversation of sessionID, including any pending
// question.
func (a *Assistant) EndSession(ctx context.Context, sessionID string) error {
	return a.sessions.Delete(ctx, sessionID)
}
