package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/hearth/internal/logging"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/registry"
	"github.com/aretw0/hearth/pkg/session"
)

// Engine drives one conversation step per utterance:
// Matching -> AwaitingSlot -> Resolved -> Dispatching -> Done | Failed.
type Engine struct {
	registry *registry.Registry
	sessions *session.Manager
	hooks    domain.Hooks
	logger   *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithHooks registers lifecycle hooks.
func WithHooks(h domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = h
	}
}

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine over a registry and a session manager.
func NewEngine(reg *registry.Registry, sessions *session.Manager, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Interpret runs one utterance against the session's conversation and
// persists the new state. Failures to understand or execute the command are
// reported in the Reply; the returned error is reserved for session storage
// and cancellation.
func (e *Engine) Interpret(ctx context.Context, sessionID string, tokens []domain.Token) (*domain.Reply, error) {
	var reply *domain.Reply
	err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		store := e.sessions.Store()
		conv, err := session.LoadOrNew(ctx, store, sessionID)
		if err != nil {
			return err
		}

		reply, err = e.step(ctx, conv, tokens)
		if err != nil {
			return err
		}

		conv.Outcome = reply.Outcome
		conv.Message = reply.Message
		if err := store.Save(ctx, sessionID, conv); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.hooks.OnOutcome != nil {
		e.hooks.OnOutcome(ctx, &domain.OutcomeEvent{
			EventBase: e.base(domain.EventOutcome, sessionID),
			Action:    reply.Action,
			Outcome:   reply.Outcome,
		})
	}
	return reply, nil
}

func (e *Engine) step(ctx context.Context, conv *domain.Conversation, tokens []domain.Token) (*domain.Reply, error) {
	if conv.Phase == domain.PhaseAwaitingSlot {
		if reply, ok, err := e.resume(ctx, conv, tokens); ok || err != nil {
			return reply, err
		}
	}
	return e.fresh(ctx, conv, tokens)
}

// resume continues a conversation halted on a required slot. It reports
// ok=false when the utterance should be treated as a new command instead.
func (e *Engine) resume(ctx context.Context, conv *domain.Conversation, tokens []domain.Token) (*domain.Reply, bool, error) {
	form, action, found := e.registry.Lookup(conv.Action)
	if !found {
		return nil, false, nil
	}
	var pending *domain.Slot
	for i := range action.Slots {
		if action.Slots[i].Name == conv.Pending {
			pending = &action.Slots[i]
		}
	}
	if pending == nil {
		return nil, false, nil
	}

	if hasType(tokens, pending.Type) {
		e.logger.Debug("Resuming conversation", "session_id", conv.SessionID, "action", action.Type, "slot", pending.Name)
		reply, err := e.resolve(ctx, conv, form, action, domain.Append(conv.Tokens, tokens))
		return reply, true, err
	}

	if f, _, _ := MatchAny(e.registry.Forms(), tokens); f != nil {
		return nil, false, nil
	}

	// Neither an answer nor a new command: ask again.
	return e.reply(conv, domain.OutcomeClarify, conv.Question), true, nil
}

func (e *Engine) fresh(ctx context.Context, conv *domain.Conversation, tokens []domain.Token) (*domain.Reply, error) {
	conv.Reset()
	conv.Tokens = tokens

	matchedForm, matchedAction, score := MatchAny(e.registry.Forms(), tokens)
	if matchedAction == nil {
		conv.Enter(domain.PhaseFailed)
		e.logger.Debug("No match", "session_id", conv.SessionID, "tokens", strings.Join(domain.Texts(tokens), " "))
		return e.reply(conv, domain.OutcomeNoMatch, capitalize(domain.ErrNoMatch.Error())+"."), nil
	}

	// Resolve against the registry's own copy, not the transient slice.
	form, action, _ := e.registry.Lookup(matchedAction.Type)
	conv.Form = matchedForm.Name
	conv.Action = action.Type

	if e.hooks.OnMatch != nil {
		e.hooks.OnMatch(ctx, &domain.MatchEvent{
			EventBase: e.base(domain.EventMatch, conv.SessionID),
			Form:      form.Name,
			Action:    action.Type,
			Score:     score,
		})
	}
	return e.resolve(ctx, conv, form, action, tokens)
}

func (e *Engine) resolve(ctx context.Context, conv *domain.Conversation, form *domain.Form, action *domain.Action, tokens []domain.Token) (*domain.Reply, error) {
	conv.Tokens = tokens
	res := Resolve(action, tokens)

	if !res.Complete() {
		conv.Pending = res.Missing.Name
		conv.Question = res.Missing.Question
		conv.Enter(domain.PhaseAwaitingSlot)

		if e.hooks.OnClarify != nil {
			e.hooks.OnClarify(ctx, &domain.ClarifyEvent{
				EventBase: e.base(domain.EventClarify, conv.SessionID),
				Action:    action.Type,
				Slot:      res.Missing.Name,
				Question:  res.Missing.Question,
			})
		}
		return e.reply(conv, domain.OutcomeClarify, res.Missing.Question), nil
	}

	conv.Pending = ""
	conv.Question = ""
	conv.Enter(domain.PhaseResolved)

	handler, _ := e.registry.Handler(action.Type)
	conv.Enter(domain.PhaseDispatching)
	result, err := handler(ctx, &domain.Call{
		Form:     *form,
		Action:   *action,
		Bindings: res.Bindings,
		Tokens:   tokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		conv.Enter(domain.PhaseFailed)
		return e.failure(conv, err), nil
	}

	conv.Enter(domain.PhaseDone)
	reply := e.reply(conv, domain.OutcomeDone, result.Message)
	reply.Request = result.Request
	reply.Response = result.Response
	return reply, nil
}

func (e *Engine) failure(conv *domain.Conversation, err error) *domain.Reply {
	e.logger.Warn("Action failed", "session_id", conv.SessionID, "action", conv.Action, "err", err)

	var amb *domain.AmbiguousResourceError
	switch {
	case errors.As(err, &amb):
		reply := e.reply(conv, domain.OutcomeAmbiguous,
			fmt.Sprintf("I found several matches: %s. Please be more specific.", strings.Join(amb.Candidates, ", ")))
		reply.Candidates = amb.Candidates
		return reply
	case errors.Is(err, domain.ErrLookup):
		return e.reply(conv, domain.OutcomeFailed, fmt.Sprintf("I couldn't find what you asked for (%v).", err))
	default:
		return e.reply(conv, domain.OutcomeFailed, fmt.Sprintf("Sorry, %s failed: %v.", conv.Action, err))
	}
}

func (e *Engine) reply(conv *domain.Conversation, outcome domain.Outcome, message string) *domain.Reply {
	r := &domain.Reply{
		SessionID: conv.SessionID,
		Outcome:   outcome,
		Message:   message,
		Phase:     conv.Phase,
		Action:    conv.Action,
	}
	if outcome == domain.OutcomeClarify {
		r.Question = message
	}
	return r
}

func (e *Engine) base(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: sessionID}
}

func hasType(tokens []domain.Token, t domain.TokenType) bool {
	for _, tok := range tokens {
		if tok.Type == t {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
