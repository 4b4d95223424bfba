// Package dispatch sends resolved actions to remote workers over a Broker and
// applies the single recovery-then-retry policy.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/hearth/internal/logging"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/ports"
)

// DefaultTimeout bounds how long a single attempt waits for its reply.
const DefaultTimeout = 10 * time.Second

// RecoveryFunc repairs the condition behind a recoverable failure, for
// example by refreshing an expired credential. It runs at most once per
// ExecuteWithRetry call.
type RecoveryFunc func(ctx context.Context) error

// Classifier decides whether a failed attempt qualifies for recovery.
type Classifier func(error) bool

// Dispatcher serializes requests and awaits the correlated reply.
type Dispatcher struct {
	broker   ports.Broker
	timeout  time.Duration
	classify Classifier
	hooks    domain.Hooks
	logger   *slog.Logger
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// WithClassifier replaces domain.IsRecoverable as the retry classifier.
func WithClassifier(c Classifier) Option {
	return func(dp *Dispatcher) {
		if c != nil {
			dp.classify = c
		}
	}
}

// WithHooks registers dispatch lifecycle hooks.
func WithHooks(h domain.Hooks) Option {
	return func(dp *Dispatcher) {
		dp.hooks = h
	}
}

// WithLogger configures a logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(dp *Dispatcher) {
		dp.logger = logger
	}
}

// New creates a Dispatcher over broker.
func New(broker ports.Broker, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		broker:   broker,
		timeout:  DefaultTimeout,
		classify: domain.IsRecoverable,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch performs one connect and one attempt, with no retry.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.DispatchRequest, channel string) (*domain.DispatchResponse, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}
	return d.send(ctx, req, channel, 1)
}

// ExecuteWithRetry opens the broker connection once and sends req. If that
// attempt fails with an error the classifier accepts, it runs recovery once
// and replays the same request once on the same connection. A failed open is
// terminal. Every error it returns wraps domain.ErrTerminalDispatch. A nil
// recovery still allows the single replay.
func (d *Dispatcher) ExecuteWithRetry(ctx context.Context, req domain.DispatchRequest, channel string, recovery RecoveryFunc) (*domain.DispatchResponse, error) {
	if err := d.connect(ctx); err != nil {
		return nil, terminal(err)
	}

	resp, err := d.send(ctx, req, channel, 1)
	if err == nil {
		return resp, nil
	}
	if !d.classify(err) {
		return nil, terminal(err)
	}

	d.logger.Info("Dispatch failed with recoverable error, recovering",
		"channel", channel,
		"name", req.Name,
		"err", err,
	)
	if recovery != nil {
		if rerr := recovery(ctx); rerr != nil {
			return nil, terminal(errors.Join(err, fmt.Errorf("recovery: %w", rerr)))
		}
	}

	resp, err = d.send(ctx, req, channel, 2)
	if err != nil {
		return nil, terminal(err)
	}
	return resp, nil
}

func (d *Dispatcher) connect(ctx context.Context) error {
	if err := d.broker.Connect(ctx); err != nil {
		if errors.Is(err, domain.ErrBrokerUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrBrokerUnavailable, err)
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, req domain.DispatchRequest, channel string, attempt int) (*domain.DispatchResponse, error) {
	payload, err := json.Marshal(domain.NewDispatchRequest(req.Name, req.Props))
	if err != nil {
		return nil, fmt.Errorf("failed to encode request %s: %w", req.Name, err)
	}

	event := &domain.DispatchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDispatch},
		Channel:   channel,
		Name:      req.Name,
		Attempt:   attempt,
	}
	if d.hooks.OnDispatch != nil {
		d.hooks.OnDispatch(ctx, event)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	body, err := d.broker.Request(attemptCtx, channel, payload)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrDispatchTimeout) {
		err = fmt.Errorf("%w: %w", domain.ErrDispatchTimeout, err)
	}

	done := *event
	done.Type = domain.EventDispatchReturn
	done.Timestamp = time.Now()
	done.Duration = time.Since(start)
	done.Err = err
	if d.hooks.OnDispatchReturn != nil {
		d.hooks.OnDispatchReturn(ctx, &done)
	}

	if err != nil {
		d.logger.Debug("Dispatch attempt failed", "channel", channel, "name", req.Name, "attempt", attempt, "err", err)
		return nil, err
	}
	d.logger.Debug("Dispatch attempt succeeded", "channel", channel, "name", req.Name, "attempt", attempt, "duration", done.Duration)
	return &domain.DispatchResponse{Body: json.RawMessage(body)}, nil
}

func terminal(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrTerminalDispatch, err)
}
