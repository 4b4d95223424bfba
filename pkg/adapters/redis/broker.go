package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/hearth/internal/logging"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

const (
	// DefaultQueuePrefix namespaces request queues and reply lists.
	DefaultQueuePrefix = "hearth:"
	// DefaultReplyTTL bounds how long an unclaimed reply survives.
	DefaultReplyTTL = time.Minute
	// defaultWait is used when the request context carries no deadline.
	defaultWait = 10 * time.Second
	// pollInterval is the BRPOP timeout; go-redis rounds anything lower up to 1s.
	pollInterval = time.Second
)

// requestEnvelope wraps a dispatch payload on a request queue.
type requestEnvelope struct {
	CorrelationID string          `json:"correlation_id"`
	ReplyTo       string          `json:"reply_to"`
	Payload       json.RawMessage `json:"payload"`
	SentAt        time.Time       `json:"sent_at"`
}

// replyEnvelope carries the worker's answer back to the requester.
type replyEnvelope struct {
	CorrelationID string          `json:"correlation_id"`
	Body          json.RawMessage `json:"body,omitempty"`
	Error         string          `json:"error,omitempty"`
	Recoverable   bool            `json:"recoverable,omitempty"`
}

type queueConfig struct {
	prefix   string
	replyTTL time.Duration
	logger   *slog.Logger
}

// QueueOption configures a Broker or a Worker. Both sides must agree on the prefix.
type QueueOption func(*queueConfig)

// WithQueuePrefix overrides DefaultQueuePrefix.
func WithQueuePrefix(prefix string) QueueOption {
	return func(c *queueConfig) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithReplyTTL overrides DefaultReplyTTL.
func WithReplyTTL(ttl time.Duration) QueueOption {
	return func(c *queueConfig) {
		if ttl > 0 {
			c.replyTTL = ttl
		}
	}
}

// WithQueueLogger configures a logger.
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(c *queueConfig) {
		c.logger = logger
	}
}

func newQueueConfig(opts []QueueOption) queueConfig {
	c := queueConfig{
		prefix:   DefaultQueuePrefix,
		replyTTL: DefaultReplyTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c queueConfig) queueKey(channel string) string {
	return c.prefix + "queue:" + channel
}

func (c queueConfig) replyKey(correlationID string) string {
	return c.prefix + "reply:" + correlationID
}

// Broker implements ports.Broker as request/reply over Redis lists.
// A request is LPUSHed to the channel queue with a fresh correlation ID, and
// the reply is awaited with BRPOP on a list named after that ID.
type Broker struct {
	cfg queueConfig

	mu      sync.Mutex
	opts    *backend.Options
	client  *backend.Client
	ownsCli bool
}

// NewBroker creates a broker that opens its own client on the first Connect.
func NewBroker(opts *backend.Options, qopts ...QueueOption) *Broker {
	return &Broker{cfg: newQueueConfig(qopts), opts: opts, ownsCli: true}
}

// NewBrokerFromClient creates a broker over an existing client.
func NewBrokerFromClient(client *backend.Client, qopts ...QueueOption) *Broker {
	return &Broker{cfg: newQueueConfig(qopts), client: client}
}

// Connect opens the client if needed and checks it with PING. It is safe to
// call before every request; an open client is reused.
func (b *Broker) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		if b.opts == nil {
			return fmt.Errorf("%w: no redis options", domain.ErrBrokerUnavailable)
		}
		b.client = backend.NewClient(b.opts)
		b.cfg.logger.Debug("Opened broker connection", "addr", b.opts.Addr)
	}

	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBrokerUnavailable, err)
	}
	return nil
}

func (b *Broker) conn() (*backend.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return nil, fmt.Errorf("%w: not connected", domain.ErrBrokerUnavailable)
	}
	return b.client, nil
}

// Request sends payload to channel and waits for the correlated reply until
// ctx ends, or for 10s when ctx has no deadline.
func (b *Broker) Request(ctx context.Context, channel string, payload []byte) ([]byte, error) {
	client, err := b.conn()
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultWait)
		defer cancel()
	}

	id := uuid.NewString()
	env, err := json.Marshal(requestEnvelope{
		CorrelationID: id,
		ReplyTo:       b.cfg.replyKey(id),
		Payload:       json.RawMessage(payload),
		SentAt:        time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request envelope: %w", err)
	}

	if err := client.LPush(ctx, b.cfg.queueKey(channel), env).Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBrokerUnavailable, err)
	}
	b.cfg.logger.Debug("Request queued", "channel", channel, "correlation_id", id)

	for {
		if err := ctx.Err(); err != nil {
			return nil, timeoutOr(err)
		}

		res, err := client.BRPop(ctx, pollInterval, b.cfg.replyKey(id)).Result()
		if errors.Is(err, backend.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, timeoutOr(ctx.Err())
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrBrokerUnavailable, err)
		}

		// BRPOP returns [key, value].
		var reply replyEnvelope
		if err := json.Unmarshal([]byte(res[1]), &reply); err != nil {
			return nil, fmt.Errorf("failed to decode reply %s: %w", id, err)
		}
		if reply.Error != "" {
			return nil, &domain.RemoteError{Message: reply.Error, Recoverable: reply.Recoverable}
		}
		return reply.Body, nil
	}
}

// Close closes the client if the broker opened it.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil || !b.ownsCli {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	return err
}

func timeoutOr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrDispatchTimeout, err)
	}
	return err
}
