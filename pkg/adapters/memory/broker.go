package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/ports"
)

// Broker implements ports.Broker in process. Handlers registered with Handle
// play the role of remote workers.
// Safe for concurrent use.
type Broker struct {
	mu        sync.RWMutex
	handlers  map[string]ports.RequestHandler
	connected bool
	connects  int
}

// NewBroker creates an in-process broker with no workers attached.
func NewBroker() *Broker {
	return &Broker{handlers: make(map[string]ports.RequestHandler)}
}

// Handle attaches handler as the worker for channel, replacing any previous one.
func (b *Broker) Handle(channel string, handler ports.RequestHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[channel] = handler
}

// Connect marks the broker as open. Calling it again reuses the connection.
func (b *Broker) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connects++
	b.connected = true
	return nil
}

// Connects reports how many times Connect was called.
func (b *Broker) Connects() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connects
}

// Request hands payload to the channel's handler and waits for its reply or
// for ctx to end. Without a handler it waits for ctx, like a queue nobody consumes.
func (b *Broker) Request(ctx context.Context, channel string, payload []byte) ([]byte, error) {
	b.mu.RLock()
	handler, ok := b.handlers[channel]
	connected := b.connected
	b.mu.RUnlock()

	if !connected {
		return nil, domain.ErrBrokerUnavailable
	}

	type reply struct {
		body []byte
		err  error
	}
	done := make(chan reply, 1)
	if ok {
		go func() {
			body, err := handler(ctx, append([]byte(nil), payload...))
			done <- reply{body: body, err: err}
		}()
	}

	select {
	case r := <-done:
		return r.body, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", domain.ErrDispatchTimeout, ctx.Err())
		}
		return nil, ctx.Err()
	}
}

// Close disconnects the broker.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
	return nil
}
