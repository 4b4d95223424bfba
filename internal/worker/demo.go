// Package worker provides a stand-in device worker for local use and demos.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/hearth/internal/logging"
	"github.com/aretw0/hearth/pkg/domain"
)

// Demo acknowledges every dispatch request without touching any device.
// With ExpireEvery > 0 it simulates credentials expiring on every Nth
// request: that request and all later ones fail as recoverable until a
// RefreshCredentials request arrives.
type Demo struct {
	ExpireEvery int

	logger  *slog.Logger
	mu      sync.Mutex
	served  int
	expired bool
}

// Option configures a Demo worker.
type Option func(*Demo)

// WithExpireEvery enables simulated credential expiry.
func WithExpireEvery(n int) Option {
	return func(d *Demo) {
		d.ExpireEvery = n
	}
}

// WithLogger logs every handled request.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Demo) {
		d.logger = logger
	}
}

// NewDemo creates a demo worker.
func NewDemo(opts ...Option) *Demo {
	d := &Demo{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle implements ports.RequestHandler.
func (d *Demo) Handle(ctx context.Context, payload []byte) ([]byte, error) {
	var req domain.DispatchRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, &domain.RemoteError{Message: fmt.Sprintf("malformed request: %v", err)}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if req.Name == domain.RequestRefreshCredentials {
		d.expired = false
		d.logger.Info("Credentials refreshed")
		return json.Marshal(map[string]any{"message": "Credentials refreshed.", "ok": true})
	}

	d.served++
	if d.ExpireEvery > 0 && d.served%d.ExpireEvery == 0 {
		d.expired = true
	}
	if d.expired {
		d.logger.Info("Rejecting request, credentials expired", "name", req.Name)
		return nil, &domain.RemoteError{Message: "credentials expired", Recoverable: true}
	}

	d.logger.Info("Handled request", "name", req.Name, "props", req.Props)
	return json.Marshal(map[string]any{"ok": true, "name": req.Name})
}

// Served reports how many action requests reached the worker.
func (d *Demo) Served() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.served
}
