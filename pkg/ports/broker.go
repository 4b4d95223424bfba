package ports

import "context"

// Broker is the request/response side of the message queue.
// Correlating a reply with its request is the adapter's job.
type Broker interface {
	// Connect opens the connection, or reuses it if already open.
	// It is safe to call before every dispatch.
	Connect(ctx context.Context) error

	// Request publishes payload on the named channel and waits for the
	// correlated reply. The wait is bounded by the context deadline.
	Request(ctx context.Context, channel string, payload []byte) ([]byte, error)

	// Close releases the connection.
	Close() error
}

// RequestHandler is the worker side of a channel: it receives a request
// payload and returns the reply body.
type RequestHandler func(ctx context.Context, payload []byte) ([]byte, error)
