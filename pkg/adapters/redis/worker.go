package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Worker consumes a channel queue and answers each request on its reply list.
type Worker struct {
	cfg    queueConfig
	client *backend.Client
}

// NewWorker creates a worker over an existing client.
func NewWorker(client *backend.Client, opts ...QueueOption) *Worker {
	return &Worker{cfg: newQueueConfig(opts), client: client}
}

// Serve handles requests on channel one at a time until ctx is canceled.
// It returns nil on cancellation.
func (w *Worker) Serve(ctx context.Context, channel string, handler ports.RequestHandler) error {
	queue := w.cfg.queueKey(channel)
	w.cfg.logger.Info("Worker listening", "channel", channel, "queue", queue)

	for {
		if ctx.Err() != nil {
			return nil
		}

		res, err := w.client.BRPop(ctx, pollInterval, queue).Result()
		if errors.Is(err, backend.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.cfg.logger.Warn("Failed to read request queue", "channel", channel, "err", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollInterval):
			}
			continue
		}

		if err := w.handle(ctx, res[1], handler); err != nil {
			w.cfg.logger.Error("Failed to answer request", "channel", channel, "err", err)
		}
	}
}

func (w *Worker) handle(ctx context.Context, raw string, handler ports.RequestHandler) error {
	var req requestEnvelope
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return fmt.Errorf("malformed request envelope: %w", err)
	}

	reply := replyEnvelope{CorrelationID: req.CorrelationID}
	body, err := handler(ctx, req.Payload)
	if err != nil {
		reply.Error = err.Error()
		var remote *domain.RemoteError
		if errors.As(err, &remote) {
			reply.Error = remote.Message
			reply.Recoverable = remote.Recoverable
		}
	} else {
		reply.Body = json.RawMessage(body)
	}

	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to encode reply %s: %w", req.CorrelationID, err)
	}

	replyTo := req.ReplyTo
	if replyTo == "" {
		replyTo = w.cfg.replyKey(req.CorrelationID)
	}

	pipe := w.client.Pipeline()
	pipe.LPush(ctx, replyTo, data)
	pipe.Expire(ctx, replyTo, w.cfg.replyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push reply %s: %w", req.CorrelationID, err)
	}
	w.cfg.logger.Debug("Request answered", "correlation_id", req.CorrelationID, "failed", reply.Error != "")
	return nil
}
