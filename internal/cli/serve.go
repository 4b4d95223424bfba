package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/hearth/internal/config"
	"github.com/aretw0/hearth/internal/worker"
	httpAdapter "github.com/aretw0/hearth/pkg/adapters/http"
	"github.com/aretw0/hearth/pkg/adapters/redis"
	backend "github.com/redis/go-redis/v9"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// Serve runs the HTTP API on addr until ctx is done.
func Serve(ctx context.Context, app *App, addr string) error {
	srv := &http.Server{
		Addr: addr,
		Handler: httpAdapter.NewHandler(app.Assistant,
			httpAdapter.WithMetrics(app.Metrics.Handler()),
			httpAdapter.WithLogger(app.Logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting hearth server", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		app.Logger.Info("hearth server stopped")
		return nil
	}
}

// WorkerOptions configures RunWorkers.
type WorkerOptions struct {
	Channels    []string
	ExpireEvery int
}

// RunWorkers serves the demo worker on each channel of the Redis broker
// until ctx is done.
func RunWorkers(ctx context.Context, cfg *config.Config, opts WorkerOptions) error {
	if cfg.Broker.Backend != "redis" {
		return errors.New("the worker needs broker.backend: redis")
	}
	if len(opts.Channels) == 0 {
		return errors.New("no channels to serve")
	}

	logger := NewLogger(cfg.LogLevel, false)
	client := backend.NewClient(redisOptions(cfg))
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("broker %s: %w", cfg.Broker.Address, err)
	}

	demo := worker.NewDemo(worker.WithExpireEvery(opts.ExpireEvery), worker.WithLogger(logger))
	w := redis.NewWorker(client,
		redis.WithQueuePrefix(cfg.Broker.Prefix),
		redis.WithReplyTTL(cfg.Broker.ReplyTTL),
		redis.WithQueueLogger(logger),
	)

	var wg sync.WaitGroup
	errs := make([]error, len(opts.Channels))
	for i, ch := range opts.Channels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = w.Serve(ctx, ch, demo.Handle)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}
