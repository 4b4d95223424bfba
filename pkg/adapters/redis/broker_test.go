package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/hearth/pkg/adapters/redis"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBroker_Contract(t *testing.T) {
	_, client := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	broker := redis.NewBrokerFromClient(client)
	worker := redis.NewWorker(client)

	ports.RunBrokerContract(t, broker, func(channel string, handler ports.RequestHandler) {
		go func() { _ = worker.Serve(ctx, channel, handler) }()
	})
}

func TestRedisBroker_ConnectFailure(t *testing.T) {
	broker := redis.NewBroker(&backend.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer broker.Close()

	err := broker.Connect(context.Background())
	assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)
	assert.True(t, domain.IsRecoverable(err))
}

func TestRedisBroker_RequestBeforeConnect(t *testing.T) {
	broker := redis.NewBroker(&backend.Options{Addr: "127.0.0.1:1"})
	_, err := broker.Request(context.Background(), "vpn", []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)
}

func TestRedisBroker_EnvelopeOnQueue(t *testing.T) {
	mr, client := newClient(t)
	broker := redis.NewBrokerFromClient(client, redis.WithQueuePrefix("test:"))
	require.NoError(t, broker.Connect(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 1100*time.Millisecond)
	defer cancel()
	_, err := broker.Request(ctx, "vpn", []byte(`{"name":"VpnStop","props":{}}`))
	require.ErrorIs(t, err, domain.ErrDispatchTimeout)

	items, err := mr.List("test:queue:vpn")
	require.NoError(t, err)
	require.Len(t, items, 1)

	var env struct {
		CorrelationID string          `json:"correlation_id"`
		ReplyTo       string          `json:"reply_to"`
		Payload       json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(items[0]), &env))
	assert.NotEmpty(t, env.CorrelationID)
	assert.Equal(t, "test:reply:"+env.CorrelationID, env.ReplyTo)
	assert.JSONEq(t, `{"name":"VpnStop","props":{}}`, string(env.Payload))
}

func TestRedisWorker_ReplyExpires(t *testing.T) {
	mr, client := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := redis.NewWorker(client, redis.WithReplyTTL(5*time.Second))
	go func() {
		_ = worker.Serve(ctx, "vpn", func(ctx context.Context, payload []byte) ([]byte, error) {
			return []byte(`{"message":"ok"}`), nil
		})
	}()

	// Enqueue a request whose requester is gone: nobody pops the reply.
	env := `{"correlation_id":"abc","reply_to":"hearth:reply:abc","payload":{}}`
	require.NoError(t, client.LPush(ctx, "hearth:queue:vpn", env).Err())

	require.Eventually(t, func() bool { return mr.Exists("hearth:reply:abc") }, 3*time.Second, 20*time.Millisecond)
	assert.Greater(t, mr.TTL("hearth:reply:abc"), time.Duration(0))

	mr.FastForward(6 * time.Second)
	assert.False(t, mr.Exists("hearth:reply:abc"), "unclaimed replies are garbage collected")
}
