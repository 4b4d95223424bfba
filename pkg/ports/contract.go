package ports

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/hearth/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		conv := domain.NewConversation(sessionID)
		conv.Form = "vpn"
		conv.Action = domain.ActionVpnStart
		conv.Tokens = []domain.Token{{Type: domain.TokenFreeText, Value: "vpn", Position: 0}}
		conv.Pending = "country"
		conv.Enter(domain.PhaseAwaitingSlot)

		err := store.Save(ctx, sessionID, conv)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.PhaseAwaitingSlot, loaded.Phase)
		assert.Equal(t, domain.ActionVpnStart, loaded.Action)
		assert.Equal(t, "country", loaded.Pending)
		require.Len(t, loaded.Tokens, 1)
		assert.Equal(t, "vpn", loaded.Tokens[0].Value)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewConversation(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewConversation(id1))
		_ = store.Save(ctx, id2, domain.NewConversation(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunBrokerContract verifies request/response semantics of a Broker.
// serve must start answering requests on the given channel with the handler
// (for example by registering it, or by launching a worker goroutine).
func RunBrokerContract(t *testing.T, broker Broker, serve func(channel string, handler RequestHandler)) {
	ctx := context.Background()

	serve("contract-echo", func(ctx context.Context, payload []byte) ([]byte, error) {
		return []byte(fmt.Sprintf(`{"echo":%s}`, payload)), nil
	})
	serve("contract-fail", func(ctx context.Context, payload []byte) ([]byte, error) {
		return nil, &domain.RemoteError{Message: "credentials expired", Recoverable: true}
	})

	t.Run("Connect is idempotent", func(t *testing.T) {
		require.NoError(t, broker.Connect(ctx))
		require.NoError(t, broker.Connect(ctx))
	})

	t.Run("Request returns correlated reply", func(t *testing.T) {
		require.NoError(t, broker.Connect(ctx))
		reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		reply, err := broker.Request(reqCtx, "contract-echo", []byte(`{"name":"VpnStatus","props":{}}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"echo":{"name":"VpnStatus","props":{}}}`, string(reply))
	})

	t.Run("Worker errors keep their class", func(t *testing.T) {
		require.NoError(t, broker.Connect(ctx))
		reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		_, err := broker.Request(reqCtx, "contract-fail", []byte(`{}`))
		require.Error(t, err)
		assert.True(t, domain.IsRecoverable(err), "expected recoverable error, got %v", err)

		var remote *domain.RemoteError
		require.True(t, errors.As(err, &remote))
		assert.Equal(t, "credentials expired", remote.Message)
	})

	t.Run("Request without consumer times out", func(t *testing.T) {
		require.NoError(t, broker.Connect(ctx))
		reqCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
		defer cancel()

		_, err := broker.Request(reqCtx, "contract-nobody-listens", []byte(`{}`))
		assert.ErrorIs(t, err, domain.ErrDispatchTimeout)
	})
}
