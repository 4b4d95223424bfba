package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/hearth/pkg/adapters/memory"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	conv := domain.NewConversation("s1")
	conv.Tokens = []domain.Token{{Type: domain.TokenFreeText, Value: "vpn"}}
	require.NoError(t, store.Save(ctx, "s1", conv))

	conv.Tokens[0].Value = "mutated"
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "vpn", loaded.Tokens[0].Value)
}

func TestMemoryBroker_Contract(t *testing.T) {
	broker := memory.NewBroker()
	ports.RunBrokerContract(t, broker, broker.Handle)
}

func TestMemoryBroker_RequiresConnect(t *testing.T) {
	broker := memory.NewBroker()
	_, err := broker.Request(context.Background(), "vpn", []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)

	require.NoError(t, broker.Connect(context.Background()))
	require.NoError(t, broker.Close())
	_, err = broker.Request(context.Background(), "vpn", []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)
}

func TestMemoryBroker_CancelIsNotATimeout(t *testing.T) {
	broker := memory.NewBroker()
	require.NoError(t, broker.Connect(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := broker.Request(ctx, "nobody", []byte(`{}`))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrDispatchTimeout)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = broker.Request(ctx, "nobody", []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrDispatchTimeout)
}

func TestFiles(t *testing.T) {
	files := memory.NewFiles(map[string][]string{
		"/etc/vpn/": {"vpn_france_paris.ovpn", "vpn_france_lyon.ovpn"},
	})

	names, err := files.ListFiles(context.Background(), "/etc/vpn")
	require.NoError(t, err)
	assert.Equal(t, []string{"vpn_france_lyon.ovpn", "vpn_france_paris.ovpn"}, names)

	_, err = files.ListFiles(context.Background(), "/missing")
	assert.ErrorIs(t, err, domain.ErrLookup)
}
