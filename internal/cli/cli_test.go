package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/hearth"
	"github.com/aretw0/hearth/internal/config"
	"github.com/aretw0/hearth/internal/logging"
	"github.com/aretw0/hearth/pkg/adapters/file"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, overrides map[string]any) *config.Config {
	t.Helper()
	raw := map[string]any{
		"log_level": "info",
		"broker": map[string]any{
			"backend":   "memory",
			"timeout":   "2s",
			"reply_ttl": "1m",
			"prefix":    "hearth:",
		},
		"sessions": map[string]any{"backend": "memory"},
		"auth":     map[string]any{"channel": "auth"},
		"vpn":      map[string]any{"dir": t.TempDir()},
	}
	for k, v := range overrides {
		raw[k] = v
	}
	cfg, err := config.Decode(raw)
	require.NoError(t, err)
	return cfg
}

func TestBootstrap_MemoryBackend(t *testing.T) {
	app, err := Bootstrap(testConfig(t, nil), logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Connect(context.Background()))
	require.NotNil(t, app.Demo)

	reply, err := app.Assistant.Say(context.Background(), "s1", "lights on")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDone, reply.Outcome, reply.Message)
	assert.Equal(t, "Lights on.", reply.Message)
	assert.Equal(t, 1, app.Demo.Served())
}

func TestBootstrap_FileSessions(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, map[string]any{"sessions": map[string]any{"backend": "file", "dir": dir}})
	app, err := Bootstrap(cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Assistant.Say(context.Background(), "s1", "vpn start")
	require.NoError(t, err)

	ids, err := app.Store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestBootstrap_SealedSessions(t *testing.T) {
	dir := t.TempDir()
	key := strings.Repeat("ab", 32)
	cfg := testConfig(t, map[string]any{"sessions": map[string]any{
		"backend":        "file",
		"dir":            dir,
		"encryption_key": key,
	}})
	app, err := Bootstrap(cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	reply, err := app.Assistant.Say(context.Background(), "s1", "vpn start")
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeClarify, reply.Outcome)

	raw, err := file.New(dir).Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.Pending)

	conv, err := app.Assistant.Session(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "country", conv.Pending)

	_, err = Bootstrap(testConfig(t, map[string]any{"sessions": map[string]any{
		"backend":        "memory",
		"encryption_key": "short",
	}}), logging.NewNop())
	assert.Error(t, err)
}

func TestBootstrap_Errors(t *testing.T) {
	_, err := Bootstrap(testConfig(t, map[string]any{"sessions": map[string]any{"backend": "etcd"}}), logging.NewNop())
	assert.Error(t, err)

	_, err = Bootstrap(testConfig(t, map[string]any{"broker": map[string]any{"backend": "kafka"}}), logging.NewNop())
	assert.Error(t, err)

	_, err = Bootstrap(testConfig(t, map[string]any{"forms": []any{
		map[string]any{"name": "vpn", "keywords": []any{"vpn"}, "actions": []any{
			map[string]any{"type": "VpnStart", "keywords": []any{"start"}},
			map[string]any{"type": "VpnStart", "keywords": []any{"go"}},
		}},
	}}), logging.NewNop())
	assert.Error(t, err, "duplicate actions are rejected")
}

func TestChannels(t *testing.T) {
	cfg := testConfig(t, map[string]any{"channels": map[string]any{"music": "spotify"}})
	got := Channels(cfg, hearth.DefaultForms())
	assert.Equal(t, []string{"vpn", "spotify", "lights", "auth"}, got)
}

func TestChat(t *testing.T) {
	app, err := Bootstrap(testConfig(t, nil), logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	var out bytes.Buffer
	err = Chat(context.Background(), app.Assistant, ChatOptions{
		SessionID: "chat",
		In:        strings.NewReader("lights dim\n40\n\nreset\nexit\nlights on\n"),
		Out:       &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "**What brightness level?**")
	assert.Contains(t, text, "Brightness set to 40.")
	assert.Contains(t, text, "Session 'chat' reset.")
	assert.NotContains(t, text, "Lights on.", "input after exit is ignored")
}

func TestChat_JSONAndEOF(t *testing.T) {
	app, err := Bootstrap(testConfig(t, nil), logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	var out bytes.Buffer
	err = Chat(context.Background(), app.Assistant, ChatOptions{
		SessionID: "chat",
		In:        strings.NewReader("make coffee\n"),
		Out:       &out,
		JSON:      true,
	})
	require.NoError(t, err)

	var reply domain.Reply
	require.NoError(t, json.Unmarshal(out.Bytes(), &reply))
	assert.Equal(t, domain.OutcomeNoMatch, reply.Outcome)
}

func TestRunWorkers_RequiresRedis(t *testing.T) {
	err := RunWorkers(context.Background(), testConfig(t, nil), WorkerOptions{Channels: []string{"vpn"}})
	assert.Error(t, err)
}

func TestRunWorkers_AnswersRedisBroker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, map[string]any{"broker": map[string]any{
		"backend":   "redis",
		"address":   mr.Addr(),
		"timeout":   "5s",
		"reply_ttl": "1m",
		"prefix":    "hearth:",
	}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunWorkers(ctx, cfg, WorkerOptions{Channels: []string{"lights", "auth"}})
	}()

	app, err := Bootstrap(cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close()
	require.Nil(t, app.Demo)

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer reqCancel()
	reply, err := app.Assistant.Say(reqCtx, "s1", "lights off")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDone, reply.Outcome, reply.Message)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop")
	}
}
