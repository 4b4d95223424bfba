package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/hearth/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hearth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvBrokerAddr, "")
	t.Setenv(EnvLogLevel, "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.Broker.Backend)
	assert.Equal(t, 10*time.Second, cfg.Broker.Timeout)
	assert.Equal(t, time.Minute, cfg.Broker.ReplyTTL)
	assert.Equal(t, "hearth:", cfg.Broker.Prefix)
	assert.Equal(t, 24*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, "/etc/openvpn/client", cfg.VPN.Dir)
	assert.Equal(t, ".ovpn", cfg.VPN.Extension)
	assert.Equal(t, "auth", cfg.Auth.Channel)
	assert.Empty(t, cfg.Path)

	forms, err := cfg.DomainForms()
	require.NoError(t, err)
	assert.Nil(t, forms)
}

func TestLoad_MergesUserFileOverDefaults(t *testing.T) {
	t.Setenv(EnvBrokerAddr, "")
	t.Setenv(EnvLogLevel, "")
	path := writeConfig(t, `
log_level: debug
broker:
  backend: redis
  timeout: 2s
vpn:
  dir: /srv/vpn
channels:
  vpn: vpn-control
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "redis", cfg.Broker.Backend)
	assert.Equal(t, 2*time.Second, cfg.Broker.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Broker.Address, "untouched keys keep their default")
	assert.Equal(t, "/srv/vpn", cfg.VPN.Dir)
	assert.Equal(t, ".ovpn", cfg.VPN.Extension)
	assert.Equal(t, "vpn-control", cfg.Channels["vpn"])

	store := cfg.Store()
	assert.Equal(t, "vpn-control", store.String("channels.vpn", ""))
	assert.Equal(t, "/srv/vpn", store.String("vpn.dir", ""))
	assert.Equal(t, "fallback", store.String("channels.music", "fallback"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "broker:\n  address: redis.lan:6379\n")
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvBrokerAddr, "10.0.0.5:6380")
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvSessionKey, "c2VjcmV0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "10.0.0.5:6380", cfg.Broker.Address)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "c2VjcmV0", cfg.Sessions.EncryptionKey)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "broker: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := Load(writeConfig(t, "broker:\n  timeout: soon\n"))
		assert.Error(t, err)
	})
}

func TestLoad_Forms(t *testing.T) {
	path := writeConfig(t, `
forms:
  - name: heating
    keywords: [heating, thermostat]
    actions:
      - type: LightsOn
        keywords: [on, warm]
        slots:
          - name: level
            type: NUMBER
            question: How warm?
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	forms, err := cfg.DomainForms()
	require.NoError(t, err)
	require.Len(t, forms, 1)

	f := forms[0]
	assert.Equal(t, "heating", f.Name)
	assert.Equal(t, []string{"heating", "thermostat"}, f.Keywords)
	require.Len(t, f.Actions, 1)
	assert.Equal(t, domain.ActionLightsOn, f.Actions[0].Type)
	require.Len(t, f.Actions[0].Slots, 1)
	assert.Equal(t, domain.Slot{Name: "level", Type: domain.TokenNumber, Question: "How warm?"}, f.Actions[0].Slots[0])
}

func TestFormDescriptor_RejectsUnknownTypes(t *testing.T) {
	_, err := FormDescriptor{
		Name:    "x",
		Actions: []ActionDescriptor{{Type: "Teleport"}},
	}.ToDomain()
	assert.Error(t, err)

	_, err = FormDescriptor{
		Name: "x",
		Actions: []ActionDescriptor{{
			Type:  string(domain.ActionLightsOn),
			Slots: []SlotDescriptor{{Name: "room", Type: "ROOM"}},
		}},
	}.ToDomain()
	assert.Error(t, err)
}

func TestStore_Get(t *testing.T) {
	s := NewStore(map[string]any{
		"vpn":   map[string]any{"dir": "/x", "port": 1194},
		"level": "info",
	})

	v, ok := s.Get("vpn.port")
	assert.True(t, ok)
	assert.Equal(t, 1194, v)

	_, ok = s.Get("vpn.missing")
	assert.False(t, ok)
	_, ok = s.Get("level.deeper")
	assert.False(t, ok)

	assert.Equal(t, "def", s.String("vpn.port", "def"), "non-string values fall back")
}
