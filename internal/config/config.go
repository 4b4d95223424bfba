// Package config loads hearth.yaml over the embedded defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/hearth/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath points at the config file when no path is given.
	EnvConfigPath = "HEARTH_CONFIG"
	// EnvBrokerAddr overrides broker.address.
	EnvBrokerAddr = "HEARTH_BROKER_ADDR"
	// EnvLogLevel overrides log_level.
	EnvLogLevel = "HEARTH_LOG_LEVEL"
	// EnvSessionKey overrides sessions.encryption_key.
	EnvSessionKey = "HEARTH_SESSION_KEY"
	// DefaultPath is tried when neither a path nor EnvConfigPath is set.
	DefaultPath = "hearth.yaml"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the typed view of the configuration.
type Config struct {
	LogLevel string            `mapstructure:"log_level"`
	Broker   BrokerConfig      `mapstructure:"broker"`
	Sessions SessionsConfig    `mapstructure:"sessions"`
	VPN      VPNConfig         `mapstructure:"vpn"`
	Auth     AuthConfig        `mapstructure:"auth"`
	Channels map[string]string `mapstructure:"channels"`
	Lexicon  LexiconConfig     `mapstructure:"lexicon"`
	HTTP     HTTPConfig        `mapstructure:"http"`
	Forms    []FormDescriptor  `mapstructure:"forms"`

	// Path is the file that was merged over the defaults, if any.
	Path string `mapstructure:"-"`

	store *Store
}

type BrokerConfig struct {
	Backend  string        `mapstructure:"backend"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	Timeout  time.Duration `mapstructure:"timeout"`
	ReplyTTL time.Duration `mapstructure:"reply_ttl"`
}

type SessionsConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Dir     string        `mapstructure:"dir"`
	Prefix  string        `mapstructure:"prefix"`
	Locking bool          `mapstructure:"locking"`

	// EncryptionKey enables sealed sessions when set (hex or base64, 32 bytes).
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

type VPNConfig struct {
	Dir       string `mapstructure:"dir"`
	Extension string `mapstructure:"extension"`
}

type AuthConfig struct {
	Channel string `mapstructure:"channel"`
}

type LexiconConfig struct {
	Countries []string `mapstructure:"countries"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// FormDescriptor is the configuration shape of a form.
type FormDescriptor struct {
	Name     string             `mapstructure:"name"`
	Keywords []string           `mapstructure:"keywords"`
	Channel  string             `mapstructure:"channel"`
	Actions  []ActionDescriptor `mapstructure:"actions"`
}

type ActionDescriptor struct {
	Type     string           `mapstructure:"type"`
	Keywords []string         `mapstructure:"keywords"`
	Slots    []SlotDescriptor `mapstructure:"slots"`
}

type SlotDescriptor struct {
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`
	Question string `mapstructure:"question"`
}

// ToDomain converts the descriptor, rejecting unknown action and token types.
func (d FormDescriptor) ToDomain() (domain.Form, error) {
	form := domain.Form{Name: d.Name, Keywords: d.Keywords, Channel: d.Channel}
	for _, a := range d.Actions {
		typ, err := domain.ParseActionType(a.Type)
		if err != nil {
			return domain.Form{}, fmt.Errorf("form %q: %w", d.Name, err)
		}
		action := domain.Action{Type: typ, Keywords: a.Keywords}
		for _, s := range a.Slots {
			tt, err := domain.ParseTokenType(s.Type)
			if err != nil {
				return domain.Form{}, fmt.Errorf("form %q action %s slot %q: %w", d.Name, typ, s.Name, err)
			}
			action.Slots = append(action.Slots, domain.Slot{Name: s.Name, Type: tt, Question: s.Question})
		}
		form.Actions = append(form.Actions, action)
	}
	return form, nil
}

// DomainForms converts every configured form. It returns nil when the config
// declares none.
func (c *Config) DomainForms() ([]domain.Form, error) {
	if len(c.Forms) == 0 {
		return nil, nil
	}
	forms := make([]domain.Form, 0, len(c.Forms))
	for _, d := range c.Forms {
		f, err := d.ToDomain()
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// Store returns the raw configuration as a ports.ConfigStore.
func (c *Config) Store() *Store {
	return c.store
}

// Load reads the defaults, merges the file at path over them, applies
// environment overrides and decodes the result. An empty path falls back to
// $HEARTH_CONFIG, then to ./hearth.yaml if it exists.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	raw, err := parse(defaultsYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else {
			user, err := parse(data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			merge(raw, user)
		}
	}

	applyEnv(raw)

	cfg, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Decode converts a raw configuration map into a Config.
func Decode(raw map[string]any) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.store = NewStore(raw)
	return &cfg, nil
}

// parse reads YAML (or JSON, which YAML accepts) into a map.
func parse(data []byte) (map[string]any, error) {
	out := make(map[string]any)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// merge copies src over dst, recursing into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				merge(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}

func applyEnv(raw map[string]any) {
	if addr := os.Getenv(EnvBrokerAddr); addr != "" {
		broker, _ := raw["broker"].(map[string]any)
		if broker == nil {
			broker = make(map[string]any)
			raw["broker"] = broker
		}
		broker["address"] = addr
	}
	if key := os.Getenv(EnvSessionKey); key != "" {
		sessions, _ := raw["sessions"].(map[string]any)
		if sessions == nil {
			sessions = make(map[string]any)
			raw["sessions"] = sessions
		}
		sessions["encryption_key"] = key
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		raw["log_level"] = strings.ToLower(level)
	}
}
