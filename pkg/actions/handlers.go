// Package actions binds every domain.ActionType to the code that executes it.
package actions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/hearth/internal/logging"
	"github.com/aretw0/hearth/pkg/dispatch"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/ports"
)

// Handler executes a resolved call. It is the only side-effecting step of
// the pipeline.
type Handler func(ctx context.Context, call *domain.Call) (*domain.Result, error)

// Handlers has one field per action type. A nil field is reported by
// Missing and rejected by the registry at start-up.
type Handlers struct {
	VpnStart  Handler
	VpnStop   Handler
	VpnStatus Handler

	MusicPlay  Handler
	MusicPause Handler

	LightsOn         Handler
	LightsOff        Handler
	LightsBrightness Handler
}

// For returns the handler bound to t, or nil.
func (h Handlers) For(t domain.ActionType) Handler {
	switch t {
	case domain.ActionVpnStart:
		return h.VpnStart
	case domain.ActionVpnStop:
		return h.VpnStop
	case domain.ActionVpnStatus:
		return h.VpnStatus
	case domain.ActionMusicPlay:
		return h.MusicPlay
	case domain.ActionMusicPause:
		return h.MusicPause
	case domain.ActionLightsOn:
		return h.LightsOn
	case domain.ActionLightsOff:
		return h.LightsOff
	case domain.ActionLightsBrightness:
		return h.LightsBrightness
	default:
		return nil
	}
}

// Missing lists the action types that have no handler.
func (h Handlers) Missing() []domain.ActionType {
	var missing []domain.ActionType
	for _, t := range domain.AllActionTypes() {
		if h.For(t) == nil {
			missing = append(missing, t)
		}
	}
	return missing
}

// Deps are the collaborators the built-in handlers use.
type Deps struct {
	Dispatcher *dispatch.Dispatcher
	Files      ports.FileLister
	Config     ports.ConfigStore
	// Recovery runs once before the single retry of a recoverable failure.
	Recovery dispatch.RecoveryFunc
	Logger   *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Config == nil {
		d.Config = emptyConfig{}
	}
	return d
}

// NewHandlers binds the built-in handlers to deps.
func NewHandlers(deps Deps) Handlers {
	forward := Forward(deps)
	return Handlers{
		VpnStart:  VpnStart(deps),
		VpnStop:   forward,
		VpnStatus: forward,

		MusicPlay:  MusicPlay(deps),
		MusicPause: forward,

		LightsOn:         forward,
		LightsOff:        forward,
		LightsBrightness: forward,
	}
}

// Forward sends the call's bindings as props to the form's channel.
func Forward(deps Deps) Handler {
	deps = deps.withDefaults()
	return func(ctx context.Context, call *domain.Call) (*domain.Result, error) {
		return execute(ctx, deps, call, domain.NewDispatchRequest(call.Action.Type, call.Props()))
	}
}

// RefreshCredentials returns a recovery callback that asks the auth channel
// to renew the credentials the workers use.
func RefreshCredentials(d *dispatch.Dispatcher, channel string) dispatch.RecoveryFunc {
	return func(ctx context.Context) error {
		_, err := d.Dispatch(ctx, domain.NewDispatchRequest(domain.RequestRefreshCredentials, nil), channel)
		if err != nil {
			return fmt.Errorf("refresh credentials: %w", err)
		}
		return nil
	}
}

// Channel resolves the worker channel of form: "channels.<form>" in the
// config store, then the form's own Channel, then its name.
func Channel(cfg ports.ConfigStore, form domain.Form) string {
	if ch := configString(cfg, "channels."+form.Name, ""); ch != "" {
		return ch
	}
	if form.Channel != "" {
		return form.Channel
	}
	return form.Name
}

func execute(ctx context.Context, deps Deps, call *domain.Call, req domain.DispatchRequest) (*domain.Result, error) {
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("%s: no dispatcher configured", call.Action.Type)
	}
	channel := Channel(deps.Config, call.Form)

	deps.Logger.Debug("Executing action", "action", call.Action.Type, "channel", channel)
	resp, err := deps.Dispatcher.ExecuteWithRetry(ctx, req, channel, deps.Recovery)
	if err != nil {
		return nil, err
	}

	msg := resp.Message()
	if msg == "" {
		msg = defaultMessage(req)
	}
	return &domain.Result{Message: msg, Request: &req, Response: resp}, nil
}

func defaultMessage(req domain.DispatchRequest) string {
	switch req.Name {
	case domain.ActionVpnStart:
		return fmt.Sprintf("Connecting VPN with profile %v.", req.Props["vpnFileName"])
	case domain.ActionVpnStop:
		return "VPN disconnected."
	case domain.ActionMusicPlay:
		if q, ok := req.Props["query"]; ok {
			return fmt.Sprintf("Playing %v.", q)
		}
		return "Resuming music."
	case domain.ActionMusicPause:
		return "Music paused."
	case domain.ActionLightsOn:
		return "Lights on."
	case domain.ActionLightsOff:
		return "Lights off."
	case domain.ActionLightsBrightness:
		return fmt.Sprintf("Brightness set to %v.", req.Props["level"])
	default:
		return "Done."
	}
}

func configString(cfg ports.ConfigStore, key, def string) string {
	if cfg == nil {
		return def
	}
	v, ok := cfg.Get(key)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return def
	}
	return s
}

type emptyConfig struct{}

func (emptyConfig) Get(string) (any, bool) { return nil, false }
