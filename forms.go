package hearth

import (
	"github.com/aretw0/hearth/pkg/actions"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/dsl"
	"github.com/aretw0/hearth/pkg/registry"
)

// DefaultForms returns the built-in vpn, music and lights forms.
func DefaultForms() []domain.Form {
	b := dsl.New()

	b.Form("vpn").Keywords("vpn").
		Action(domain.ActionVpnStart, "start", "connect", "on").
		Ask(actions.CountrySlot, domain.TokenCountry, "Which country?").
		Action(domain.ActionVpnStop, "stop", "disconnect", "off").
		Action(domain.ActionVpnStatus, "status")

	b.Form("music").Keywords("music", "song", "spotify").
		Action(domain.ActionMusicPlay, "play", "put").
		Action(domain.ActionMusicPause, "pause", "stop")

	b.Form("lights").Keywords("lights", "light", "lamp").
		Action(domain.ActionLightsOn, "on").
		Action(domain.ActionLightsOff, "off").
		Action(domain.ActionLightsBrightness, "dim", "brightness", "level").
		Ask("level", domain.TokenNumber, "What brightness level?")

	return b.MustBuild()
}

// NewRegistry binds forms to handlers. An empty forms slice selects
// DefaultForms.
func NewRegistry(forms []domain.Form, handlers actions.Handlers) (*registry.Registry, error) {
	if len(forms) == 0 {
		forms = DefaultForms()
	}
	return registry.New(forms, handlers)
}
