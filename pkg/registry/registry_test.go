package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/hearth/pkg/actions"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, call *domain.Call) (*domain.Result, error) {
	return &domain.Result{Message: string(call.Action.Type)}, nil
}

func allHandlers() actions.Handlers {
	return actions.Handlers{
		VpnStart: noop, VpnStop: noop, VpnStatus: noop,
		MusicPlay: noop, MusicPause: noop,
		LightsOn: noop, LightsOff: noop, LightsBrightness: noop,
	}
}

func vpn() domain.Form {
	return domain.Form{
		Name:     "vpn",
		Keywords: []string{"vpn"},
		Actions: []domain.Action{
			{Type: domain.ActionVpnStart, Keywords: []string{"start"}, Slots: []domain.Slot{
				{Name: "country", Type: domain.TokenCountry, Question: "Which country?"},
			}},
			{Type: domain.ActionVpnStop, Keywords: []string{"stop"}},
		},
	}
}

func TestNew_BindsHandlers(t *testing.T) {
	reg, err := registry.New([]domain.Form{vpn()}, allHandlers())
	require.NoError(t, err)

	form, action, ok := reg.Lookup(domain.ActionVpnStop)
	require.True(t, ok)
	assert.Equal(t, "vpn", form.Name)
	assert.Equal(t, domain.ActionVpnStop, action.Type)

	h, ok := reg.Handler(domain.ActionVpnStart)
	require.True(t, ok)
	res, err := h(context.Background(), &domain.Call{Action: *action})
	require.NoError(t, err)
	assert.Equal(t, "VpnStop", res.Message)

	_, _, ok = reg.Lookup(domain.ActionLightsOn)
	assert.False(t, ok, "unregistered actions are not found")
}

func TestNew_MissingHandlerFailsAtStartup(t *testing.T) {
	h := allHandlers()
	h.VpnStop = nil

	_, err := registry.New([]domain.Form{vpn()}, h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VpnStop")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		forms func() []domain.Form
		want  string
	}{
		{"duplicate action in form", func() []domain.Form {
			f := vpn()
			f.Actions = append(f.Actions, domain.Action{Type: domain.ActionVpnStop, Keywords: []string{"halt"}})
			return []domain.Form{f}
		}, "registered in form"},
		{"duplicate action across forms", func() []domain.Form {
			other := domain.Form{Name: "net", Keywords: []string{"net"}, Actions: []domain.Action{
				{Type: domain.ActionVpnStart, Keywords: []string{"up"}},
			}}
			return []domain.Form{vpn(), other}
		}, "registered in form"},
		{"duplicate form", func() []domain.Form { return []domain.Form{vpn(), vpn()} }, "duplicate form"},
		{"no global keywords", func() []domain.Form {
			f := vpn()
			f.Keywords = []string{" "}
			return []domain.Form{f}
		}, "no global keywords"},
		{"unknown action", func() []domain.Form {
			f := vpn()
			f.Actions[1].Type = "Teleport"
			return []domain.Form{f}
		}, "unknown action type"},
		{"unknown slot type", func() []domain.Form {
			f := vpn()
			f.Actions[0].Slots[0].Type = "CITY"
			return []domain.Form{f}
		}, "unknown token type"},
		{"duplicate slot", func() []domain.Form {
			f := vpn()
			f.Actions[0].Slots = append(f.Actions[0].Slots, domain.Slot{Name: "country", Type: domain.TokenFreeText})
			return []domain.Form{f}
		}, "twice"},
		{"action without keywords", func() []domain.Form {
			f := vpn()
			f.Actions[1].Keywords = nil
			return []domain.Form{f}
		}, "has no keywords"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Validate(tt.forms())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, registry.Validate([]domain.Form{vpn()}))
}

func TestForms_ReturnsCopies(t *testing.T) {
	reg, err := registry.New([]domain.Form{vpn()}, allHandlers())
	require.NoError(t, err)

	forms := reg.Forms()
	forms[0].Actions[0].Keywords[0] = "mutated"

	again := reg.Forms()
	assert.Equal(t, "start", again[0].Actions[0].Keywords[0])
}
