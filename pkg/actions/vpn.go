package actions

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/hearth/pkg/disambiguate"
	"github.com/aretw0/hearth/pkg/domain"
)

const (
	// DefaultVPNDir is read when "vpn.dir" is not configured.
	DefaultVPNDir = "/etc/openvpn/client"
	// CountrySlot is the slot VpnStart binds the country to.
	CountrySlot = "country"
)

// VpnStart picks the VPN profile the utterance refers to and dispatches
// {"vpnFileName": <profile without extension>}.
//
// Profiles are the files of "vpn.dir" (optionally filtered by
// "vpn.extension") whose name contains the country. When several remain,
// the tokens after the country narrow them; a tie is reported as
// *domain.AmbiguousResourceError.
func VpnStart(deps Deps) Handler {
	deps = deps.withDefaults()
	return func(ctx context.Context, call *domain.Call) (*domain.Result, error) {
		country, ok := call.Bindings[CountrySlot]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingSlot, CountrySlot)
		}
		if deps.Files == nil {
			return nil, fmt.Errorf("%w: no file lister configured", domain.ErrLookup)
		}

		dir := configString(deps.Config, "vpn.dir", DefaultVPNDir)
		files, err := deps.Files.ListFiles(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("%w: listing %s: %w", domain.ErrLookup, dir, err)
		}

		ext := configString(deps.Config, "vpn.extension", "")
		needle := disambiguate.Normalize(country.Value)
		var candidates []string
		for _, name := range files {
			if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
				continue
			}
			if strings.Contains(disambiguate.Normalize(name), needle) {
				candidates = append(candidates, name)
			}
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: no VPN profile for %s in %s", domain.ErrLookup, country.Value, dir)
		}

		name, err := disambiguate.Pick(candidates, domain.After(call.Tokens, country.Position))
		if err != nil {
			return nil, err
		}
		profile := strings.TrimSuffix(name, filepath.Ext(name))

		deps.Logger.Debug("Resolved VPN profile", "country", country.Value, "profile", profile, "candidates", len(candidates))
		req := domain.NewDispatchRequest(domain.ActionVpnStart, map[string]any{"vpnFileName": profile})
		return execute(ctx, deps, call, req)
	}
}
