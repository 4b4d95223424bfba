/*
Package dsl provides a Go DSL for declaring forms and their actions.

It is the programmatic counterpart of the YAML form descriptors read by the
configuration loader, handy for built-in forms and tests.

Example usage:

	b := dsl.New()

	b.Form("vpn").
		Keywords("vpn").
		Channel("vpn").
		Action(domain.ActionVpnStart, "start", "connect").
		Ask("country", domain.TokenCountry, "Which country should I connect to?").
		Action(domain.ActionVpnStop, "stop", "disconnect")

	forms, err := b.Build()
	// ... pass forms to registry.New(forms, handlers)
*/
package dsl
