package actions

import (
	"context"
	"strings"

	"github.com/aretw0/hearth/pkg/domain"
)

// MusicPlay dispatches the utterance minus the form and action vocabulary as
// the "query" prop. An utterance made only of keywords resumes playback.
func MusicPlay(deps Deps) Handler {
	deps = deps.withDefaults()
	return func(ctx context.Context, call *domain.Call) (*domain.Result, error) {
		vocabulary := make(map[string]struct{})
		for _, k := range append(append([]string(nil), call.Form.Keywords...), call.Action.Keywords...) {
			vocabulary[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
		}

		var words []string
		for _, tok := range call.Tokens {
			if _, ok := vocabulary[tok.Text()]; ok {
				continue
			}
			words = append(words, tok.Value)
		}

		props := call.Props()
		if len(words) > 0 {
			props["query"] = strings.Join(words, " ")
		}
		return execute(ctx, deps, call, domain.NewDispatchRequest(call.Action.Type, props))
	}
}
