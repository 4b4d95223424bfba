package runtime

import (
	"strings"

	"github.com/aretw0/hearth/pkg/domain"
)

// Match selects the action of form that best fits tokens.
//
// The form is rejected unless at least one token equals one of its global
// keywords. Each action then scores one point per token equal to one of its
// keywords; the highest non-zero score wins and ties go to the action
// registered first. A nil action means no match.
func Match(form *domain.Form, tokens []domain.Token) (*domain.Action, int) {
	if form == nil || !mentions(form.Keywords, tokens) {
		return nil, 0
	}

	var best *domain.Action
	bestScore := 0
	for i := range form.Actions {
		score := overlap(form.Actions[i].Keywords, tokens)
		if score > bestScore {
			best = &form.Actions[i]
			bestScore = score
		}
	}
	return best, bestScore
}

// MatchAny runs Match over every form and keeps the best action overall.
// Ties go to the form registered first.
func MatchAny(forms []domain.Form, tokens []domain.Token) (*domain.Form, *domain.Action, int) {
	var (
		bestForm   *domain.Form
		bestAction *domain.Action
		bestScore  int
	)
	for i := range forms {
		action, score := Match(&forms[i], tokens)
		if action != nil && score > bestScore {
			bestForm, bestAction, bestScore = &forms[i], action, score
		}
	}
	return bestForm, bestAction, bestScore
}

func mentions(keywords []string, tokens []domain.Token) bool {
	set := keywordSet(keywords)
	for _, tok := range tokens {
		if _, ok := set[tok.Text()]; ok {
			return true
		}
	}
	return false
}

func overlap(keywords []string, tokens []domain.Token) int {
	set := keywordSet(keywords)
	score := 0
	for _, tok := range tokens {
		if _, ok := set[tok.Text()]; ok {
			score++
		}
	}
	return score
}

func keywordSet(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
	return set
}
