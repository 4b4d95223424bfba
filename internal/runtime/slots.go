package runtime

import "github.com/aretw0/hearth/pkg/domain"

// Resolution is the outcome of binding tokens to an action's slots.
// Missing is set when a required slot could not be bound; Bindings then
// holds only the slots declared before it.
type Resolution struct {
	Bindings domain.Bindings
	Missing  *domain.Slot
}

// Complete reports whether every required slot was bound.
func (r Resolution) Complete() bool {
	return r.Missing == nil
}

// Resolve binds tokens to the slots of action in declaration order. Each slot
// takes the first not yet consumed token of its type. Resolution halts on the
// first required slot left unbound; optional slots are simply left out.
func Resolve(action *domain.Action, tokens []domain.Token) Resolution {
	res := Resolution{Bindings: make(domain.Bindings, len(action.Slots))}
	consumed := make([]bool, len(tokens))

	for i := range action.Slots {
		slot := action.Slots[i]
		bound := false
		for j, tok := range tokens {
			if consumed[j] || tok.Type != slot.Type {
				continue
			}
			consumed[j] = true
			res.Bindings[slot.Name] = tok
			bound = true
			break
		}
		if !bound && slot.Required() {
			res.Missing = &slot
			return res
		}
	}
	return res
}
