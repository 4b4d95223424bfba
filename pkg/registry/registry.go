// Package registry holds the immutable set of forms and the handler bound to
// each of their actions.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/hearth/pkg/actions"
	"github.com/aretw0/hearth/pkg/domain"
)

// entry locates one registered action.
type entry struct {
	form    int
	action  int
	handler actions.Handler
}

// Registry is built once at start-up and is read-only afterwards, so it is
// safe for concurrent use without locking.
type Registry struct {
	forms   []domain.Form
	entries map[domain.ActionType]entry
}

// New validates forms and binds every action to its handler.
// It fails if any registered action has no handler.
func New(forms []domain.Form, handlers actions.Handlers) (*Registry, error) {
	if err := Validate(forms); err != nil {
		return nil, err
	}

	r := &Registry{
		forms:   cloneForms(forms),
		entries: make(map[domain.ActionType]entry),
	}

	var errs []error
	for fi, form := range r.forms {
		for ai, action := range form.Actions {
			h := handlers.For(action.Type)
			if h == nil {
				errs = append(errs, fmt.Errorf("action %s of form %q has no handler", action.Type, form.Name))
				continue
			}
			r.entries[action.Type] = entry{form: fi, action: ai, handler: h}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Validate checks a set of form descriptors:
//   - form names are unique and non-empty, with at least one global keyword;
//   - every action type is known and registered only once across all forms;
//   - every action has at least one keyword;
//   - slot names are unique per action and slot types are known.
func Validate(forms []domain.Form) error {
	var errs []error
	formNames := make(map[string]bool)
	owners := make(map[domain.ActionType]string)

	for _, form := range forms {
		name := strings.TrimSpace(form.Name)
		if name == "" {
			errs = append(errs, errors.New("form with empty name"))
		} else if formNames[name] {
			errs = append(errs, fmt.Errorf("duplicate form %q", name))
		}
		formNames[name] = true

		if len(nonEmpty(form.Keywords)) == 0 {
			errs = append(errs, fmt.Errorf("form %q has no global keywords", name))
		}
		if len(form.Actions) == 0 {
			errs = append(errs, fmt.Errorf("form %q has no actions", name))
		}

		for _, action := range form.Actions {
			if !action.Type.IsValid() {
				errs = append(errs, fmt.Errorf("form %q: unknown action type %q", name, action.Type))
				continue
			}
			if owner, dup := owners[action.Type]; dup {
				errs = append(errs, fmt.Errorf("action %s registered in form %q and form %q", action.Type, owner, name))
			}
			owners[action.Type] = name

			if len(nonEmpty(action.Keywords)) == 0 {
				errs = append(errs, fmt.Errorf("action %s has no keywords", action.Type))
			}

			slotNames := make(map[string]bool)
			for _, slot := range action.Slots {
				if slot.Name == "" {
					errs = append(errs, fmt.Errorf("action %s has a slot with no name", action.Type))
				} else if slotNames[slot.Name] {
					errs = append(errs, fmt.Errorf("action %s declares slot %q twice", action.Type, slot.Name))
				}
				slotNames[slot.Name] = true
				if !slot.Type.IsValid() {
					errs = append(errs, fmt.Errorf("action %s slot %q: unknown token type %q", action.Type, slot.Name, slot.Type))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Forms returns the registered forms in registration order.
func (r *Registry) Forms() []domain.Form {
	return cloneForms(r.forms)
}

// Form returns the form registered under name.
func (r *Registry) Form(name string) (domain.Form, bool) {
	for _, f := range r.forms {
		if f.Name == name {
			return f, true
		}
	}
	return domain.Form{}, false
}

// Lookup returns the form and action registered for t.
func (r *Registry) Lookup(t domain.ActionType) (*domain.Form, *domain.Action, bool) {
	e, ok := r.entries[t]
	if !ok {
		return nil, nil, false
	}
	return &r.forms[e.form], &r.forms[e.form].Actions[e.action], true
}

// Handler returns the handler bound to t. Every registered action has one.
func (r *Registry) Handler(t domain.ActionType) (actions.Handler, bool) {
	e, ok := r.entries[t]
	return e.handler, ok
}

func nonEmpty(words []string) []string {
	var out []string
	for _, w := range words {
		if strings.TrimSpace(w) != "" {
			out = append(out, w)
		}
	}
	return out
}

func cloneForms(forms []domain.Form) []domain.Form {
	out := make([]domain.Form, len(forms))
	for i, f := range forms {
		f.Keywords = append([]string(nil), f.Keywords...)
		acts := make([]domain.Action, len(f.Actions))
		for j, a := range f.Actions {
			a.Keywords = append([]string(nil), a.Keywords...)
			a.Slots = append([]domain.Slot(nil), a.Slots...)
			acts[j] = a
		}
		f.Actions = acts
		out[i] = f
	}
	return out
}
