package dsl

import (
	"fmt"

	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/registry"
)

// Builder manages form construction. Forms keep the order in which they
// were first added.
type Builder struct {
	order []string
	forms map[string]*FormBuilder
}

// New creates a new form builder.
func New() *Builder {
	return &Builder{
		forms: make(map[string]*FormBuilder),
	}
}

// Form creates a form, or returns the existing builder for name.
func (b *Builder) Form(name string) *FormBuilder {
	if fb, ok := b.forms[name]; ok {
		return fb
	}
	fb := &FormBuilder{
		form:    domain.Form{Name: name},
		builder: b,
	}
	b.forms[name] = fb
	b.order = append(b.order, name)
	return fb
}

// Build returns the forms, validated with registry.Validate.
func (b *Builder) Build() ([]domain.Form, error) {
	forms := make([]domain.Form, 0, len(b.order))
	for _, name := range b.order {
		fb := b.forms[name]
		form := fb.form
		form.Actions = make([]domain.Action, len(fb.actions))
		for i, ab := range fb.actions {
			form.Actions[i] = ab.action
		}
		forms = append(forms, form)
	}

	if err := registry.Validate(forms); err != nil {
		return nil, fmt.Errorf("invalid forms: %w", err)
	}
	return forms, nil
}

// MustBuild is like Build but panics on error. Meant for static, built-in forms.
func (b *Builder) MustBuild() []domain.Form {
	forms, err := b.Build()
	if err != nil {
		panic(err)
	}
	return forms
}

// FormBuilder provides a fluent API for configuring a form.
type FormBuilder struct {
	form    domain.Form
	actions []*ActionBuilder
	builder *Builder
}

// Keywords adds global keywords; at least one must appear in an utterance.
func (f *FormBuilder) Keywords(words ...string) *FormBuilder {
	f.form.Keywords = append(f.form.Keywords, words...)
	return f
}

// Channel sets the worker channel the form's actions are dispatched to.
func (f *FormBuilder) Channel(name string) *FormBuilder {
	f.form.Channel = name
	return f
}

// Action adds an action triggered by keywords. Actions keep their order,
// which breaks scoring ties.
func (f *FormBuilder) Action(t domain.ActionType, keywords ...string) *ActionBuilder {
	ab := &ActionBuilder{
		action: domain.Action{Type: t, Keywords: keywords},
		form:   f,
	}
	f.actions = append(f.actions, ab)
	return ab
}

// ActionBuilder provides a fluent API for configuring an action.
type ActionBuilder struct {
	action domain.Action
	form   *FormBuilder
}

// Slot declares an optional slot.
func (a *ActionBuilder) Slot(name string, t domain.TokenType) *ActionBuilder {
	a.action.Slots = append(a.action.Slots, domain.Slot{Name: name, Type: t})
	return a
}

// Ask declares a required slot and the question asked when it is missing.
func (a *ActionBuilder) Ask(name string, t domain.TokenType, question string) *ActionBuilder {
	a.action.Slots = append(a.action.Slots, domain.Slot{Name: name, Type: t, Question: question})
	return a
}

// Action adds a sibling action to the same form.
func (a *ActionBuilder) Action(t domain.ActionType, keywords ...string) *ActionBuilder {
	return a.form.Action(t, keywords...)
}

// Form returns to the enclosing form.
func (a *ActionBuilder) Form() *FormBuilder {
	return a.form
}
