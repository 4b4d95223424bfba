package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionType identifies a registered command. The set is closed: every value
// must appear in AllActionTypes and have a handler bound at start-up.
type ActionType string

// Standard Action Types
const (
	ActionVpnStart  ActionType = "VpnStart"
	ActionVpnStop   ActionType = "VpnStop"
	ActionVpnStatus ActionType = "VpnStatus"

	ActionMusicPlay  ActionType = "MusicPlay"
	ActionMusicPause ActionType = "MusicPause"

	ActionLightsOn         ActionType = "LightsOn"
	ActionLightsOff        ActionType = "LightsOff"
	ActionLightsBrightness ActionType = "LightsBrightness"
)

// RequestRefreshCredentials is the request name sent to the auth channel when
// a worker reports expired credentials. It is not a user-facing action.
const RequestRefreshCredentials ActionType = "RefreshCredentials"

// AllActionTypes returns every user-facing action type.
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionVpnStart,
		ActionVpnStop,
		ActionVpnStatus,
		ActionMusicPlay,
		ActionMusicPause,
		ActionLightsOn,
		ActionLightsOff,
		ActionLightsBrightness,
	}
}

// IsValid checks if an ActionType is a known user-facing action.
func (a ActionType) IsValid() bool {
	for _, valid := range AllActionTypes() {
		if a == valid {
			return true
		}
	}
	return false
}

// String returns the string representation of an ActionType.
func (a ActionType) String() string {
	return string(a)
}

// ParseActionType converts a descriptor string into an ActionType.
func ParseActionType(s string) (ActionType, error) {
	for _, valid := range AllActionTypes() {
		if strings.EqualFold(string(valid), strings.TrimSpace(s)) {
			return valid, nil
		}
	}
	return "", fmt.Errorf("unknown action type %q", s)
}

// Slot declares a named parameter of an Action. A slot with a Question is
// required; the Question is asked when no token of its Type is available.
type Slot struct {
	Name     string    `json:"name" yaml:"name"`
	Type     TokenType `json:"type" yaml:"type"`
	Question string    `json:"question,omitempty" yaml:"question,omitempty"`
}

// Required reports whether the slot must be bound before the handler runs.
func (s Slot) Required() bool {
	return s.Question != ""
}

// Action is a registered command belonging to exactly one Form.
type Action struct {
	Type     ActionType `json:"type" yaml:"type"`
	Keywords []string   `json:"keywords" yaml:"keywords"`
	Slots    []Slot     `json:"slots,omitempty" yaml:"slots,omitempty"`
}

// Form groups actions under a shared vocabulary. At least one of its global
// Keywords must appear in an utterance before any of its actions can match.
type Form struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Channel  string   `json:"channel,omitempty" yaml:"channel,omitempty"`
	Actions  []Action `json:"actions" yaml:"actions"`
}

// Bindings maps slot names to the token bound to them for one matching attempt.
type Bindings map[string]Token

// Call is a fully resolved action ready for its handler.
type Call struct {
	Form     Form
	Action   Action
	Bindings Bindings
	Tokens   []Token
}

// Props converts the bindings into wire props.
func (c *Call) Props() map[string]any {
	props := make(map[string]any, len(c.Bindings))
	for name, tok := range c.Bindings {
		props[name] = tok.Any()
	}
	return props
}

// Result is what a handler returns on success.
type Result struct {
	Message  string            `json:"message,omitempty"`
	Request  *DispatchRequest  `json:"request,omitempty"`
	Response *DispatchResponse `json:"response,omitempty"`
}

// DispatchRequest is the wire payload sent to a worker.
type DispatchRequest struct {
	Name  ActionType     `json:"name"`
	Props map[string]any `json:"props"`
}

// NewDispatchRequest builds a request whose Props is never nil on the wire.
func NewDispatchRequest(name ActionType, props map[string]any) DispatchRequest {
	if props == nil {
		props = make(map[string]any)
	}
	return DispatchRequest{Name: name, Props: props}
}

// DispatchResponse is the worker's reply. Its body is opaque to the core;
// correlation with the request is owned by the broker adapter.
type DispatchResponse struct {
	Body json.RawMessage `json:"body,omitempty"`
}

// Message extracts a top-level "message" string from the body, if present.
func (r *DispatchResponse) Message() string {
	if r == nil || len(r.Body) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	return body.Message
}
