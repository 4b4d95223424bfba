package domain

import "time"

// Phase is a step of the per-session interpretation state machine.
type Phase string

const (
	PhaseMatching     Phase = "matching"
	PhaseAwaitingSlot Phase = "awaiting_slot" // Halted on a required slot, waiting for a follow-up
	PhaseResolved     Phase = "resolved"
	PhaseDispatching  Phase = "dispatching"
	PhaseDone         Phase = "done"   // Sink: handler succeeded
	PhaseFailed       Phase = "failed" // Sink: no match or terminal error
)

// IsTerminal reports whether the phase is a sink.
func (p Phase) IsTerminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Outcome classifies a Reply for the user-facing surface.
type Outcome string

const (
	OutcomeDone      Outcome = "done"
	OutcomeClarify   Outcome = "clarify"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeFailed    Outcome = "failed"
)

// Conversation is the persisted state of one session.
type Conversation struct {
	SessionID string `json:"session_id"`
	Phase     Phase  `json:"phase"`

	// Form and Action identify the matched action once Phase leaves Matching.
	Form   string     `json:"form,omitempty"`
	Action ActionType `json:"action,omitempty"`

	// Tokens holds the utterance being resolved. A follow-up utterance is
	// appended to it when resuming from AwaitingSlot.
	Tokens []Token `json:"tokens,omitempty"`

	// Pending is the slot waiting for a follow-up (Phase == AwaitingSlot).
	Pending  string `json:"pending,omitempty"`
	Question string `json:"question,omitempty"`

	Outcome Outcome `json:"outcome,omitempty"`
	Message string  `json:"message,omitempty"`

	// History records the phases visited since the last reset.
	History []Phase `json:"history,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted conversation when the store is wrapped
	// by an encrypting middleware. Every other field is then left empty.
	Sealed string `json:"sealed,omitempty"`
}

// NewConversation creates a clean conversation in the Matching phase.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		Phase:     PhaseMatching,
		History:   []Phase{PhaseMatching},
		UpdatedAt: time.Now().UTC(),
	}
}

// Enter moves the conversation to the given phase and records it.
func (c *Conversation) Enter(p Phase) {
	c.Phase = p
	c.History = append(c.History, p)
	c.UpdatedAt = time.Now().UTC()
}

// Reset clears per-utterance data and returns to Matching.
func (c *Conversation) Reset() {
	c.Form = ""
	c.Action = ""
	c.Tokens = nil
	c.Pending = ""
	c.Question = ""
	c.Outcome = ""
	c.Message = ""
	c.History = nil
	c.Enter(PhaseMatching)
}

// Clone returns a deep copy, so stores never share slices with callers.
func (c *Conversation) Clone() *Conversation {
	out := *c
	if c.Tokens != nil {
		out.Tokens = append([]Token(nil), c.Tokens...)
	}
	if c.History != nil {
		out.History = append([]Phase(nil), c.History...)
	}
	return &out
}

// Reply is the result of interpreting one utterance.
type Reply struct {
	SessionID  string            `json:"session_id"`
	Outcome    Outcome           `json:"outcome"`
	Message    string            `json:"message"`
	Phase      Phase             `json:"phase"`
	Action     ActionType        `json:"action,omitempty"`
	Question   string            `json:"question,omitempty"`
	Candidates []string          `json:"candidates,omitempty"`
	Request    *DispatchRequest  `json:"request,omitempty"`
	Response   *DispatchResponse `json:"response,omitempty"`
}

// Succeeded reports whether the reply carries a non-failure outcome.
func (r *Reply) Succeeded() bool {
	return r.Outcome == OutcomeDone || r.Outcome == OutcomeClarify
}
