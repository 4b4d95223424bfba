package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventMatch          EventType = "match"
	EventClarify        EventType = "clarify"
	EventDispatch       EventType = "dispatch"
	EventDispatchReturn EventType = "dispatch_return"
	EventOutcome        EventType = "outcome"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// MatchEvent is emitted when an utterance matched an action.
type MatchEvent struct {
	EventBase
	Form   string     `json:"form"`
	Action ActionType `json:"action"`
	Score  int        `json:"score"`
}

// ClarifyEvent is emitted when resolution halts on a required slot.
type ClarifyEvent struct {
	EventBase
	Action   ActionType `json:"action"`
	Slot     string     `json:"slot"`
	Question string     `json:"question"`
}

// DispatchEvent represents one dispatch attempt (Attempt is 1 or 2).
type DispatchEvent struct {
	EventBase
	Channel  string        `json:"channel"`
	Name     ActionType    `json:"name"`
	Attempt  int           `json:"attempt"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// OutcomeEvent is emitted once per interpreted utterance.
type OutcomeEvent struct {
	EventBase
	Action  ActionType `json:"action,omitempty"`
	Outcome Outcome    `json:"outcome"`
}

// Hooks defines callbacks for pipeline observability. Nil fields are skipped.
type Hooks struct {
	OnMatch          func(context.Context, *MatchEvent)
	OnClarify        func(context.Context, *ClarifyEvent)
	OnDispatch       func(context.Context, *DispatchEvent)
	OnDispatchReturn func(context.Context, *DispatchEvent)
	OnOutcome        func(context.Context, *OutcomeEvent)
}

// MergeHooks fans every event out to each of the given hooks, in order.
func MergeHooks(all ...Hooks) Hooks {
	return Hooks{
		OnMatch: func(ctx context.Context, e *MatchEvent) {
			for _, h := range all {
				if h.OnMatch != nil {
					h.OnMatch(ctx, e)
				}
			}
		},
		OnClarify: func(ctx context.Context, e *ClarifyEvent) {
			for _, h := range all {
				if h.OnClarify != nil {
					h.OnClarify(ctx, e)
				}
			}
		},
		OnDispatch: func(ctx context.Context, e *DispatchEvent) {
			for _, h := range all {
				if h.OnDispatch != nil {
					h.OnDispatch(ctx, e)
				}
			}
		},
		OnDispatchReturn: func(ctx context.Context, e *DispatchEvent) {
			for _, h := range all {
				if h.OnDispatchReturn != nil {
					h.OnDispatchReturn(ctx, e)
				}
			}
		},
		OnOutcome: func(ctx context.Context, e *OutcomeEvent) {
			for _, h := range all {
				if h.OnOutcome != nil {
					h.OnOutcome(ctx, e)
				}
			}
		},
	}
}
