package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/hearth/pkg/domain"
)

// LogHooks writes one structured line per lifecycle event.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnMatch: func(ctx context.Context, e *domain.MatchEvent) {
			logger.Debug("command matched",
				"session_id", e.SessionID,
				"form", e.Form,
				"action", e.Action,
				"score", e.Score,
			)
		},
		OnClarify: func(ctx context.Context, e *domain.ClarifyEvent) {
			logger.Info("asking for slot",
				"session_id", e.SessionID,
				"action", e.Action,
				"slot", e.Slot,
			)
		},
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.Debug("dispatch",
				"channel", e.Channel,
				"name", e.Name,
				"attempt", e.Attempt,
			)
		},
		OnDispatchReturn: func(ctx context.Context, e *domain.DispatchEvent) {
			if e.Err != nil {
				logger.Warn("dispatch failed",
					"channel", e.Channel,
					"name", e.Name,
					"attempt", e.Attempt,
					"duration", e.Duration,
					"err", e.Err,
				)
				return
			}
			logger.Debug("dispatch returned",
				"channel", e.Channel,
				"name", e.Name,
				"attempt", e.Attempt,
				"duration", e.Duration,
			)
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			logger.Info("command finished",
				"session_id", e.SessionID,
				"action", e.Action,
				"outcome", e.Outcome,
			)
		},
	}
}
