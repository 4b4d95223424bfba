package observability_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	h := m.Hooks()
	ctx := context.Background()

	h.OnMatch(ctx, &domain.MatchEvent{Form: "vpn", Action: domain.ActionVpnStart, Score: 1})
	h.OnClarify(ctx, &domain.ClarifyEvent{Action: domain.ActionVpnStart, Slot: "country"})
	h.OnDispatchReturn(ctx, &domain.DispatchEvent{Channel: "vpn", Attempt: 1, Duration: 5 * time.Millisecond, Err: errors.New("expired")})
	h.OnDispatchReturn(ctx, &domain.DispatchEvent{Channel: "vpn", Attempt: 2, Duration: 5 * time.Millisecond})
	h.OnOutcome(ctx, &domain.OutcomeEvent{Action: domain.ActionVpnStart, Outcome: domain.OutcomeDone})
	h.OnOutcome(ctx, &domain.OutcomeEvent{Outcome: domain.OutcomeNoMatch})

	out := scrape(t, m)
	assert.Contains(t, out, `hearth_matches_total{action="VpnStart",form="vpn"} 1`)
	assert.Contains(t, out, `hearth_clarifications_total{action="VpnStart",slot="country"} 1`)
	assert.Contains(t, out, `hearth_dispatch_attempts_total{attempt="1",channel="vpn",result="error"} 1`)
	assert.Contains(t, out, `hearth_dispatch_attempts_total{attempt="2",channel="vpn",result="ok"} 1`)
	assert.Contains(t, out, `hearth_dispatch_duration_seconds_count{channel="vpn"} 2`)
	assert.Contains(t, out, `hearth_commands_total{action="VpnStart",outcome="done"} 1`)
	assert.Contains(t, out, `hearth_commands_total{action="none",outcome="no_match"} 1`)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a, b := observability.NewMetrics(), observability.NewMetrics()
	a.Hooks().OnOutcome(context.Background(), &domain.OutcomeEvent{Outcome: domain.OutcomeDone, Action: domain.ActionLightsOn})

	assert.Contains(t, scrape(t, a), `hearth_commands_total{action="LightsOn",outcome="done"} 1`)
	assert.NotContains(t, scrape(t, b), `hearth_commands_total{action="LightsOn"`)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := domain.MergeHooks(observability.LogHooks(logger))
	ctx := context.Background()

	h.OnDispatchReturn(ctx, &domain.DispatchEvent{Channel: "music", Name: domain.ActionMusicPlay, Attempt: 1, Err: errors.New("boom")})
	h.OnOutcome(ctx, &domain.OutcomeEvent{EventBase: domain.EventBase{SessionID: "s1"}, Action: domain.ActionMusicPlay, Outcome: domain.OutcomeFailed})

	out := buf.String()
	assert.Contains(t, out, "dispatch failed")
	assert.Contains(t, out, "err=boom")
	assert.Contains(t, out, "command finished")
	assert.Contains(t, out, "session_id=s1")
}
