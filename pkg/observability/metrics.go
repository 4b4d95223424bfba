package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/hearth/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the assistant's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	commands         *prometheus.CounterVec
	matches          *prometheus.CounterVec
	clarifications   *prometheus.CounterVec
	dispatchAttempts *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors, plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hearth_commands_total",
				Help: "Interpreted utterances by action and outcome.",
			},
			[]string{"action", "outcome"},
		),
		matches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hearth_matches_total",
				Help: "Utterances matched to an action.",
			},
			[]string{"form", "action"},
		),
		clarifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hearth_clarifications_total",
				Help: "Clarifying questions asked for a missing slot.",
			},
			[]string{"action", "slot"},
		),
		dispatchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hearth_dispatch_attempts_total",
				Help: "Dispatch attempts by channel, attempt number and result.",
			},
			[]string{"channel", "attempt", "result"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hearth_dispatch_duration_seconds",
				Help:    "Round trip of one dispatch attempt.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"channel"},
		),
	}

	m.registry.MustRegister(
		m.commands, m.matches, m.clarifications, m.dispatchAttempts, m.dispatchDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, e.g. to add collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records every lifecycle event.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnMatch: func(ctx context.Context, e *domain.MatchEvent) {
			m.matches.WithLabelValues(e.Form, string(e.Action)).Inc()
		},
		OnClarify: func(ctx context.Context, e *domain.ClarifyEvent) {
			m.clarifications.WithLabelValues(string(e.Action), e.Slot).Inc()
		},
		OnDispatchReturn: func(ctx context.Context, e *domain.DispatchEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.dispatchAttempts.WithLabelValues(e.Channel, strconv.Itoa(e.Attempt), result).Inc()
			m.dispatchDuration.WithLabelValues(e.Channel).Observe(e.Duration.Seconds())
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			action := string(e.Action)
			if action == "" {
				action = "none"
			}
			m.commands.WithLabelValues(action, string(e.Outcome)).Inc()
		},
	}
}
