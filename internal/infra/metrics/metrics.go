// Package metrics exposes the daemon's quantitative state over HTTP,
// alongside the log-based status surface `soba status` already reports:
// tick counts, active-Issue gauges, and phase spawn/failure counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors holds every metric the daemon updates. A process registers
// exactly one of these against its own prometheus.Registry so tests can
// assert on metric values without touching the global default registry.
type Collectors struct {
	registry *prometheus.Registry

	TicksTotal        prometheus.Counter
	TickFailuresTotal prometheus.Counter
	ActiveIssues      prometheus.Gauge
	PhaseSpawnsTotal  *prometheus.CounterVec
	PhaseFailedTotal  *prometheus.CounterVec
	PRsMergedTotal    prometheus.Counter
	StaleSessionsTotal prometheus.Counter
}

// New registers the daemon's collectors against a fresh registry.
func New() *Collectors {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collectors{
		registry: registry,
		TicksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "soba",
			Name:      "ticks_total",
			Help:      "Total number of scheduler ticks completed.",
		}),
		TickFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "soba",
			Name:      "tick_failures_total",
			Help:      "Total number of scheduler ticks that returned an error.",
		}),
		ActiveIssues: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "soba",
			Name:      "active_issues",
			Help:      "Number of open Issues currently carrying a soba: trigger or in-progress label.",
		}),
		PhaseSpawnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soba",
			Name:      "phase_spawns_total",
			Help:      "Total number of phase commands the Workflow Executor sent to tmux, by phase.",
		}, []string{"phase"}),
		PhaseFailedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soba",
			Name:      "phase_failed_total",
			Help:      "Total number of phase executions that failed before a command was sent, by phase.",
		}, []string{"phase"}),
		PRsMergedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "soba",
			Name:      "prs_merged_total",
			Help:      "Total number of pull requests auto-merged by the PR merge watcher.",
		}),
		StaleSessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "soba",
			Name:      "stale_sessions_removed_total",
			Help:      "Total number of tmux sessions removed by the cleanup sweep.",
		}),
	}
}

// Handler returns the http.Handler to mount at /metrics.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
