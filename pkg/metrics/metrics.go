// Package metrics provides the Prometheus collectors an agent service exposes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agentmesh"

// Collector records auth and task metrics on its own registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	authEvents   *prometheus.CounterVec
	tasksTotal   *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector with a fresh registry, including Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		authEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_events_total",
				Help:      "Requests that failed the shared-secret check",
			},
			[]string{"agent", "decision", "reason"},
		),
		tasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Dispatched tasks by outcome",
			},
			[]string{"agent", "skill", "status", "kind"},
		),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Task dispatch duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"agent", "skill"},
		),
	}

	reg.MustRegister(
		c.authEvents,
		c.tasksTotal,
		c.taskDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordAuthEvent counts one warn_and_allow or reject decision.
func (c *Collector) RecordAuthEvent(agent, decision, reason string) {
	if c == nil {
		return
	}
	c.authEvents.WithLabelValues(agent, decision, reason).Inc()
}

// RecordTask counts one dispatched task. kind is empty for successes.
func (c *Collector) RecordTask(agent, skill, status, kind string, duration time.Duration) {
	if c == nil {
		return
	}
	c.tasksTotal.WithLabelValues(agent, skill, status, kind).Inc()
	c.taskDuration.WithLabelValues(agent, skill).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
