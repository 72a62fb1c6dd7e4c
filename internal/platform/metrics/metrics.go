// Package metrics exposes the pipeline's Prometheus collectors and the
// /metrics handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	AdmissionsTotal  *prometheus.CounterVec
	EvaluationsTotal prometheus.Counter
	DecisionsTotal   *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		AdmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tarmac",
			Name:      "admissions_total",
			Help:      "Photo submission admission attempts by outcome.",
		}, []string{"outcome"}),
		EvaluationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tarmac",
			Name:      "evaluations_total",
			Help:      "Accepted photo evaluations.",
		}),
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tarmac",
			Name:      "decisions_total",
			Help:      "Finalized moderation decisions by status.",
		}, []string{"status"}),
	}
	registry.MustRegister(m.AdmissionsTotal, m.EvaluationsTotal, m.DecisionsTotal)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
