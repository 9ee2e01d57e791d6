// Package obs exposes the control loop's operational metrics to Prometheus.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dm/netopt-go/internal/model"
)

// Metrics holds the Prometheus collectors updated by the coordinator.
type Metrics struct {
	cyclesTotal      *prometheus.CounterVec
	actionsTotal     *prometheus.CounterVec
	anomaliesTotal   *prometheus.CounterVec
	healthScore      prometheus.Gauge
	nodeHealth       *prometheus.GaugeVec
	improvementScore prometheus.Gauge
	cycleDuration    prometheus.Histogram
	decisionSource   *prometheus.CounterVec
}

// NewMetrics builds and registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netopt_cycles_total",
			Help: "Completed optimization cycles by status.",
		}, []string{"status"}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netopt_actions_total",
			Help: "Executed actions by type and outcome.",
		}, []string{"action", "outcome"}),
		anomaliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netopt_anomalies_total",
			Help: "Detected anomalies by type and severity.",
		}, []string{"type", "severity"}),
		healthScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netopt_network_health_score",
			Help: "Current network health score, 0 to 100.",
		}),
		nodeHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netopt_node_health_score",
			Help: "Per-node health score, 0 to 100.",
		}, []string{"node"}),
		improvementScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netopt_improvement_score",
			Help: "Health delta measured by the last feedback evaluation.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "netopt_cycle_duration_seconds",
			Help:    "Wall-clock duration of a full optimization cycle.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		decisionSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netopt_decisions_total",
			Help: "Decisions made by source (backend, fallback, short_circuit).",
		}, []string{"source"}),
	}
	reg.MustRegister(
		m.cyclesTotal,
		m.actionsTotal,
		m.anomaliesTotal,
		m.healthScore,
		m.nodeHealth,
		m.improvementScore,
		m.cycleDuration,
		m.decisionSource,
	)
	return m
}

// ObserveCycle records one completed cycle.
func (m *Metrics) ObserveCycle(status model.CycleStatus, seconds float64) {
	m.cyclesTotal.WithLabelValues(string(status)).Inc()
	m.cycleDuration.Observe(seconds)
}

// ObserveAction records one executed action.
func (m *Metrics) ObserveAction(action model.ActionType, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.actionsTotal.WithLabelValues(string(action), outcome).Inc()
}

// ObserveAnomaly records one detected anomaly.
func (m *Metrics) ObserveAnomaly(a model.Anomaly) {
	m.anomaliesTotal.WithLabelValues(string(a.Type), string(a.Severity)).Inc()
}

// SetHealth updates the network and per-node health gauges.
func (m *Metrics) SetHealth(network float64, nodes map[string]float64) {
	m.healthScore.Set(network)
	for id, score := range nodes {
		m.nodeHealth.WithLabelValues(id).Set(score)
	}
}

// SetImprovement updates the improvement gauge from the latest evaluation.
func (m *Metrics) SetImprovement(v float64) {
	m.improvementScore.Set(v)
}

// ObserveDecision records where a decision came from.
func (m *Metrics) ObserveDecision(dec model.Decision) {
	source := "backend"
	switch {
	case dec.Fallback:
		source = "fallback"
	case !dec.ActionRequired && len(dec.Actions) == 0 && dec.Confidence == 1.0:
		source = "short_circuit"
	}
	m.decisionSource.WithLabelValues(source).Inc()
}
