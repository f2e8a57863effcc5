// Package metrics exposes prometheus instruments for applied operations.
package metrics

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "teut"

// Result labels.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
)

// Metrics groups the ledger instruments on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	opsTotal    *prometheus.CounterVec
	opDuration  *prometheus.HistogramVec
	totalSupply prometheus.Gauge
	totalLocked prometheus.Gauge
}

// New creates and registers the ledger instruments.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operations applied, by kind and result.",
		}, []string{"kind", "result"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time to apply and commit an operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"kind"}),
		totalSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_supply",
			Help:      "Total token supply in base units (float approximation).",
		}),
		totalLocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_locked",
			Help:      "Total staked amount in base units (float approximation).",
		}),
	}
	m.registry.MustRegister(m.opsTotal, m.opDuration, m.totalSupply, m.totalLocked)
	return m
}

// Registry returns the registry holding the instruments.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOp records one operation outcome.
func (m *Metrics) ObserveOp(kind string, err error, elapsed time.Duration) {
	result := ResultOK
	if err != nil {
		result = ResultRejected
	}
	m.opsTotal.WithLabelValues(kind, result).Inc()
	m.opDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// SetSupply updates the supply gauges.
func (m *Metrics) SetSupply(supply, locked *uint256.Int) {
	m.totalSupply.Set(supply.Float64())
	m.totalLocked.Set(locked.Float64())
}

// WriteTextfile writes the current values in the node-exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
