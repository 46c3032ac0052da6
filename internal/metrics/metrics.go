// Package metrics counts sends and drain steps in a Prometheus registry that
// can be written out for the node exporter textfile collector.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ligun0805/bzz-drain/internal/chain"
)

const (
	labelKind    = "kind"
	labelOutcome = "outcome"
	labelStep    = "step"
)

// Metrics implements both the chain and the drain observers.
type Metrics struct {
	registry *prometheus.Registry

	transactions *prometheus.CounterVec
	steps        *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := Metrics{
		registry: reg,
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bzzdrain_transactions_total",
			Help: "Transactions attempted, by kind and outcome.",
		}, []string{labelKind, labelOutcome}),
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bzzdrain_drain_steps_total",
			Help: "Drain pipeline steps, by step and outcome.",
		}, []string{labelStep, labelOutcome}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bzzdrain_transaction_seconds",
			Help:    "Duration of successful sends, from dial to confirmation.",
			Buckets: []float64{1, 2, 5, 10, 20, 40, 80, 160, 320},
		}, []string{labelKind}),
	}

	return &m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Transaction(kind string, err error, took time.Duration) {
	m.transactions.WithLabelValues(kind, Outcome(err)).Inc()
	if err == nil {
		m.latency.WithLabelValues(kind).Observe(took.Seconds())
	}
}

func (m *Metrics) Step(step string, outcome string) {
	m.steps.WithLabelValues(step, outcome).Inc()
}

// WriteTextfile writes the registry to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Outcome names the class of a send error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, chain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, chain.ErrSlippageExceeded):
		return "slippage"
	case errors.Is(err, chain.ErrConfirmationTimeout):
		return "timeout"
	case errors.Is(err, chain.ErrTransactionReverted):
		return "reverted"
	case errors.Is(err, chain.ErrBroadcastRejected):
		return "rejected"
	case errors.Is(err, chain.ErrRPCUnavailable), errors.Is(err, chain.ErrChainMismatch):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "interrupted"
	default:
		return "error"
	}
}
