// Package metrics exposes Prometheus counters for the invoicing pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service counters. A nil *Metrics is valid and every
// method becomes a no-op, which keeps tests free of registry setup.
type Metrics struct {
	invoicesCreated   prometheus.Counter
	invoicesProcessed prometheus.Counter
	invoicesFailed    prometheus.Counter
	drainRuns         prometheus.Counter
}

// New registers the service counters on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		invoicesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "invoicing_invoices_created_total",
			Help: "Number of invoice drafts accepted and queued for submission.",
		}),
		invoicesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "invoicing_invoices_processed_total",
			Help: "Number of invoices authorized by the billing authority.",
		}),
		invoicesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "invoicing_invoices_failed_total",
			Help: "Number of invoice submissions rejected or errored.",
		}),
		drainRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "invoicing_queue_drain_runs_total",
			Help: "Number of queue drain executions that acquired the lock.",
		}),
	}
}

func (m *Metrics) IncInvoicesCreated() {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc()
}

func (m *Metrics) IncInvoicesProcessed() {
	if m == nil {
		return
	}
	m.invoicesProcessed.Inc()
}

func (m *Metrics) IncInvoicesFailed() {
	if m == nil {
		return
	}
	m.invoicesFailed.Inc()
}

func (m *Metrics) IncDrainRuns() {
	if m == nil {
		return
	}
	m.drainRuns.Inc()
}
