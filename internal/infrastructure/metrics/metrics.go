package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/banking/internal/usecase"
)

// Metrics holds all Prometheus metrics and implements usecase.MetricsRecorder.
type Metrics struct {
	// Transfer metrics
	Transfers        *prometheus.CounterVec
	TransferDuration prometheus.Histogram
	TransferAmount   prometheus.Histogram

	// Balance metrics
	BalanceLookups *prometheus.CounterVec
}

// New creates all Prometheus metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Transfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_transfers_total",
				Help: "Total transfers by terminal outcome",
			},
			[]string{"outcome"},
		),
		TransferDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "banking_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "banking_transfer_amount",
			Help:    "Amounts of committed transfers",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		BalanceLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_balance_lookups_total",
				Help: "Total balance lookups by source and outcome",
			},
			[]string{"source", "outcome"},
		),
	}
}

// ObserveTransfer records a finished transfer. Amounts are only observed for
// committed transfers.
func (m *Metrics) ObserveTransfer(outcome string, amount decimal.Decimal, duration time.Duration) {
	m.Transfers.WithLabelValues(outcome).Inc()
	m.TransferDuration.Observe(duration.Seconds())

	if outcome == usecase.OutcomeCommitted {
		m.TransferAmount.Observe(amount.InexactFloat64())
	}
}

// ObserveBalanceLookup records a balance read.
func (m *Metrics) ObserveBalanceLookup(source, outcome string) {
	m.BalanceLookups.WithLabelValues(source, outcome).Inc()
}
