package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Stock transfer metrics
	TransfersCreated   prometheus.Counter
	TransfersSubmitted *prometheus.CounterVec
	TransfersCancelled *prometheus.CounterVec
	TransferErrors     *prometheus.CounterVec

	// Posting metrics
	PostingAmount      prometheus.Histogram
	PostingDuration    prometheus.Histogram
	RoundOffEntries    prometheus.Counter
	ConfigurationFails prometheus.Counter

	// Reconciliation metrics
	ReconciledLines *prometheus.CounterVec
	SkippedLines    *prometheus.CounterVec
	LockContention  prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
// A nil reg registers with the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TransfersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockledger_transfers_created_total",
			Help: "Total number of stock transfers created",
		}),
		TransfersSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_transfers_submitted_total",
				Help: "Total number of stock transfers submitted by direction",
			},
			[]string{"direction"},
		),
		TransfersCancelled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_transfers_cancelled_total",
				Help: "Total number of stock transfers cancelled by direction",
			},
			[]string{"direction"},
		),
		TransferErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_transfer_errors_total",
				Help: "Total number of stock transfer errors by operation",
			},
			[]string{"operation"},
		),

		PostingAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockledger_posting_amount",
			Help:    "Posted transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		PostingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockledger_posting_duration_seconds",
			Help:    "Duration of submit and cancel operations",
			Buckets: prometheus.DefBuckets,
		}),
		RoundOffEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockledger_round_off_entries_total",
			Help: "Total number of postings that needed a round off entry",
		}),
		ConfigurationFails: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockledger_configuration_errors_total",
			Help: "Total number of postings blocked by missing account settings",
		}),

		ReconciledLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_reconciled_lines_total",
				Help: "Total invoice lines updated by reconciliation",
			},
			[]string{"mode"},
		),
		SkippedLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_skipped_lines_total",
				Help: "Total transfer lines skipped by reconciliation for lacking an item or quantity",
			},
			[]string{"mode"},
		),
		LockContention: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockledger_invoice_lock_contention_total",
			Help: "Total number of times an invoice lock could not be obtained",
		}),

		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type", "status"},
		),

		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockledger_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
