package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	// HTTPRequestDuration tracks request latency by route template and status
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Booking metrics
var (
	// BookingsCreated counts new booking requests
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total booking requests created",
		},
	)

	// BookingDecisions counts landlord decisions by outcome
	BookingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_decisions_total",
			Help: "Booking approvals and rejections by outcome",
		},
		[]string{"outcome"},
	)

	// BookingsAutoRejected counts pending bookings rejected because an overlapping booking was confirmed
	BookingsAutoRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_auto_rejected_total",
			Help: "Pending bookings rejected by an overlapping confirmation",
		},
	)
)

// Wallet metrics
var (
	// WalletEntries counts ledger rows by transaction type
	WalletEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_ledger_entries_total",
			Help: "Wallet ledger rows written by type",
		},
		[]string{"type"},
	)

	// WalletTransferredSPY sums SPY moved between wallets
	WalletTransferredSPY = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_transferred_spy_total",
			Help: "Total SPY transferred between wallets",
		},
	)
)

// Job and cache metrics
var (
	// JobRuns counts background job executions by job and status
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_runs_total",
			Help: "Background job runs by job and status",
		},
		[]string{"job", "status"},
	)

	// JobAffectedRows counts rows changed by background jobs
	JobAffectedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_affected_rows_total",
			Help: "Rows updated by background jobs",
		},
		[]string{"job"},
	)

	// RedisOpsTotal tracks Redis operations by command and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis command latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)
