package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postingsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_postings_committed_total",
		Help: "Number of entry groups committed to the ledger.",
	})

	postingRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_posting_retries_total",
		Help: "Number of posting attempts retried after a version conflict.",
	})

	integrityFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_integrity_failures_total",
		Help: "Number of entries that failed checksum verification.",
	})

	reconciliationImbalances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_reconciliation_imbalances_total",
		Help: "Number of reconciliation runs that found an imbalance.",
	})
)
