package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/quantabook/ledger_core/internal/core/domain"
	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/platform/config"
)

var (
	integritySweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_integrity_sweeps_total",
		Help: "Number of scheduled integrity sweeps, by outcome.",
	}, []string{"outcome"})

	reconciliationSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_reconciliation_sweeps_total",
		Help: "Number of scheduled reconciliation sweeps, by outcome.",
	}, []string{"outcome"})
)

// IntegrityJob runs the scheduled checksum and reconciliation sweeps. The
// sweeps only observe: a finding raises a CRITICAL alert and is left for an
// operator, never repaired in place.
type IntegrityJob struct {
	integritySvc      portssvc.IntegritySvcFacade
	reconciliationSvc portssvc.ReconciliationSvcFacade
	alerter           portssvc.Alerter
	logger            *slog.Logger
	cfg               config.IntegrityJobConfig
}

// NewIntegrityJob creates the scheduled sweep runner.
func NewIntegrityJob(
	integritySvc portssvc.IntegritySvcFacade,
	reconciliationSvc portssvc.ReconciliationSvcFacade,
	alerter portssvc.Alerter,
	logger *slog.Logger,
	cfg config.IntegrityJobConfig,
) *IntegrityJob {
	return &IntegrityJob{
		integritySvc:      integritySvc,
		reconciliationSvc: reconciliationSvc,
		alerter:           alerter,
		logger:            logger,
		cfg:               cfg,
	}
}

// Start launches the sweep tickers and blocks until the context is done.
// Run it in its own goroutine.
func (j *IntegrityJob) Start(ctx context.Context) {
	if !j.cfg.Enabled {
		j.logger.Info("Integrity job disabled")
		return
	}

	checkTicker := time.NewTicker(j.cfg.CheckInterval)
	defer checkTicker.Stop()
	reconcileTicker := time.NewTicker(j.cfg.ReconciliationInterval)
	defer reconcileTicker.Stop()

	j.logger.Info("Integrity job started",
		slog.Duration("check_interval", j.cfg.CheckInterval),
		slog.Duration("reconciliation_interval", j.cfg.ReconciliationInterval),
	)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Integrity job stopped")
			return
		case <-checkTicker.C:
			j.RunIntegrityCheck(ctx)
		case <-reconcileTicker.C:
			j.RunReconciliation(ctx)
		}
	}
}

// RunIntegrityCheck sweeps every entry's checksum and alerts on any mismatch.
func (j *IntegrityJob) RunIntegrityCheck(ctx context.Context) {
	start := time.Now()

	report, err := j.integritySvc.RunValidation(ctx, j.cfg.BatchSize)
	if err != nil {
		integritySweeps.WithLabelValues("error").Inc()
		j.logger.Error("Integrity sweep failed", slog.String("error", err.Error()))
		return
	}

	if len(report.Failed) > 0 {
		integritySweeps.WithLabelValues("tampered").Inc()
		j.alerter.Critical(ctx, "ledger integrity violation detected", map[string]any{
			"entries_checked":        report.Checked,
			"failed_transactions":    report.Failed,
			"failed_transaction_cnt": len(report.Failed),
		})
		return
	}

	integritySweeps.WithLabelValues("clean").Inc()
	j.logger.Info("Integrity sweep clean",
		slog.Int64("entries_checked", report.Checked),
		slog.Duration("took", time.Since(start)),
	)
}

// RunReconciliation recomputes ledger-wide totals and alerts if debits and
// credits have drifted apart.
func (j *IntegrityJob) RunReconciliation(ctx context.Context) {
	start := time.Now()

	result, err := j.reconciliationSvc.Reconcile(ctx, domain.ReconciliationFilter{})
	if err != nil {
		reconciliationSweeps.WithLabelValues("error").Inc()
		j.logger.Error("Reconciliation sweep failed", slog.String("error", err.Error()))
		return
	}

	if !result.IsBalanced {
		reconciliationSweeps.WithLabelValues("imbalanced").Inc()
		j.alerter.Critical(ctx, "ledger reconciliation imbalance detected", map[string]any{
			"total_debits":            result.TotalDebits.String(),
			"total_credits":           result.TotalCredits.String(),
			"discrepancy":             result.Discrepancy.String(),
			"discrepant_transactions": result.DiscrepantTransactions,
		})
		return
	}

	reconciliationSweeps.WithLabelValues("balanced").Inc()
	j.logger.Info("Reconciliation sweep balanced",
		slog.Int64("entries_checked", result.EntriesChecked),
		slog.Duration("took", time.Since(start)),
	)
}
