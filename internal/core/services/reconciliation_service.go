package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quantabook/ledger_core/internal/apperrors"
	"github.com/quantabook/ledger_core/internal/core/domain"
	portsrepo "github.com/quantabook/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/dto"
	"github.com/quantabook/ledger_core/internal/middleware"
)

// reconciliationService recomputes ledger-wide sums and per-account balances
// from the entry table, which is the source of truth. Stored account balances
// are a derived cache and are only ever compared against, never corrected
// here.
type reconciliationService struct {
	entryRepo   portsrepo.EntryReader
	accountRepo portsrepo.AccountReader
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(entryRepo portsrepo.EntryReader, accountRepo portsrepo.AccountReader) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// Reconcile recomputes debit/credit totals over the filtered entry set and
// reports whether they balance. When the filter names an account, the
// account's recomputed balance is compared against the stored one.
func (s *reconciliationService) Reconcile(ctx context.Context, filter domain.ReconciliationFilter) (*domain.ReconciliationResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	sums, err := s.entryRepo.SumEntries(ctx, filter)
	if err != nil {
		logger.Error("Failed to sum entries for reconciliation", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to sum entries: %w", err)
	}

	result := &domain.ReconciliationResult{
		TotalDebits:    sums.TotalDebits,
		TotalCredits:   sums.TotalCredits,
		Discrepancy:    sums.TotalDebits.Sub(sums.TotalCredits),
		EntriesChecked: sums.Count,
	}
	result.IsBalanced = result.Discrepancy.IsZero()

	if !result.IsBalanced {
		reconciliationImbalances.Inc()
		discrepant, err := s.entryRepo.FindDiscrepantTransactions(ctx, filter)
		if err != nil {
			logger.Error("Failed to find discrepant transactions", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to find discrepant transactions: %w", err)
		}
		result.DiscrepantTransactions = discrepant
		logger.Warn("Reconciliation found an imbalance",
			slog.String("discrepancy", result.Discrepancy.String()),
			slog.Int("discrepant_transactions", len(discrepant)),
		)
	}

	if filter.AccountID != "" {
		accountSection, err := s.reconcileAccount(ctx, filter.AccountID)
		if err != nil {
			return nil, err
		}
		result.Account = accountSection
	}

	return result, nil
}

func (s *reconciliationService) reconcileAccount(ctx context.Context, accountID string) (*domain.AccountReconciliation, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	computed, lastEntryAt, err := s.entryRepo.ComputeAccountBalance(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance for account %s: %w", accountID, err)
	}

	return &domain.AccountReconciliation{
		AccountID:       account.AccountID,
		CurrencyCode:    account.CurrencyCode,
		StoredBalance:   account.Balance,
		ComputedBalance: computed,
		IsConsistent:    account.Balance.Equal(computed),
		LastEntryAt:     lastEntryAt,
	}, nil
}

// GetAccountBalance returns the stored balance alongside the balance
// recomputed from entries, so callers can see drift without a full
// reconciliation run.
func (s *reconciliationService) GetAccountBalance(ctx context.Context, accountID string, currencyCode string) (*dto.AccountBalanceResponse, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if currencyCode != "" && currencyCode != account.CurrencyCode {
		return nil, fmt.Errorf("%w: account %s holds %s, not %s",
			apperrors.ErrValidation, accountID, account.CurrencyCode, currencyCode)
	}

	computed, lastEntryAt, err := s.entryRepo.ComputeAccountBalance(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance for account %s: %w", accountID, err)
	}

	return &dto.AccountBalanceResponse{
		AccountID:       account.AccountID,
		CurrencyCode:    account.CurrencyCode,
		StoredBalance:   account.Balance,
		ComputedBalance: computed,
		IsConsistent:    account.Balance.Equal(computed),
		LastEntryAt:     lastEntryAt,
	}, nil
}
