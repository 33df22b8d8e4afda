package services

import (
	"context"

	"github.com/quantabook/ledger_core/internal/core/domain"
	"github.com/quantabook/ledger_core/internal/dto"
)

// ReconciliationSvcFacade independently recomputes totals and balances from
// raw entries and compares them to stored aggregates. Read-only.
type ReconciliationSvcFacade interface {
	// Reconcile sums entries matching the filter and reports debit/credit
	// parity. When the filter names an account, the account's balance is also
	// recomputed from history and compared to the stored derived balance.
	Reconcile(ctx context.Context, filter domain.ReconciliationFilter) (*domain.ReconciliationResult, error)

	// GetAccountBalance reports an account's stored and recomputed balances
	// plus their consistency, for the per-account balance endpoint.
	GetAccountBalance(ctx context.Context, accountID string, currencyCode string) (*dto.AccountBalanceResponse, error)
}
