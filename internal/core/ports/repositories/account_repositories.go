package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/quantabook/ledger_core/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountBalanceMutator applies balance deltas under optimistic concurrency.
type AccountBalanceMutator interface {
	// ApplyBalanceDeltaInTx adds delta to the account's derived balance and
	// increments its version, conditioned on the version still matching
	// expectedVersion. A stale version returns apperrors.ErrConcurrency; the
	// caller must abort the enclosing transaction and retry the whole posting.
	ApplyBalanceDeltaInTx(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal, expectedVersion int64, updatedBy string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountBalanceMutator
}
