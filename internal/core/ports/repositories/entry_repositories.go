package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantabook/ledger_core/internal/core/domain"
)

// EntrySums holds aggregate debit/credit totals over a filtered entry scope.
type EntrySums struct {
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	Count        int64
}

// BalanceDelta is the net signed change a posting applies to one account,
// together with the account version observed when the delta was computed.
// The write is conditioned on that version still being current.
type BalanceDelta struct {
	Delta           decimal.Decimal
	ExpectedVersion int64
}

// EntryReader defines read operations for ledger entries.
type EntryReader interface {
	// FindEntriesByTransactionID retrieves all entries belonging to a transaction,
	// ordered deterministically.
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.Entry, error)

	// ListEntriesByAccountID retrieves a keyset-paginated page of an account's
	// entry history, newest first.
	ListEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Entry, *string, error)

	// ScanEntries returns up to limit entries with entry_id greater than
	// afterEntryID, ordered by entry_id. Used for bounded batch sweeps.
	ScanEntries(ctx context.Context, afterEntryID string, limit int) ([]domain.Entry, error)

	// SumEntries computes total debits, total credits and the entry count over
	// the filtered scope.
	SumEntries(ctx context.Context, filter domain.ReconciliationFilter) (EntrySums, error)

	// FindDiscrepantTransactions returns transaction ids whose own per-currency
	// debit/credit sums do not balance within the filtered scope.
	FindDiscrepantTransactions(ctx context.Context, filter domain.ReconciliationFilter) ([]string, error)

	// ComputeAccountBalance recomputes an account's signed balance purely from
	// its entry history, applying the account-type sign convention. Also
	// returns the timestamp of the account's most recent entry, if any.
	ComputeAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, *time.Time, error)
}

// EntryWriter defines the only write path that exists for entries: committing
// a posting. Update and delete are absent from the type on purpose; the
// append-only schema trigger is the backstop against out-of-band mutation.
type EntryWriter interface {
	// SavePosting inserts the entries and applies the balance deltas to the
	// touched accounts within one storage transaction. A stale account version
	// aborts everything with apperrors.ErrConcurrency; the caller retries the
	// whole posting.
	SavePosting(ctx context.Context, entries []domain.Entry, deltas map[string]BalanceDelta, updatedBy string) error
}

// EntryRepositoryFacade combines entry read and write operations.
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction
// management.
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
