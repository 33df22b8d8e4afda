package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantabook/ledger_core/internal/apperrors"
	"github.com/quantabook/ledger_core/internal/core/domain"
	portsrepo "github.com/quantabook/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/dto"
	"github.com/quantabook/ledger_core/internal/middleware"
	"github.com/quantabook/ledger_core/internal/utils/accounting"
)

var (
	ErrPostingMinEntries = fmt.Errorf("%w: posting must have at least two entries", apperrors.ErrValidation)
	ErrAmbiguousEntry    = fmt.Errorf("%w: exactly one of debit/credit must be positive", apperrors.ErrValidation)
	ErrEntryTypeMismatch = fmt.Errorf("%w: entry type does not match the non-zero side", apperrors.ErrValidation)
	ErrUnbalanced        = fmt.Errorf("%w: debits and credits do not balance", apperrors.ErrValidation)
	ErrCurrencyMismatch  = fmt.Errorf("%w: entry currency does not match account currency", apperrors.ErrValidation)
	ErrAccountNotFound   = fmt.Errorf("%w: account not found", apperrors.ErrValidation)
	ErrTransactionExists = fmt.Errorf("%w: transaction already has entries", apperrors.ErrDuplicate)
	ErrRetriesExhausted  = fmt.Errorf("%w: posting retries exhausted", apperrors.ErrConcurrency)
)

// postingService is the only write path into the ledger. It validates a
// balanced entry group, binds a checksum to every entry, and commits entries
// plus account balance deltas atomically, retrying the whole posting on
// optimistic version conflicts.
type postingService struct {
	entryRepo    portsrepo.EntryRepositoryWithTx
	accountSvc   portssvc.AccountSvcFacade
	integritySvc portssvc.IntegritySvcFacade
	maxAttempts  int
	retryBackoff time.Duration
}

// NewPostingService creates a new PostingService. maxAttempts bounds the
// optimistic retry loop; retryBackoff is the base delay, doubled per attempt
// with jitter.
func NewPostingService(entryRepo portsrepo.EntryRepositoryWithTx, accountSvc portssvc.AccountSvcFacade, integritySvc portssvc.IntegritySvcFacade, maxAttempts int, retryBackoff time.Duration) portssvc.PostingSvcFacade {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if retryBackoff <= 0 {
		retryBackoff = 10 * time.Millisecond
	}
	return &postingService{
		entryRepo:    entryRepo,
		accountSvc:   accountSvc,
		integritySvc: integritySvc,
		maxAttempts:  maxAttempts,
		retryBackoff: retryBackoff,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// validateEntryInputs checks the structural invariants that do not require
// account lookups: group size, one-sided amounts, type cross-check, and
// per-currency balance.
func (s *postingService) validateEntryInputs(entries []dto.EntryInput) error {
	if len(entries) < 2 {
		return ErrPostingMinEntries
	}

	debitSums := make(map[string]decimal.Decimal)
	creditSums := make(map[string]decimal.Decimal)

	for i, in := range entries {
		debitSet := in.Debit.IsPositive()
		creditSet := in.Credit.IsPositive()

		if in.Debit.IsNegative() || in.Credit.IsNegative() || debitSet == creditSet {
			return fmt.Errorf("%w: entry %d for account %s has debit=%s credit=%s",
				ErrAmbiguousEntry, i, in.AccountID, in.Debit.String(), in.Credit.String())
		}

		if (debitSet && in.EntryType != domain.Debit) || (creditSet && in.EntryType != domain.Credit) {
			return fmt.Errorf("%w: entry %d for account %s is marked %s",
				ErrEntryTypeMismatch, i, in.AccountID, in.EntryType)
		}

		debitSums[in.CurrencyCode] = debitSums[in.CurrencyCode].Add(in.Debit)
		creditSums[in.CurrencyCode] = creditSums[in.CurrencyCode].Add(in.Credit)
	}

	// Both maps are written for every entry, so their key sets are identical.
	for currency, debits := range debitSums {
		credits := creditSums[currency]
		if !debits.Equal(credits) {
			return fmt.Errorf("%w: currency %s is off by %s (debits %s, credits %s)",
				ErrUnbalanced, currency, debits.Sub(credits).String(), debits.String(), credits.String())
		}
	}

	return nil
}

// PostDoubleEntry validates and atomically commits a balanced group of
// entries, then applies the net balance deltas to the touched accounts.
func (s *postingService) PostDoubleEntry(ctx context.Context, req dto.PostEntriesRequest, creatorUserID string) ([]domain.Entry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.validateEntryInputs(req.Entries); err != nil {
		return nil, err
	}

	// Reject a transaction id that already has entries: a transaction group
	// is written exactly once, so its per-currency balance stays auditable
	// in isolation. This guard is read-then-write and therefore best-effort:
	// two concurrent postings of the same id can both pass it and both
	// commit. Each group balances on its own, so the ledger-wide invariant
	// survives the race.
	existing, err := s.entryRepo.FindEntriesByTransactionID(ctx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check transaction %s for existing entries: %w", req.TransactionID, err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: transaction %s", ErrTransactionExists, req.TransactionID)
	}

	accountIDs := make([]string, 0, len(req.Entries))
	for _, in := range req.Entries {
		accountIDs = append(accountIDs, in.AccountID)
	}
	accountIDs = uniqueStrings(accountIDs)

	accountsMap, err := s.accountSvc.GetAccountByIDs(ctx, accountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for posting", slog.String("error", err.Error()), slog.String("transaction_id", req.TransactionID))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for _, id := range accountIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		for _, in := range req.Entries {
			if in.AccountID == id && in.CurrencyCode != acc.CurrencyCode {
				return nil, fmt.Errorf("%w: account %s holds %s, entry is %s",
					ErrCurrencyMismatch, id, acc.CurrencyCode, in.CurrencyCode)
			}
		}
	}

	// Build the domain entries once; the same group is re-submitted on every
	// retry because a failed attempt rolls back completely. The timestamp is
	// truncated to microseconds, the resolution of the created_at column, so
	// the checksum recomputes identically after a storage round-trip.
	now := time.Now().UTC().Truncate(time.Microsecond)
	entries := make([]domain.Entry, len(req.Entries))
	for i, in := range req.Entries {
		entry := domain.Entry{
			EntryID:       uuid.NewString(),
			TransactionID: req.TransactionID,
			AccountID:     in.AccountID,
			Debit:         in.Debit,
			Credit:        in.Credit,
			EntryType:     in.EntryType,
			CurrencyCode:  in.CurrencyCode,
			Description:   in.Description,
			Metadata:      in.Metadata,
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
		}
		entry.Checksum = s.integritySvc.ComputeChecksum(entry)
		entries[i] = entry
	}

	for attempt := 1; ; attempt++ {
		deltas, err := s.buildBalanceDeltas(entries, accountsMap)
		if err != nil {
			return nil, err
		}

		err = s.entryRepo.SavePosting(ctx, entries, deltas, creatorUserID)
		if err == nil {
			postingsCommitted.Inc()
			logger.Info("Posting committed",
				slog.String("transaction_id", req.TransactionID),
				slog.Int("entries", len(entries)),
				slog.Int("attempt", attempt),
			)
			return entries, nil
		}

		if !errors.Is(err, apperrors.ErrConcurrency) {
			logger.Error("Failed to save posting", slog.String("error", err.Error()), slog.String("transaction_id", req.TransactionID))
			return nil, fmt.Errorf("failed to save posting: %w", err)
		}

		postingRetries.Inc()
		if attempt >= s.maxAttempts {
			logger.Warn("Posting retries exhausted",
				slog.String("transaction_id", req.TransactionID),
				slog.Int("attempts", attempt),
			)
			return nil, fmt.Errorf("%w: transaction %s after %d attempts", ErrRetriesExhausted, req.TransactionID, attempt)
		}

		if err := sleepWithJitter(ctx, s.retryBackoff, attempt); err != nil {
			return nil, err
		}

		// Re-read the contended accounts so the next attempt carries fresh
		// versions.
		accountsMap, err = s.accountSvc.GetAccountByIDs(ctx, accountIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh accounts for retry: %w", err)
		}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				return nil, fmt.Errorf("%w: ID %s disappeared during retry", ErrAccountNotFound, id)
			}
		}
	}
}

// buildBalanceDeltas folds the signed effect of every entry into one net
// delta per account, tagged with the account version the delta was computed
// against.
func (s *postingService) buildBalanceDeltas(entries []domain.Entry, accountsMap map[string]domain.Account) (map[string]portsrepo.BalanceDelta, error) {
	deltas := make(map[string]portsrepo.BalanceDelta)
	for _, entry := range entries {
		acc, ok := accountsMap[entry.AccountID]
		if !ok {
			return nil, fmt.Errorf("internal error: account %s missing during delta calculation", entry.AccountID)
		}
		signedAmount, err := accounting.CalculateSignedAmount(entry, acc.AccountType)
		if err != nil {
			return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
		}
		current := deltas[entry.AccountID]
		deltas[entry.AccountID] = portsrepo.BalanceDelta{
			Delta:           current.Delta.Add(signedAmount),
			ExpectedVersion: acc.Version,
		}
	}
	return deltas, nil
}

// sleepWithJitter waits for base<<attempt plus up to 50% random jitter, or
// until the context is done.
func sleepWithJitter(ctx context.Context, base time.Duration, attempt int) error {
	backoff := base << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(backoff)/2 + 1))
	select {
	case <-time.After(backoff + jitter):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetTransactionEntries retrieves all entries belonging to a transaction.
func (s *postingService) GetTransactionEntries(ctx context.Context, transactionID string) ([]domain.Entry, error) {
	entries, err := s.entryRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries for transaction %s: %w", transactionID, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: transaction %s has no entries", apperrors.ErrNotFound, transactionID)
	}
	return entries, nil
}

// ListEntriesByAccount retrieves a paginated page of an account's entry
// history.
func (s *postingService) ListEntriesByAccount(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountSvc.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.entryRepo.ListEntriesByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list entries by account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
