package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quantabook/ledger_core/internal/apperrors"
	"github.com/quantabook/ledger_core/internal/core/domain"
	portsrepo "github.com/quantabook/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/middleware"
)

const defaultValidationBatchSize = 500

// checksumTimeLayout fixes the checksum timestamp at microsecond precision,
// the resolution of a TIMESTAMPTZ column. Formatting at nanosecond precision
// would make the digest unstable across a storage round-trip.
const checksumTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// integrityService computes and verifies the tamper-evidence checksum bound
// to every entry at write time.
type integrityService struct {
	entryRepo portsrepo.EntryReader
}

// NewIntegrityService creates a new IntegrityService.
func NewIntegrityService(entryRepo portsrepo.EntryReader) portssvc.IntegritySvcFacade {
	return &integrityService{entryRepo: entryRepo}
}

var _ portssvc.IntegritySvcFacade = (*integrityService)(nil)

// ComputeChecksum produces a SHA-256 hex digest over the entry's immutable
// fields in a fixed order. Amounts are serialized at the ledger scale and the
// timestamp in UTC at microsecond precision, so recomputation is byte-stable
// regardless of how the values round-tripped through storage.
func (s *integrityService) ComputeChecksum(entry domain.Entry) string {
	payload := strings.Join([]string{
		entry.TransactionID,
		entry.AccountID,
		entry.Debit.StringFixed(8),
		entry.Credit.StringFixed(8),
		entry.CurrencyCode,
		entry.CreatedAt.UTC().Format(checksumTimeLayout),
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// VerifyEntry recomputes the checksum from the entry's current stored fields
// and compares it to the stored checksum. It also cross-checks the redundant
// EntryType marker against the non-zero side.
func (s *integrityService) VerifyEntry(entry domain.Entry) bool {
	if s.ComputeChecksum(entry) != entry.Checksum {
		return false
	}

	switch entry.EntryType {
	case domain.Debit:
		return entry.Debit.IsPositive() && entry.Credit.IsZero()
	case domain.Credit:
		return entry.Credit.IsPositive() && entry.Debit.IsZero()
	default:
		return false
	}
}

// VerifyTransaction reports whether every entry belonging to the transaction
// passes VerifyEntry.
func (s *integrityService) VerifyTransaction(ctx context.Context, transactionID string) (bool, error) {
	entries, err := s.entryRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch entries for transaction %s: %w", transactionID, err)
	}
	if len(entries) == 0 {
		return false, fmt.Errorf("%w: transaction %s has no entries", apperrors.ErrNotFound, transactionID)
	}

	for _, entry := range entries {
		if !s.VerifyEntry(entry) {
			return false, nil
		}
	}
	return true, nil
}

// RunValidation scans the whole ledger in bounded batches and verifies every
// entry, grouping failures by transaction id. It never mutates data; a
// failure is reported, never auto-repaired.
func (s *integrityService) RunValidation(ctx context.Context, batchSize int) (*domain.IntegrityReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if batchSize <= 0 {
		batchSize = defaultValidationBatchSize
	}

	report := &domain.IntegrityReport{Failed: []string{}}
	failedSet := make(map[string]struct{})
	afterEntryID := ""

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := s.entryRepo.ScanEntries(ctx, afterEntryID, batchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entries during integrity validation: %w", err)
		}
		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			report.Checked++
			if !s.VerifyEntry(entry) {
				integrityFailures.Inc()
				if _, seen := failedSet[entry.TransactionID]; !seen {
					failedSet[entry.TransactionID] = struct{}{}
					report.Failed = append(report.Failed, entry.TransactionID)
				}
				logger.Warn("Entry failed checksum verification",
					slog.String("entry_id", entry.EntryID),
					slog.String("transaction_id", entry.TransactionID),
				)
			}
		}

		afterEntryID = entries[len(entries)-1].EntryID
		if len(entries) < batchSize {
			break
		}
	}

	logger.Debug("Integrity validation sweep finished",
		slog.Int64("checked", report.Checked),
		slog.Int("failed_transactions", len(report.Failed)),
	)
	return report, nil
}
