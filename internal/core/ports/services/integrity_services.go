package services

import (
	"context"

	"github.com/quantabook/ledger_core/internal/core/domain"
)

// IntegritySvcFacade computes and verifies tamper-evidence checksums.
// Verification never mutates data; a failure is reported, never repaired.
type IntegritySvcFacade interface {
	// ComputeChecksum produces the deterministic digest over an entry's
	// immutable fields.
	ComputeChecksum(entry domain.Entry) string

	// VerifyEntry recomputes the checksum from the entry's current fields and
	// compares it to the stored one. Also cross-checks EntryType against the
	// non-zero side.
	VerifyEntry(entry domain.Entry) bool

	// VerifyTransaction reports whether every entry of the transaction passes
	// VerifyEntry.
	VerifyTransaction(ctx context.Context, transactionID string) (bool, error)

	// RunValidation scans all entries in bounded batches and reports the count
	// checked plus the distinct transaction ids with at least one failing entry.
	RunValidation(ctx context.Context, batchSize int) (*domain.IntegrityReport, error)
}
