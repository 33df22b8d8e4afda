package services

import (
	"context"

	"github.com/quantabook/ledger_core/internal/core/domain"
	"github.com/quantabook/ledger_core/internal/dto"
)

// PostingWriterSvc defines the single write path into the ledger.
type PostingWriterSvc interface {
	// PostDoubleEntry validates and atomically commits a balanced group of
	// entries, then applies the net balance deltas to the touched accounts.
	// Either every entry of the group is persisted or none is.
	PostDoubleEntry(ctx context.Context, req dto.PostEntriesRequest, creatorUserID string) ([]domain.Entry, error)
}

// EntryReaderSvc defines read operations over persisted entries.
type EntryReaderSvc interface {
	// GetTransactionEntries retrieves all entries belonging to a transaction.
	GetTransactionEntries(ctx context.Context, transactionID string) ([]domain.Entry, error)

	// ListEntriesByAccount retrieves a paginated page of an account's entry history.
	ListEntriesByAccount(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// PostingSvcFacade combines posting and entry read operations.
type PostingSvcFacade interface {
	PostingWriterSvc
	EntryReaderSvc
}
