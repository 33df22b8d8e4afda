package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantabook/ledger_core/internal/core/domain"
)

// EntryInput is one leg of a posting request. Exactly one of Debit/Credit
// must be strictly positive and the other zero.
type EntryInput struct {
	AccountID    string            `json:"accountID" binding:"required"`
	Debit        decimal.Decimal   `json:"debit"`
	Credit       decimal.Decimal   `json:"credit"`
	EntryType    domain.EntryType  `json:"entryType" binding:"required,oneof=DEBIT CREDIT"`
	CurrencyCode string            `json:"currency" binding:"required,currencycode"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// PostEntriesRequest is the input contract for POST /entries.
type PostEntriesRequest struct {
	TransactionID string       `json:"transactionID" binding:"required"`
	Entries       []EntryInput `json:"entries" binding:"required,min=2,dive"`
}

// EntryResponse defines the data returned for a persisted entry.
type EntryResponse struct {
	EntryID       string            `json:"entryID"`
	TransactionID string            `json:"transactionID"`
	AccountID     string            `json:"accountID"`
	Debit         decimal.Decimal   `json:"debit"`
	Credit        decimal.Decimal   `json:"credit"`
	EntryType     string            `json:"entryType"`
	CurrencyCode  string            `json:"currency"`
	Description   string            `json:"description,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Checksum      string            `json:"checksum"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// ToEntryResponse converts a domain.Entry to EntryResponse DTO.
func ToEntryResponse(e *domain.Entry) EntryResponse {
	return EntryResponse{
		EntryID:       e.EntryID,
		TransactionID: e.TransactionID,
		AccountID:     e.AccountID,
		Debit:         e.Debit,
		Credit:        e.Credit,
		EntryType:     string(e.EntryType),
		CurrencyCode:  e.CurrencyCode,
		Description:   e.Description,
		Metadata:      e.Metadata,
		Checksum:      e.Checksum,
		CreatedAt:     e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of domain.Entry to []EntryResponse.
func ToEntryResponses(entries []domain.Entry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToEntryResponse(&e)
	}
	return responses
}

// ListEntriesParams holds pagination parameters for an account's entry history.
type ListEntriesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse is a page of an account's entry history.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}
