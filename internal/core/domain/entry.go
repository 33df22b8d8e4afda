package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates whether an entry is the debit or the credit side.
// Redundant with which of Debit/Credit is non-zero; kept as a fast filter
// and as a cross-check during integrity validation.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// Entry is a single immutable leg of a double-entry posting. Entries sharing
// a TransactionID form the unit of atomicity and must balance per currency.
// Exactly one of Debit/Credit is strictly positive, the other is zero.
//
// Entries are never updated or deleted after creation. Checksum is a
// tamper-evidence digest over the immutable fields, computed at write time.
type Entry struct {
	EntryID       string            `json:"entryID"`
	TransactionID string            `json:"transactionID"`
	AccountID     string            `json:"accountID"`
	Debit         decimal.Decimal   `json:"debit"`
	Credit        decimal.Decimal   `json:"credit"`
	EntryType     EntryType         `json:"entryType"`
	CurrencyCode  string            `json:"currencyCode"`
	Description   string            `json:"description,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Checksum      string            `json:"checksum"`
	CreatedAt     time.Time         `json:"createdAt"`
	CreatedBy     string            `json:"createdBy"`
}

// Amount returns the non-zero side of the entry.
func (e Entry) Amount() decimal.Decimal {
	if e.EntryType == Debit {
		return e.Debit
	}
	return e.Credit
}
