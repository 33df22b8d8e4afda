package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates whether an entry row is the debit or the credit side.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// Entry is the persistence shape of a ledger entry row. Rows are append-only:
// the entries table carries a trigger rejecting UPDATE and DELETE, so even SQL
// run past the repository layer cannot rewrite history.
type Entry struct {
	EntryID       string            `db:"entry_id"`
	TransactionID string            `db:"transaction_id"`
	AccountID     string            `db:"account_id"`
	Debit         decimal.Decimal   `db:"debit"`
	Credit        decimal.Decimal   `db:"credit"`
	EntryType     EntryType         `db:"entry_type"`
	CurrencyCode  string            `db:"currency_code"`
	Description   string            `db:"description"`
	Metadata      map[string]string `db:"metadata"` // JSONB
	Checksum      string            `db:"checksum"`
	CreatedAt     time.Time         `db:"created_at"`
	CreatedBy     string            `db:"created_by"`
}
