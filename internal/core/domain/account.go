package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a financial account within the ledger.
// Balance is the derived balance maintained incrementally by the posting
// service; it can always be recomputed from the entry history. Version is the
// optimistic concurrency counter: every balance mutation increments it, and a
// mutation conditioned on a stale version fails.
type Account struct {
	AccountID       string          `json:"accountID"`
	UserID          *string         `json:"userID,omitempty"` // nil for system accounts
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	CurrencyCode    string          `json:"currencyCode"`
	Balance         decimal.Decimal `json:"balance"`
	IsSystemAccount bool            `json:"isSystemAccount"`
	Version         int64           `json:"version"`
	AuditFields
}
