package models

import (
	"time"

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

// Account is the persistence shape of a ledger account. Balance is the
// derived balance; version is the optimistic concurrency counter incremented
// on every balance mutation.
type Account struct {
	AccountID       string          `db:"account_id"`
	UserID          *string         `db:"user_id"` // NULL for system accounts
	Name            string          `db:"name"`
	AccountType     AccountType     `db:"account_type"`
	CurrencyCode    string          `db:"currency_code"`
	Balance         decimal.Decimal `db:"balance"`
	IsSystemAccount bool            `db:"is_system_account"`
	Version         int64           `db:"version"`
	CreatedAt       time.Time       `db:"created_at"`
	CreatedBy       string          `db:"created_by"`
	LastUpdatedAt   time.Time       `db:"last_updated_at"`
	LastUpdatedBy   string          `db:"last_updated_by"`
}
