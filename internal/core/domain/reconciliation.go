package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationFilter scopes a reconciliation run. Zero-value fields are
// ignored.
type ReconciliationFilter struct {
	AccountID    string
	CurrencyCode string
	StartDate    *time.Time
	EndDate      *time.Time
}

// AccountReconciliation compares an account's stored derived balance against
// the balance recomputed purely from its entry history.
type AccountReconciliation struct {
	AccountID       string          `json:"accountID"`
	CurrencyCode    string          `json:"currencyCode"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	IsConsistent    bool            `json:"isConsistent"`
	LastEntryAt     *time.Time      `json:"lastEntryAt,omitempty"`
}

// ReconciliationResult reports debit/credit parity over the filtered scope.
// DiscrepantTransactions pinpoints transaction ids whose own per-currency
// sums do not balance, the root cause behind an aggregate discrepancy.
type ReconciliationResult struct {
	TotalDebits            decimal.Decimal        `json:"totalDebits"`
	TotalCredits           decimal.Decimal        `json:"totalCredits"`
	IsBalanced             bool                   `json:"isBalanced"`
	Discrepancy            decimal.Decimal        `json:"discrepancy"`
	EntriesChecked         int64                  `json:"entriesChecked"`
	DiscrepantTransactions []string               `json:"discrepantTransactions,omitempty"`
	Account                *AccountReconciliation `json:"account,omitempty"`
}

// IntegrityReport is the outcome of a batched checksum sweep over the ledger.
type IntegrityReport struct {
	Checked int64    `json:"checked"`
	Failed  []string `json:"failed"` // transaction ids with at least one failing entry
}
