package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantabook/ledger_core/internal/core/domain"
)

// ReconcileParams are the query parameters accepted by GET /reconcile.
type ReconcileParams struct {
	AccountID    string     `form:"accountId"`
	CurrencyCode string     `form:"currency"`
	StartDate    *time.Time `form:"startDate" time_format:"2006-01-02"`
	EndDate      *time.Time `form:"endDate" time_format:"2006-01-02"`
}

// ToFilter converts the query parameters to a domain filter.
func (p ReconcileParams) ToFilter() domain.ReconciliationFilter {
	return domain.ReconciliationFilter{
		AccountID:    p.AccountID,
		CurrencyCode: p.CurrencyCode,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
	}
}

// ReconciliationResponse is the wire shape of a reconciliation run.
type ReconciliationResponse struct {
	TotalDebits            decimal.Decimal         `json:"totalDebits"`
	TotalCredits           decimal.Decimal         `json:"totalCredits"`
	IsBalanced             bool                    `json:"isBalanced"`
	Discrepancy            decimal.Decimal         `json:"discrepancy"`
	EntriesChecked         int64                   `json:"entriesChecked"`
	DiscrepantTransactions []string                `json:"discrepantTransactions,omitempty"`
	Account                *AccountBalanceResponse `json:"account,omitempty"`
}

// ToReconciliationResponse converts the domain result to its wire shape.
func ToReconciliationResponse(r *domain.ReconciliationResult) ReconciliationResponse {
	resp := ReconciliationResponse{
		TotalDebits:            r.TotalDebits,
		TotalCredits:           r.TotalCredits,
		IsBalanced:             r.IsBalanced,
		Discrepancy:            r.Discrepancy,
		EntriesChecked:         r.EntriesChecked,
		DiscrepantTransactions: r.DiscrepantTransactions,
	}
	if r.Account != nil {
		resp.Account = &AccountBalanceResponse{
			AccountID:       r.Account.AccountID,
			CurrencyCode:    r.Account.CurrencyCode,
			ComputedBalance: r.Account.ComputedBalance,
			StoredBalance:   r.Account.StoredBalance,
			IsConsistent:    r.Account.IsConsistent,
			LastEntryAt:     r.Account.LastEntryAt,
		}
	}
	return resp
}
