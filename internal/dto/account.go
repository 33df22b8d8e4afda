package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantabook/ledger_core/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name            string             `json:"name" binding:"required"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	CurrencyCode    string             `json:"currency" binding:"required,currencycode"`
	UserID          *string            `json:"userID,omitempty"`
	IsSystemAccount bool               `json:"isSystemAccount"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string          `json:"accountID"`
	UserID          *string         `json:"userID,omitempty"`
	Name            string          `json:"name"`
	AccountType     string          `json:"accountType"`
	CurrencyCode    string          `json:"currency"`
	Balance         decimal.Decimal `json:"balance"`
	IsSystemAccount bool            `json:"isSystemAccount"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		UserID:          a.UserID,
		Name:            a.Name,
		AccountType:     string(a.AccountType),
		CurrencyCode:    a.CurrencyCode,
		Balance:         a.Balance,
		IsSystemAccount: a.IsSystemAccount,
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
	}
}

// ToAccountResponses converts a slice of domain.Account to []AccountResponse.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		responses[i] = ToAccountResponse(&a)
	}
	return responses
}

// AccountBalanceResponse reports the stored derived balance next to the
// balance recomputed from entry history.
type AccountBalanceResponse struct {
	AccountID       string          `json:"accountID"`
	CurrencyCode    string          `json:"currency"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	IsConsistent    bool            `json:"isConsistent"`
	LastEntryAt     *time.Time      `json:"lastEntryAt,omitempty"`
}
