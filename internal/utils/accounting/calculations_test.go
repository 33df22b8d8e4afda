package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/quantabook/ledger_core/internal/core/domain"
)

func entryOf(side domain.EntryType, amount string) domain.Entry {
	e := domain.Entry{EntryType: side, AccountID: "acc-1"}
	if side == domain.Debit {
		e.Debit = decimal.RequireFromString(amount)
	} else {
		e.Credit = decimal.RequireFromString(amount)
	}
	return e
}

func TestCalculateSignedAmount(t *testing.T) {
	tests := []struct {
		name        string
		entry       domain.Entry
		accountType domain.AccountType
		want        string
	}{
		{"debit to asset is positive", entryOf(domain.Debit, "100"), domain.Asset, "100"},
		{"credit to asset is negative", entryOf(domain.Credit, "100"), domain.Asset, "-100"},
		{"debit to expense is positive", entryOf(domain.Debit, "42.50"), domain.Expense, "42.5"},
		{"debit to liability is negative", entryOf(domain.Debit, "100"), domain.Liability, "-100"},
		{"credit to revenue is positive", entryOf(domain.Credit, "99.99"), domain.Revenue, "99.99"},
		{"credit to equity is positive", entryOf(domain.Credit, "7"), domain.Equity, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateSignedAmount(tt.entry, tt.accountType)
			assert.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestCalculateSignedAmountUnknownType(t *testing.T) {
	_, err := CalculateSignedAmount(entryOf(domain.Debit, "1"), domain.AccountType("BOGUS"))
	assert.Error(t, err)
}
