package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quantabook/ledger_core/internal/core/domain"
)

// CalculateSignedAmount applies the correct sign to an entry's amount based
// on account type and entry side. This is used by the posting service when
// building balance deltas and by the reconciliation SQL, so the convention
// lives in exactly one place per layer.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func CalculateSignedAmount(entry domain.Entry, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := entry.Amount()
	isDebit := entry.EntryType == domain.Debit

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit { // Credit to Asset/Expense
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit { // Debit to Liability/Equity/Revenue
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, entry.AccountID)
	}
	return signedAmount, nil
}
