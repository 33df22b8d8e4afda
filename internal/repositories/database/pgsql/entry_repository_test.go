package pgsql

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/quantabook/ledger_core/internal/apperrors"
	"github.com/quantabook/ledger_core/internal/core/domain"
)

func TestTranslateEntryError_ImmutabilityTrigger(t *testing.T) {
	trigErr := &pgconn.PgError{
		Code:    "P0001",
		Message: "ledger entries are immutable",
	}

	err := translateEntryError(trigErr)
	assert.ErrorIs(t, err, apperrors.ErrImmutability)
}

func TestTranslateEntryError_WrappedTriggerError(t *testing.T) {
	wrapped := errors.Join(errors.New("batch close"), &pgconn.PgError{
		Code:    "P0001",
		Message: "ledger entries are immutable",
	})

	err := translateEntryError(wrapped)
	assert.ErrorIs(t, err, apperrors.ErrImmutability)
}

func TestTranslateEntryError_PassesThroughOtherErrors(t *testing.T) {
	assert.Nil(t, translateEntryError(nil))

	// A different raised exception stays untouched.
	otherRaise := &pgconn.PgError{Code: "P0001", Message: "some other assertion"}
	assert.NotErrorIs(t, translateEntryError(otherRaise), apperrors.ErrImmutability)

	uniqueViolation := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	assert.Equal(t, error(uniqueViolation), translateEntryError(uniqueViolation))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, translateEntryError(plain))
}

func TestBuildFilterClause(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	clause, args := buildFilterClause(domain.ReconciliationFilter{}, 1)
	assert.Empty(t, clause)
	assert.Empty(t, args)

	clause, args = buildFilterClause(domain.ReconciliationFilter{
		AccountID:    "acc-1",
		CurrencyCode: "USD",
		StartDate:    &start,
		EndDate:      &end,
	}, 1)
	assert.Equal(t, "WHERE account_id = $1 AND currency_code = $2 AND created_at >= $3 AND created_at < $4", clause)
	assert.Equal(t, []interface{}{"acc-1", "USD", start, end}, args)

	clause, args = buildFilterClause(domain.ReconciliationFilter{CurrencyCode: "EUR"}, 2)
	assert.Equal(t, "WHERE currency_code = $2", clause)
	assert.Equal(t, []interface{}{"EUR"}, args)
}
