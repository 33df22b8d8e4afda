package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quantabook/ledger_core/internal/apperrors"
	"github.com/quantabook/ledger_core/internal/core/domain"
	"github.com/quantabook/ledger_core/internal/core/services"
)

func makeEntry(debit, credit int64) domain.Entry {
	entry := domain.Entry{
		EntryID:       uuid.NewString(),
		TransactionID: uuid.NewString(),
		AccountID:     uuid.NewString(),
		Debit:         decimal.NewFromInt(debit),
		Credit:        decimal.NewFromInt(credit),
		CurrencyCode:  "USD",
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     "tester",
	}
	if debit > 0 {
		entry.EntryType = domain.Debit
	} else {
		entry.EntryType = domain.Credit
	}
	return entry
}

func TestComputeChecksum_Deterministic(t *testing.T) {
	svc := services.NewIntegrityService(new(MockEntryRepository))

	entry := makeEntry(100, 0)
	first := svc.ComputeChecksum(entry)
	second := svc.ComputeChecksum(entry)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // hex-encoded SHA-256
}

func TestComputeChecksum_ChangesWithAnyField(t *testing.T) {
	svc := services.NewIntegrityService(new(MockEntryRepository))

	base := makeEntry(100, 0)
	baseline := svc.ComputeChecksum(base)

	amountChanged := base
	amountChanged.Debit = decimal.NewFromInt(101)
	assert.NotEqual(t, baseline, svc.ComputeChecksum(amountChanged))

	accountChanged := base
	accountChanged.AccountID = uuid.NewString()
	assert.NotEqual(t, baseline, svc.ComputeChecksum(accountChanged))

	currencyChanged := base
	currencyChanged.CurrencyCode = "EUR"
	assert.NotEqual(t, baseline, svc.ComputeChecksum(currencyChanged))

	timeChanged := base
	timeChanged.CreatedAt = base.CreatedAt.Add(time.Microsecond)
	assert.NotEqual(t, baseline, svc.ComputeChecksum(timeChanged))
}

func TestVerifyEntry_SurvivesTimestampRoundTrip(t *testing.T) {
	svc := services.NewIntegrityService(new(MockEntryRepository))

	// A TIMESTAMPTZ column stores microseconds. An entry checksummed with a
	// nanosecond-precision CreatedAt must still verify after the timestamp
	// comes back truncated from storage.
	entry := makeEntry(100, 0)
	entry.CreatedAt = entry.CreatedAt.Truncate(time.Microsecond).Add(321 * time.Nanosecond)
	entry.Checksum = svc.ComputeChecksum(entry)

	roundTripped := entry
	roundTripped.CreatedAt = entry.CreatedAt.Truncate(time.Microsecond)
	assert.True(t, svc.VerifyEntry(roundTripped))
}

func TestVerifyEntry(t *testing.T) {
	svc := services.NewIntegrityService(new(MockEntryRepository))

	entry := makeEntry(100, 0)
	entry.Checksum = svc.ComputeChecksum(entry)
	assert.True(t, svc.VerifyEntry(entry))

	tampered := entry
	tampered.Debit = decimal.NewFromInt(999)
	assert.False(t, svc.VerifyEntry(tampered))

	// A recomputed checksum over tampered fields still fails the type
	// cross-check when the sides were swapped.
	swapped := makeEntry(100, 0)
	swapped.EntryType = domain.Credit
	swapped.Checksum = svc.ComputeChecksum(swapped)
	assert.False(t, svc.VerifyEntry(swapped))
}

func TestVerifyTransaction(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockEntryRepository)
	svc := services.NewIntegrityService(mockRepo)

	valid := makeEntry(100, 0)
	valid.Checksum = svc.ComputeChecksum(valid)
	tampered := makeEntry(0, 100)
	tampered.Checksum = svc.ComputeChecksum(tampered)
	tampered.Credit = decimal.NewFromInt(50)

	transactionID := uuid.NewString()
	mockRepo.On("FindEntriesByTransactionID", ctx, transactionID).Return([]domain.Entry{valid, tampered}, nil).Once()

	isValid, err := svc.VerifyTransaction(ctx, transactionID)
	require.NoError(t, err)
	assert.False(t, isValid)

	mockRepo.On("FindEntriesByTransactionID", ctx, transactionID).Return([]domain.Entry{valid}, nil).Once()
	isValid, err = svc.VerifyTransaction(ctx, transactionID)
	require.NoError(t, err)
	assert.True(t, isValid)
}

func TestVerifyTransaction_Empty(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockEntryRepository)
	svc := services.NewIntegrityService(mockRepo)

	transactionID := uuid.NewString()
	mockRepo.On("FindEntriesByTransactionID", ctx, transactionID).Return([]domain.Entry{}, nil).Once()

	_, err := svc.VerifyTransaction(ctx, transactionID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRunValidation_SweepsAllBatchesAndReportsFailures(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockEntryRepository)
	svc := services.NewIntegrityService(mockRepo)

	good1 := makeEntry(100, 0)
	good1.Checksum = svc.ComputeChecksum(good1)
	good2 := makeEntry(0, 100)
	good2.Checksum = svc.ComputeChecksum(good2)
	bad := makeEntry(50, 0)
	bad.Checksum = svc.ComputeChecksum(bad)
	bad.Debit = decimal.NewFromInt(5000)

	// Two full batches of size 2, then a short final batch.
	mockRepo.On("ScanEntries", ctx, "", 2).Return([]domain.Entry{good1, bad}, nil).Once()
	mockRepo.On("ScanEntries", ctx, bad.EntryID, 2).Return([]domain.Entry{good2}, nil).Once()

	report, err := svc.RunValidation(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.Checked)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, bad.TransactionID, report.Failed[0])
	mockRepo.AssertExpectations(t)
}

func TestRunValidation_CleanLedger(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockEntryRepository)
	svc := services.NewIntegrityService(mockRepo)

	mockRepo.On("ScanEntries", ctx, "", mock.AnythingOfType("int")).Return([]domain.Entry{}, nil).Once()

	report, err := svc.RunValidation(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Checked)
	assert.Empty(t, report.Failed)
}
