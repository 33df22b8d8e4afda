package jobs_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/quantabook/ledger_core/internal/core/domain"
	"github.com/quantabook/ledger_core/internal/dto"
	"github.com/quantabook/ledger_core/internal/jobs"
	"github.com/quantabook/ledger_core/internal/platform/config"
)

// --- Mock IntegrityService ---
type MockIntegrityService struct {
	mock.Mock
}

func (m *MockIntegrityService) ComputeChecksum(entry domain.Entry) string {
	args := m.Called(entry)
	return args.String(0)
}

func (m *MockIntegrityService) VerifyEntry(entry domain.Entry) bool {
	args := m.Called(entry)
	return args.Bool(0)
}

func (m *MockIntegrityService) VerifyTransaction(ctx context.Context, transactionID string) (bool, error) {
	args := m.Called(ctx, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIntegrityService) RunValidation(ctx context.Context, batchSize int) (*domain.IntegrityReport, error) {
	args := m.Called(ctx, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrityReport), args.Error(1)
}

// --- Mock ReconciliationService ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) Reconcile(ctx context.Context, filter domain.ReconciliationFilter) (*domain.ReconciliationResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationResult), args.Error(1)
}

func (m *MockReconciliationService) GetAccountBalance(ctx context.Context, accountID string, currencyCode string) (*dto.AccountBalanceResponse, error) {
	args := m.Called(ctx, accountID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AccountBalanceResponse), args.Error(1)
}

// --- Mock Alerter ---
type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) Critical(ctx context.Context, event string, details map[string]any) {
	m.Called(ctx, event, details)
}

func newTestJob(integritySvc *MockIntegrityService, reconciliationSvc *MockReconciliationService, alerter *MockAlerter) *jobs.IntegrityJob {
	return jobs.NewIntegrityJob(
		integritySvc,
		reconciliationSvc,
		alerter,
		slog.Default(),
		config.IntegrityJobConfig{
			Enabled:                true,
			CheckInterval:          time.Hour,
			ReconciliationInterval: time.Hour,
			BatchSize:              100,
		},
	)
}

func TestRunIntegrityCheck_CleanDoesNotAlert(t *testing.T) {
	ctx := context.Background()
	integritySvc := new(MockIntegrityService)
	reconciliationSvc := new(MockReconciliationService)
	alerter := new(MockAlerter)
	job := newTestJob(integritySvc, reconciliationSvc, alerter)

	integritySvc.On("RunValidation", ctx, 100).Return(&domain.IntegrityReport{Checked: 10}, nil).Once()

	job.RunIntegrityCheck(ctx)

	alerter.AssertNotCalled(t, "Critical", mock.Anything, mock.Anything, mock.Anything)
	integritySvc.AssertExpectations(t)
}

func TestRunIntegrityCheck_TamperRaisesCriticalAlert(t *testing.T) {
	ctx := context.Background()
	integritySvc := new(MockIntegrityService)
	reconciliationSvc := new(MockReconciliationService)
	alerter := new(MockAlerter)
	job := newTestJob(integritySvc, reconciliationSvc, alerter)

	report := &domain.IntegrityReport{Checked: 10, Failed: []string{"txn-1"}}
	integritySvc.On("RunValidation", ctx, 100).Return(report, nil).Once()
	alerter.On("Critical", ctx, "ledger integrity violation detected", mock.AnythingOfType("map[string]interface {}")).Once()

	job.RunIntegrityCheck(ctx)

	alerter.AssertExpectations(t)
}

func TestRunReconciliation_ImbalanceRaisesCriticalAlert(t *testing.T) {
	ctx := context.Background()
	integritySvc := new(MockIntegrityService)
	reconciliationSvc := new(MockReconciliationService)
	alerter := new(MockAlerter)
	job := newTestJob(integritySvc, reconciliationSvc, alerter)

	result := &domain.ReconciliationResult{
		TotalDebits:            decimal.NewFromInt(100),
		TotalCredits:           decimal.NewFromInt(90),
		Discrepancy:            decimal.NewFromInt(10),
		IsBalanced:             false,
		DiscrepantTransactions: []string{"txn-9"},
	}
	reconciliationSvc.On("Reconcile", ctx, domain.ReconciliationFilter{}).Return(result, nil).Once()
	alerter.On("Critical", ctx, "ledger reconciliation imbalance detected", mock.AnythingOfType("map[string]interface {}")).Once()

	job.RunReconciliation(ctx)

	alerter.AssertExpectations(t)
}

func TestRunReconciliation_BalancedDoesNotAlert(t *testing.T) {
	ctx := context.Background()
	integritySvc := new(MockIntegrityService)
	reconciliationSvc := new(MockReconciliationService)
	alerter := new(MockAlerter)
	job := newTestJob(integritySvc, reconciliationSvc, alerter)

	result := &domain.ReconciliationResult{
		TotalDebits:  decimal.NewFromInt(100),
		TotalCredits: decimal.NewFromInt(100),
		Discrepancy:  decimal.Zero,
		IsBalanced:   true,
	}
	reconciliationSvc.On("Reconcile", ctx, domain.ReconciliationFilter{}).Return(result, nil).Once()

	job.RunReconciliation(ctx)

	alerter.AssertNotCalled(t, "Critical", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, result.IsBalanced)
}
