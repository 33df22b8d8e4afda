package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/quantabook/ledger_core/internal/apperrors"
	"github.com/quantabook/ledger_core/internal/core/domain"
	portsrepo "github.com/quantabook/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/core/services"
	"github.com/quantabook/ledger_core/internal/dto"
)

// --- Mock EntryRepository ---
type MockEntryRepository struct {
	mock.Mock
}

var _ portsrepo.EntryRepositoryWithTx = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.Entry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Entry), returnedNextToken, args.Error(2)
}

func (m *MockEntryRepository) ScanEntries(ctx context.Context, afterEntryID string, limit int) ([]domain.Entry, error) {
	args := m.Called(ctx, afterEntryID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) SumEntries(ctx context.Context, filter domain.ReconciliationFilter) (portsrepo.EntrySums, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(portsrepo.EntrySums), args.Error(1)
}

func (m *MockEntryRepository) FindDiscrepantTransactions(ctx context.Context, filter domain.ReconciliationFilter) ([]string, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockEntryRepository) ComputeAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, *time.Time, error) {
	args := m.Called(ctx, accountID)
	var lastEntryAt *time.Time
	if args.Get(1) != nil {
		t := args.Get(1).(time.Time)
		lastEntryAt = &t
	}
	return args.Get(0).(decimal.Decimal), lastEntryAt, args.Error(2)
}

func (m *MockEntryRepository) SavePosting(ctx context.Context, entries []domain.Entry, deltas map[string]portsrepo.BalanceDelta, updatedBy string) error {
	args := m.Called(ctx, entries, deltas, updatedBy)
	return args.Error(0)
}

func (m *MockEntryRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockEntryRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockEntryRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Test Suite Setup ---
type PostingServiceTestSuite struct {
	suite.Suite
	mockEntryRepo    *MockEntryRepository
	mockAccountSvc   *MockAccountService
	service          portssvc.PostingSvcFacade
	assetAccount     domain.Account
	liabilityAccount domain.Account
	userID           string
}

func (suite *PostingServiceTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockAccountSvc = new(MockAccountService)
	integritySvc := services.NewIntegrityService(suite.mockEntryRepo)
	suite.service = services.NewPostingService(suite.mockEntryRepo, suite.mockAccountSvc, integritySvc, 3, time.Millisecond)

	suite.userID = uuid.NewString()

	suite.assetAccount = domain.Account{
		AccountID:    uuid.NewString(),
		Name:         "Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(1000),
		Version:      3,
	}
	suite.liabilityAccount = domain.Account{
		AccountID:    uuid.NewString(),
		Name:         "Payables",
		AccountType:  domain.Liability,
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(500),
		Version:      7,
	}
}

func (suite *PostingServiceTestSuite) accountsMap() map[string]domain.Account {
	return map[string]domain.Account{
		suite.assetAccount.AccountID:     suite.assetAccount,
		suite.liabilityAccount.AccountID: suite.liabilityAccount,
	}
}

func (suite *PostingServiceTestSuite) balancedRequest() dto.PostEntriesRequest {
	return dto.PostEntriesRequest{
		TransactionID: uuid.NewString(),
		Entries: []dto.EntryInput{
			{AccountID: suite.assetAccount.AccountID, Debit: decimal.NewFromInt(100), EntryType: domain.Debit, CurrencyCode: "USD"},
			{AccountID: suite.liabilityAccount.AccountID, Credit: decimal.NewFromInt(100), EntryType: domain.Credit, CurrencyCode: "USD"},
		},
	}
}

// --- Test Cases ---

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_Success() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockEntryRepo.On("FindEntriesByTransactionID", ctx, req.TransactionID).Return([]domain.Entry{}, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsMap(), nil).Once()
	suite.mockEntryRepo.On("SavePosting", ctx, mock.AnythingOfType("[]domain.Entry"), mock.AnythingOfType("map[string]repositories.BalanceDelta"), suite.userID).
		Run(func(args mock.Arguments) {
			deltas := args.Get(2).(map[string]portsrepo.BalanceDelta)
			suite.Len(deltas, 2)
			// Debit increases an asset, credit increases a liability.
			suite.True(deltas[suite.assetAccount.AccountID].Delta.Equal(decimal.NewFromInt(100)))
			suite.True(deltas[suite.liabilityAccount.AccountID].Delta.Equal(decimal.NewFromInt(100)))
			suite.Equal(int64(3), deltas[suite.assetAccount.AccountID].ExpectedVersion)
			suite.Equal(int64(7), deltas[suite.liabilityAccount.AccountID].ExpectedVersion)
		}).
		Return(nil).Once()

	entries, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	for _, entry := range entries {
		suite.Equal(req.TransactionID, entry.TransactionID)
		suite.NotEmpty(entry.EntryID)
		suite.NotEmpty(entry.Checksum)
		suite.Equal(suite.userID, entry.CreatedBy)
		// Written at the timestamp resolution of the entries table, so the
		// checksum stays verifiable after a read-back.
		suite.True(entry.CreatedAt.Equal(entry.CreatedAt.Truncate(time.Microsecond)))
	}
	suite.mockEntryRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_Unbalanced() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Entries[1].Credit = decimal.NewFromInt(99)

	_, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrUnbalanced)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SavePosting", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_SingleEntryRejected() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Entries = req.Entries[:1]

	_, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrPostingMinEntries)
}

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_BothSidesSetRejected() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Entries[0].Credit = decimal.NewFromInt(100)

	_, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAmbiguousEntry)
}

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_EntryTypeMismatch() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Entries[0].EntryType = domain.Credit

	_, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryTypeMismatch)
}

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_PerCurrencyBalance() {
	ctx := context.Background()
	eurAccountA := domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset, CurrencyCode: "EUR", Version: 1}
	eurAccountB := domain.Account{AccountID: uuid.NewString(), AccountType: domain.Revenue, CurrencyCode: "EUR", Version: 1}

	// Balanced in USD but one-sided in EUR
	req := dto.PostEntriesRequest{
		TransactionID: uuid.NewString(),
		Entries: []dto.EntryInput{
			{AccountID: suite.assetAccount.AccountID, Debit: decimal.NewFromInt(50), EntryType: domain.Debit, CurrencyCode: "USD"},
			{AccountID: suite.liabilityAccount.AccountID, Credit: decimal.NewFromInt(50), EntryType: domain.Credit, CurrencyCode: "USD"},
			{AccountID: eurAccountA.AccountID, Debit: decimal.NewFromInt(10), EntryType: domain.Debit, CurrencyCode: "EUR"},
			{AccountID: eurAccountB.AccountID, Credit: decimal.NewFromInt(7), EntryType: domain.Credit, CurrencyCode: "EUR"},
		},
	}

	_, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnbalanced)
	suite.Contains(err.Error(), "EUR")
}

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_DuplicateTransaction() {
	ctx := context.Background()
	req := suite.balancedRequest()

	existing := []domain.Entry{{EntryID: uuid.NewString(), TransactionID: req.TransactionID}}
	suite.mockEntryRepo.On("FindEntriesByTransactionID", ctx, req.TransactionID).Return(existing, nil).Once()

	_, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_CurrencyMismatchWithAccount() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Entries[0].CurrencyCode = "EUR"
	req.Entries[1].CurrencyCode = "EUR"

	suite.mockEntryRepo.On("FindEntriesByTransactionID", ctx, req.TransactionID).Return([]domain.Entry{}, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsMap(), nil).Once()

	_, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCurrencyMismatch)
}

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_UnknownAccount() {
	ctx := context.Background()
	req := suite.balancedRequest()

	partial := map[string]domain.Account{suite.assetAccount.AccountID: suite.assetAccount}
	suite.mockEntryRepo.On("FindEntriesByTransactionID", ctx, req.TransactionID).Return([]domain.Entry{}, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.AnythingOfType("[]string")).Return(partial, nil).Once()

	_, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountNotFound)
}

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_RetriesOnConflictThenSucceeds() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockEntryRepo.On("FindEntriesByTransactionID", ctx, req.TransactionID).Return([]domain.Entry{}, nil).Once()

	// First fetch returns stale versions, the refresh after the conflict
	// returns bumped ones.
	staleMap := suite.accountsMap()
	freshAsset := suite.assetAccount
	freshAsset.Version = 4
	freshMap := suite.accountsMap()
	freshMap[suite.assetAccount.AccountID] = freshAsset

	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.AnythingOfType("[]string")).Return(staleMap, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.AnythingOfType("[]string")).Return(freshMap, nil).Once()

	suite.mockEntryRepo.On("SavePosting", ctx, mock.AnythingOfType("[]domain.Entry"), mock.AnythingOfType("map[string]repositories.BalanceDelta"), suite.userID).
		Return(apperrors.ErrConcurrency).Once()
	suite.mockEntryRepo.On("SavePosting", ctx, mock.AnythingOfType("[]domain.Entry"), mock.AnythingOfType("map[string]repositories.BalanceDelta"), suite.userID).
		Run(func(args mock.Arguments) {
			deltas := args.Get(2).(map[string]portsrepo.BalanceDelta)
			suite.Equal(int64(4), deltas[suite.assetAccount.AccountID].ExpectedVersion)
		}).
		Return(nil).Once()

	entries, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Len(entries, 2)
	suite.mockEntryRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPostDoubleEntry_RetriesExhausted() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockEntryRepo.On("FindEntriesByTransactionID", ctx, req.TransactionID).Return([]domain.Entry{}, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsMap(), nil).Times(3)
	suite.mockEntryRepo.On("SavePosting", ctx, mock.AnythingOfType("[]domain.Entry"), mock.AnythingOfType("map[string]repositories.BalanceDelta"), suite.userID).
		Return(apperrors.ErrConcurrency).Times(3)

	_, err := suite.service.PostDoubleEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConcurrency)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestGetTransactionEntries_NotFound() {
	ctx := context.Background()
	transactionID := uuid.NewString()

	suite.mockEntryRepo.On("FindEntriesByTransactionID", ctx, transactionID).Return([]domain.Entry{}, nil).Once()

	_, err := suite.service.GetTransactionEntries(ctx, transactionID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestPostingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
