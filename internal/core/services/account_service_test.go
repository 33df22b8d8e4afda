package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quantabook/ledger_core/internal/apperrors"
	"github.com/quantabook/ledger_core/internal/core/domain"
	"github.com/quantabook/ledger_core/internal/core/services"
	"github.com/quantabook/ledger_core/internal/dto"
)

func TestCreateAccount_StartsAtZeroBalance(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	svc := services.NewAccountService(mockRepo)

	req := dto.CreateAccountRequest{
		Name:         "Operating Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}

	mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) {
			saved := args.Get(1).(domain.Account)
			assert.True(t, saved.Balance.IsZero())
			assert.Equal(t, int64(0), saved.Version)
			assert.NotEmpty(t, saved.AccountID)
			assert.Equal(t, "auditor", saved.CreatedBy)
		}).
		Return(nil).Once()

	account, err := svc.CreateAccount(ctx, req, "auditor")
	require.NoError(t, err)
	assert.Equal(t, "Operating Cash", account.Name)
	assert.True(t, account.Balance.IsZero())
	mockRepo.AssertExpectations(t)
}

func TestCreateAccount_DuplicatePassesThrough(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	svc := services.NewAccountService(mockRepo)

	req := dto.CreateAccountRequest{
		Name:         "Operating Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}
	mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	_, err := svc.CreateAccount(ctx, req, "auditor")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}
