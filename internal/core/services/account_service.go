package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantabook/ledger_core/internal/core/domain"
	portsrepo "github.com/quantabook/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/dto"
	"github.com/quantabook/ledger_core/internal/middleware"
)

type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account. Balances always start at zero; the
// only way a balance moves is through a posting.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		UserID:          req.UserID,
		Name:            req.Name,
		AccountType:     req.AccountType,
		CurrencyCode:    req.CurrencyCode,
		Balance:         decimal.Zero,
		IsSystemAccount: req.IsSystemAccount,
		Version:         0,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created",
		slog.String("account_id", account.AccountID),
		slog.String("account_type", string(account.AccountType)),
		slog.String("currency_code", account.CurrencyCode),
	)
	return &account, nil
}

// GetAccountByID retrieves a specific account by its ID.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// GetAccountByIDs retrieves multiple accounts, keyed by account ID. Missing
// IDs are absent from the map rather than an error.
func (s *accountService) GetAccountByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
}

// ListAccounts retrieves a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.accountRepo.ListAccounts(ctx, limit, offset)
}
