package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quantabook/ledger_core/internal/apperrors"
	"github.com/quantabook/ledger_core/internal/core/domain"
	portsrepo "github.com/quantabook/ledger_core/internal/core/ports/repositories"
	"github.com/quantabook/ledger_core/internal/models"
)

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// Helper to convert domain.Account to models.Account for DB storage
func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		UserID:          d.UserID,
		Name:            d.Name,
		AccountType:     models.AccountType(d.AccountType),
		CurrencyCode:    d.CurrencyCode,
		Balance:         d.Balance,
		IsSystemAccount: d.IsSystemAccount,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		CreatedBy:       d.CreatedBy,
		LastUpdatedAt:   d.LastUpdatedAt,
		LastUpdatedBy:   d.LastUpdatedBy,
	}
}

// Helper to convert models.Account from DB to domain.Account
func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		UserID:          m.UserID,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		CurrencyCode:    m.CurrencyCode,
		Balance:         m.Balance,
		IsSystemAccount: m.IsSystemAccount,
		Version:         m.Version,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const accountColumns = `account_id, user_id, name, account_type, currency_code, balance, is_system_account, version, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.UserID,
		&m.Name,
		&m.AccountType,
		&m.CurrencyCode,
		&m.Balance,
		&m.IsSystemAccount,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new account. Balance starts at zero and version at
// zero; only the posting path may change either afterwards.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := toModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.pool.Exec(ctx, query,
		modelAcc.AccountID,
		modelAcc.UserID,
		modelAcc.Name,
		modelAcc.AccountType,
		modelAcc.CurrencyCode,
		modelAcc.Balance,
		modelAcc.IsSystemAccount,
		modelAcc.Version,
		modelAcc.CreatedAt,
		modelAcc.CreatedBy,
		modelAcc.LastUpdatedAt,
		modelAcc.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, modelAcc.AccountID)
			}
		}
		return fmt.Errorf("failed to save account %s: %w", modelAcc.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	modelAcc, err := scanAccount(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	domainAcc := toDomainAccount(modelAcc)
	return &domainAcc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`

	rows, err := r.pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		modelAcc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accountsMap[modelAcc.AccountID] = toDomainAccount(modelAcc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}

	// It's possible not all requested IDs were found, the map will simply not
	// contain them. The caller (service) should check if all needed accounts
	// were retrieved.
	return accountsMap, nil
}

// ListAccounts retrieves a paginated list of accounts.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY name
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		modelAcc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, toDomainAccount(modelAcc))
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", rows.Err())
	}

	return accounts, nil
}

// ApplyBalanceDeltaInTx adds delta to the account's derived balance under
// optimistic concurrency: the write only lands if the row's version still
// equals expectedVersion, and the version is bumped in the same statement.
// Zero rows affected means either the account vanished or another posting
// got there first; the two cases map to ErrNotFound and ErrConcurrency.
func (r *PgxAccountRepository) ApplyBalanceDeltaInTx(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal, expectedVersion int64, updatedBy string) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    version = version + 1,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE account_id = $1 AND version = $5;
	`

	cmdTag, err := tx.Exec(ctx, query, accountID, delta, time.Now().UTC(), updatedBy, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to apply balance delta to account %s: %w", accountID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		var currentVersion int64
		err := tx.QueryRow(ctx, `SELECT version FROM accounts WHERE account_id = $1;`, accountID).Scan(&currentVersion)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountID)
		}
		if err != nil {
			return fmt.Errorf("failed to check account %s after version conflict: %w", accountID, err)
		}
		return fmt.Errorf("%w: account %s version moved from %d to %d", apperrors.ErrConcurrency, accountID, expectedVersion, currentVersion)
	}

	return nil
}
