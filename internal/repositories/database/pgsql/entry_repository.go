package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quantabook/ledger_core/internal/apperrors"
	"github.com/quantabook/ledger_core/internal/core/domain"
	portsrepo "github.com/quantabook/ledger_core/internal/core/ports/repositories"
	"github.com/quantabook/ledger_core/internal/models"
	"github.com/quantabook/ledger_core/internal/utils/pagination"
)

type PgxEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxEntryRepository creates a new repository for ledger entry data.
func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxEntryRepository implements portsrepo.EntryRepositoryWithTx
var _ portsrepo.EntryRepositoryWithTx = (*PgxEntryRepository)(nil)

// Helper to convert domain.Entry to models.Entry for DB storage
func toModelEntry(d domain.Entry) models.Entry {
	return models.Entry{
		EntryID:       d.EntryID,
		TransactionID: d.TransactionID,
		AccountID:     d.AccountID,
		Debit:         d.Debit,
		Credit:        d.Credit,
		EntryType:     models.EntryType(d.EntryType),
		CurrencyCode:  d.CurrencyCode,
		Description:   d.Description,
		Metadata:      d.Metadata,
		Checksum:      d.Checksum,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
	}
}

// Helper to convert models.Entry from DB to domain.Entry
func toDomainEntry(m models.Entry) domain.Entry {
	return domain.Entry{
		EntryID:       m.EntryID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Debit:         m.Debit,
		Credit:        m.Credit,
		EntryType:     domain.EntryType(m.EntryType),
		CurrencyCode:  m.CurrencyCode,
		Description:   m.Description,
		Metadata:      m.Metadata,
		Checksum:      m.Checksum,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
}

func toDomainEntrySlice(ms []models.Entry) []domain.Entry {
	ds := make([]domain.Entry, len(ms))
	for i, m := range ms {
		ds[i] = toDomainEntry(m)
	}
	return ds
}

const entryColumns = `entry_id, transaction_id, account_id, debit, credit, entry_type, currency_code, description, metadata, checksum, created_at, created_by`

func scanEntry(row pgx.Row) (models.Entry, error) {
	var m models.Entry
	err := row.Scan(
		&m.EntryID,
		&m.TransactionID,
		&m.AccountID,
		&m.Debit,
		&m.Credit,
		&m.EntryType,
		&m.CurrencyCode,
		&m.Description,
		&m.Metadata,
		&m.Checksum,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	return m, err
}

// translateEntryError maps the schema-level immutability trigger exception to
// apperrors.ErrImmutability so callers see the application taxonomy instead
// of a raw PG error. Hitting it means someone tried to rewrite history.
func translateEntryError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "P0001" && strings.Contains(pgErr.Message, "immutable") {
		return fmt.Errorf("%w: %s", apperrors.ErrImmutability, pgErr.Message)
	}
	return err
}

// SavePosting inserts the entry group and applies the account balance deltas
// within a single database transaction. Any failure anywhere rolls back all
/// of it: entries for a transaction either all exist or none do.
func (r *PgxEntryRepository) SavePosting(ctx context.Context, entries []domain.Entry, deltas map[string]portsrepo.BalanceDelta, updatedBy string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if the transaction commits successfully
	defer r.Rollback(ctx, tx)

	// 1. Batch-insert the entries
	batch := &pgx.Batch{}
	insertQuery := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, entry := range entries {
		m := toModelEntry(entry)
		batch.Queue(insertQuery,
			m.EntryID,
			m.TransactionID,
			m.AccountID,
			m.Debit,
			m.Credit,
			m.EntryType,
			m.CurrencyCode,
			m.Description,
			m.Metadata,
			m.Checksum,
			m.CreatedAt,
			m.CreatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert entry batch", translateEntryError(err))
	}

	// 2. Apply the per-account deltas under version compare-and-swap. A stale
	// version surfaces as ErrConcurrency and aborts the whole posting.
	for accountID, delta := range deltas {
		if delta.Delta.IsZero() {
			continue
		}
		if err := r.accountRepo.ApplyBalanceDeltaInTx(ctx, tx, accountID, delta.Delta, delta.ExpectedVersion, updatedBy); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// FindEntriesByTransactionID retrieves all entries belonging to a transaction.
func (r *PgxEntryRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE transaction_id = $1
		ORDER BY created_at, entry_id;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for transaction "+transactionID, err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row for transaction "+transactionID, err)
		}
		entries = append(entries, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for transaction "+transactionID, err)
	}

	return toDomainEntrySlice(entries), nil
}

// ListEntriesByAccountID retrieves a keyset-paginated page of an account's
// entry history, newest first. The cursor is (created_at, entry_id) so the
// ordering is stable even when many entries share a timestamp.
func (r *PgxEntryRepository) ListEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE account_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, entry_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastEntryID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		// Tuple comparison is concise and efficient in Postgres
		cursorClause := `AND (created_at, entry_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastEntryID)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries for account "+accountID, err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row for account "+accountID, scanErr)
		}
		entries = append(entries, m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows for account "+accountID, err)
	}

	var nextTokenVal *string
	results := entries
	if len(entries) > limit {
		lastEntry := entries[limit-1] // the actual last item of the current page
		token := pagination.EncodeToken(lastEntry.CreatedAt, lastEntry.EntryID)
		nextTokenVal = &token
		results = entries[:limit]
	}

	return toDomainEntrySlice(results), nextTokenVal, nil
}

// ScanEntries returns up to limit entries with entry_id greater than
// afterEntryID, ordered by entry_id. Passing an empty afterEntryID starts
// from the beginning. Each call is its own short read, so a full sweep never
// holds one giant transaction.
func (r *PgxEntryRepository) ScanEntries(ctx context.Context, afterEntryID string, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = 500
	}

	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE entry_id > $1
		ORDER BY entry_id
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, afterEntryID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan entries batch", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		m, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row during batch scan", scanErr)
		}
		entries = append(entries, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows during batch scan", err)
	}

	return toDomainEntrySlice(entries), nil
}

// buildFilterClause translates a reconciliation filter into a WHERE fragment
// and its arguments. Argument numbering starts at startIdx.
func buildFilterClause(filter domain.ReconciliationFilter, startIdx int) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	idx := startIdx

	if filter.AccountID != "" {
		conditions = append(conditions, "account_id = $"+strconv.Itoa(idx))
		args = append(args, filter.AccountID)
		idx++
	}
	if filter.CurrencyCode != "" {
		conditions = append(conditions, "currency_code = $"+strconv.Itoa(idx))
		args = append(args, filter.CurrencyCode)
		idx++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "created_at >= $"+strconv.Itoa(idx))
		args = append(args, *filter.StartDate)
		idx++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "created_at < $"+strconv.Itoa(idx))
		args = append(args, *filter.EndDate)
		idx++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// SumEntries computes total debits, total credits and the entry count over
// the filtered scope.
func (r *PgxEntryRepository) SumEntries(ctx context.Context, filter domain.ReconciliationFilter) (portsrepo.EntrySums, error) {
	whereClause, args := buildFilterClause(filter, 1)

	query := `
		SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0), COUNT(*)
		FROM entries
	` + whereClause + `;`

	var sums portsrepo.EntrySums
	err := r.Pool.QueryRow(ctx, query, args...).Scan(&sums.TotalDebits, &sums.TotalCredits, &sums.Count)
	if err != nil {
		return portsrepo.EntrySums{}, apperrors.NewAppError(500, "failed to sum entries", err)
	}

	return sums, nil
}

// FindDiscrepantTransactions returns transaction ids whose own per-currency
// debit/credit sums do not balance within the filtered scope.
func (r *PgxEntryRepository) FindDiscrepantTransactions(ctx context.Context, filter domain.ReconciliationFilter) ([]string, error) {
	whereClause, args := buildFilterClause(filter, 1)

	query := `
		SELECT DISTINCT transaction_id
		FROM (
			SELECT transaction_id, currency_code, SUM(debit) AS debits, SUM(credit) AS credits
			FROM entries
			` + whereClause + `
			GROUP BY transaction_id, currency_code
		) grouped
		WHERE debits <> credits
		ORDER BY transaction_id;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query discrepant transactions", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan discrepant transaction id", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating discrepant transaction rows", err)
	}

	return ids, nil
}

// ComputeAccountBalance recomputes an account's signed balance purely from
// its entry history. The sign convention matches
// accounting.CalculateSignedAmount: debits increase ASSET/EXPENSE accounts,
// credits increase LIABILITY/EQUITY/REVENUE accounts.
func (r *PgxEntryRepository) ComputeAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, *time.Time, error) {
	query := `
		SELECT
			COALESCE(SUM(
				CASE WHEN a.account_type IN ('ASSET', 'EXPENSE')
					THEN e.debit - e.credit
					ELSE e.credit - e.debit
				END
			), 0) AS computed_balance,
			MAX(e.created_at) AS last_entry_at
		FROM accounts a
		LEFT JOIN entries e ON e.account_id = a.account_id
		WHERE a.account_id = $1
		GROUP BY a.account_id;
	`

	var computed decimal.Decimal
	var lastEntryAt *time.Time
	err := r.Pool.QueryRow(ctx, query, accountID).Scan(&computed, &lastEntryAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil, apperrors.ErrNotFound
		}
		return decimal.Zero, nil, apperrors.NewAppError(500, "failed to compute balance for account "+accountID, err)
	}

	return computed, lastEntryAt, nil
}
