package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/quantabook/ledger_core/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool, accountRepo)

	return &portsrepo.RepositoryProvider{
		AccountRepo: accountRepo,
		EntryRepo:   entryRepo,
	}
}
