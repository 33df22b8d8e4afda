package services

import (
	portsrepo "github.com/quantabook/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
	"github.com/quantabook/ledger_core/internal/platform/config"
)

// NewServiceContainer creates and initializes all application services with
// their required dependencies.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, cfg *config.Config) *portssvc.ServiceContainer {
	accountSvc := NewAccountService(repos.AccountRepo)
	integritySvc := NewIntegrityService(repos.EntryRepo)
	postingSvc := NewPostingService(
		repos.EntryRepo,
		accountSvc,
		integritySvc,
		cfg.Posting.MaxAttempts,
		cfg.Posting.RetryBackoff,
	)
	reconciliationSvc := NewReconciliationService(repos.EntryRepo, repos.AccountRepo)

	return &portssvc.ServiceContainer{
		Account:        accountSvc,
		Posting:        postingSvc,
		Integrity:      integritySvc,
		Reconciliation: reconciliationSvc,
	}
}
