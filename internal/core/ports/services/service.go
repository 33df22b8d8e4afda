package services

import "context"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Posting        PostingSvcFacade
	Integrity      IntegritySvcFacade
	Reconciliation ReconciliationSvcFacade
}

// Alerter routes CRITICAL integrity and reconciliation findings to whatever
// alerting collaborator is wired in. Findings are observational; they are
// never thrown at a caller because scheduled sweeps have none.
type Alerter interface {
	Critical(ctx context.Context, event string, details map[string]any)
}
