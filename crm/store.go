/*
store.go - Persistence interface for the CRM model

PURPOSE:
  Defines the interface between the domain model and the database. Different
  implementations back it with SQLite (production) or in-memory maps (tests).

SOFT LIFECYCLE:
  Cases are never hard-deleted. Retiring a case sets ClosedAt; list queries
  exclude closed cases unless the filter asks for them. Batches move through
  draft -> confirmed -> paid via UpdateBatchStatus.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store
  - crm/store:    In-memory store for tests and dev

SEE ALSO:
  - store/sqlite/sqlite.go
  - crm/store/memory.go
*/
package crm

import "context"

// CaseFilter narrows ListCases. Zero values mean "no constraint".
type CaseFilter struct {
	PartnerID     PartnerID
	Status        Status
	IncludeClosed bool
}

// ExpenseFilter narrows ListExpenses to a yyyy-MM month when set.
type ExpenseFilter struct {
	Month string
}

// Store handles persistence of the CRM model.
type Store interface {
	// Partners
	SavePartner(ctx context.Context, p Partner) error
	GetPartner(ctx context.Context, id PartnerID) (*Partner, error)
	ListPartners(ctx context.Context) ([]Partner, error)

	// Cases
	SaveCase(ctx context.Context, c Case) error
	GetCase(ctx context.Context, id CaseID) (*Case, error)
	ListCases(ctx context.Context, filter CaseFilter) ([]Case, error)

	// Settlement batches
	SaveBatch(ctx context.Context, b SettlementBatch) error
	GetBatch(ctx context.Context, id BatchID) (*SettlementBatch, error)
	ListBatches(ctx context.Context, partnerID PartnerID) ([]SettlementBatch, error)
	UpdateBatchStatus(ctx context.Context, id BatchID, status BatchStatus, at Date) error

	// Expenses
	SaveExpense(ctx context.Context, e Expense) error
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error)

	// Tax invoices
	SaveInvoice(ctx context.Context, inv TaxInvoice) error
	ListInvoices(ctx context.Context) ([]TaxInvoice, error)
}
