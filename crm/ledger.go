/*
ledger.go - Settlement batches, expenses, and tax invoices

PURPOSE:
  The bookkeeping side of the model: what gets persisted after the pure
  calculations run. A SettlementBatch groups one partner's payable lines for
  one settlement week; expenses and tax invoices feed the profit/loss report.

BATCH LIFECYCLE:
  draft -> confirmed -> paid
  Draft batches can be rebuilt freely. Confirmation freezes the lines;
  payment records the actual transfer.

SEE ALSO:
  - settlement/batch.go: Builds draft batches from cases
  - report/profitloss.go: Aggregates batches, expenses, invoices
*/
package crm

import "github.com/shopspring/decimal"

// =============================================================================
// SETTLEMENT BATCH - One partner, one settlement week
// =============================================================================

type BatchStatus string

const (
	BatchDraft     BatchStatus = "draft"
	BatchConfirmed BatchStatus = "confirmed"
	BatchPaid      BatchStatus = "paid"
)

// BatchLine is one case's contribution to a settlement batch.
type BatchLine struct {
	CaseID     CaseID
	ClientName string

	ContractFee decimal.Decimal

	// Incremental amount payable this week (already-payable amounts from
	// earlier weeks are excluded, see commission.CalculateWeekPayable).
	Payable decimal.Decimal

	// Total commission for the resolved rule, for display.
	Total decimal.Decimal

	IsPartial bool
	RuleID    RuleID
}

type SettlementBatch struct {
	ID        BatchID
	PartnerID PartnerID

	// Settlement window boundaries.
	CutoffDate Date
	PayoutDate Date

	Lines []BatchLine
	Total decimal.Decimal

	Status      BatchStatus
	CreatedAt   Date
	ConfirmedAt Date
	PaidAt      Date
}

// =============================================================================
// EXPENSE
// =============================================================================

type Expense struct {
	ID       string
	Date     Date
	Category string
	Memo     string
	Amount   decimal.Decimal
}

// =============================================================================
// TAX INVOICE - Gross split into supply amount + VAT
// =============================================================================

type TaxInvoice struct {
	ID         string
	CaseID     CaseID
	ClientName string
	IssuedAt   Date

	Gross  decimal.Decimal
	Supply decimal.Decimal
	VAT    decimal.Decimal
}
