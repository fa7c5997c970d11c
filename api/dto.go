/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the internal model from
  the external contract. Dates travel as "yyyy-MM-dd" strings; amounts as
  JSON numbers (the UI formats currency).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/partner.go: PartnerConfigJSON reused as the config payload
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/9981mark-hub/leadmaster-crm-sub000/commission"
	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
	"github.com/9981mark-hub/leadmaster-crm-sub000/factory"
	"github.com/9981mark-hub/leadmaster-crm-sub000/report"
	"github.com/9981mark-hub/leadmaster-crm-sub000/settlement"
)

// =============================================================================
// PARTNERS
// =============================================================================

type PartnerDTO struct {
	ID        string                    `json:"id"`
	Name      string                    `json:"name"`
	Manager   string                    `json:"manager,omitempty"`
	Phone     string                    `json:"phone,omitempty"`
	Config    factory.PartnerConfigJSON `json:"config"`
	CreatedAt string                    `json:"created_at,omitempty"`
}

type CreatePartnerRequest struct {
	ID      string                    `json:"id"`
	Name    string                    `json:"name"`
	Manager string                    `json:"manager,omitempty"`
	Phone   string                    `json:"phone,omitempty"`
	Config  factory.PartnerConfigJSON `json:"config"`
}

// UpdatePartnerConfigRequest replaces a partner's rules/settlement document.
type UpdatePartnerConfigRequest struct {
	Config factory.PartnerConfigJSON `json:"config"`
}

// =============================================================================
// CASES
// =============================================================================

type DepositDTO struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type ReminderDTO struct {
	Due  string `json:"due"`
	Note string `json:"note,omitempty"`
}

type CaseDTO struct {
	ID          string        `json:"id"`
	PartnerID   string        `json:"partner_id"`
	ClientName  string        `json:"client_name"`
	Phone       string        `json:"phone,omitempty"`
	Status      string        `json:"status"`
	ContractAt  string        `json:"contract_at,omitempty"`
	ContractFee float64       `json:"contract_fee"`
	Deposits    []DepositDTO  `json:"deposits"`
	Reminders   []ReminderDTO `json:"reminders,omitempty"`
	Memo        string        `json:"memo,omitempty"`
	CreatedAt   string        `json:"created_at,omitempty"`
	ClosedAt    string        `json:"closed_at,omitempty"`
}

// CreateCaseRequest accepts both the canonical deposit list and the legacy
// two-column shape still produced by the spreadsheet importer; the handler
// folds them into one history via crm.CanonicalDeposits.
type CreateCaseRequest struct {
	ID          string        `json:"id,omitempty"`
	PartnerID   string        `json:"partner_id"`
	ClientName  string        `json:"client_name"`
	Phone       string        `json:"phone,omitempty"`
	Status      string        `json:"status,omitempty"`
	ContractAt  string        `json:"contract_at,omitempty"`
	ContractFee float64       `json:"contract_fee,omitempty"`
	Deposits    []DepositDTO  `json:"deposit_history,omitempty"`
	Reminders   []ReminderDTO `json:"reminders,omitempty"`
	Memo        string        `json:"memo,omitempty"`

	// Legacy fields.
	Deposit1Amount float64 `json:"deposit1_amount,omitempty"`
	Deposit1Date   string  `json:"deposit1_date,omitempty"`
	Deposit2Amount float64 `json:"deposit2_amount,omitempty"`
	Deposit2Date   string  `json:"deposit2_date,omitempty"`
}

type UpdateCaseRequest struct {
	Status      *string  `json:"status,omitempty"`
	ContractAt  *string  `json:"contract_at,omitempty"`
	ContractFee *float64 `json:"contract_fee,omitempty"`
	Memo        *string  `json:"memo,omitempty"`
	Closed      *bool    `json:"closed,omitempty"`
}

type AddDepositRequest struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// =============================================================================
// ENGINE RESULTS
// =============================================================================

type PayableDTO struct {
	Payable   float64 `json:"payable"`
	Total     float64 `json:"total"`
	IsPartial bool    `json:"is_partial"`
	RuleID    string  `json:"rule_id,omitempty"`
}

type WarningsDTO struct {
	CaseID   string   `json:"case_id"`
	Warnings []string `json:"warnings"`
}

type WindowDTO struct {
	CutoffDate string `json:"cutoff_date"`
	PayoutDate string `json:"payout_date"`
}

// =============================================================================
// SETTLEMENT BATCHES
// =============================================================================

type BatchLineDTO struct {
	CaseID      string  `json:"case_id"`
	ClientName  string  `json:"client_name"`
	ContractFee float64 `json:"contract_fee"`
	Payable     float64 `json:"payable"`
	Total       float64 `json:"total"`
	IsPartial   bool    `json:"is_partial"`
	RuleID      string  `json:"rule_id,omitempty"`
}

type BatchDTO struct {
	ID          string         `json:"id"`
	PartnerID   string         `json:"partner_id"`
	CutoffDate  string         `json:"cutoff_date"`
	PayoutDate  string         `json:"payout_date"`
	Lines       []BatchLineDTO `json:"lines"`
	Total       float64        `json:"total"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"created_at,omitempty"`
	ConfirmedAt string         `json:"confirmed_at,omitempty"`
	PaidAt      string         `json:"paid_at,omitempty"`
}

// BuildBatchRequest drives both preview and create.
type BuildBatchRequest struct {
	PartnerID     string `json:"partner_id"`
	ReferenceDate string `json:"reference_date,omitempty"`
}

// =============================================================================
// EXPENSES / INVOICES / REPORTS
// =============================================================================

type ExpenseDTO struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Category string  `json:"category,omitempty"`
	Memo     string  `json:"memo,omitempty"`
	Amount   float64 `json:"amount"`
}

type CreateExpenseRequest struct {
	Date     string  `json:"date"`
	Category string  `json:"category,omitempty"`
	Memo     string  `json:"memo,omitempty"`
	Amount   float64 `json:"amount"`
}

type InvoiceDTO struct {
	ID         string  `json:"id"`
	CaseID     string  `json:"case_id"`
	ClientName string  `json:"client_name,omitempty"`
	IssuedAt   string  `json:"issued_at"`
	Gross      float64 `json:"gross"`
	Supply     float64 `json:"supply"`
	VAT        float64 `json:"vat"`
}

type CreateInvoiceRequest struct {
	CaseID   string  `json:"case_id"`
	IssuedAt string  `json:"issued_at,omitempty"`
	Gross    float64 `json:"gross"`
}

type ProfitLossDTO struct {
	Month      string  `json:"month"`
	Revenue    float64 `json:"revenue"`
	Commission float64 `json:"commission"`
	Expenses   float64 `json:"expenses"`
	Net        float64 `json:"net"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toPartnerDTO(p crm.Partner) PartnerDTO {
	dto := PartnerDTO{
		ID:        string(p.ID),
		Name:      p.Name,
		Manager:   p.Manager,
		Phone:     p.Phone,
		CreatedAt: dateOrEmpty(p.CreatedAt),
	}
	// Round-trip through the factory document so the API config shape is
	// exactly the stored shape.
	for _, r := range p.CommissionRules {
		active := r.Active
		dto.Config.CommissionRules = append(dto.Config.CommissionRules, factory.RuleJSON{
			ID:                  string(r.ID),
			MinFee:              r.MinFee.InexactFloat64(),
			MaxFee:              r.MaxFee.InexactFloat64(),
			Commission:          r.Commission.InexactFloat64(),
			FullPayoutThreshold: r.FullPayoutThreshold.InexactFloat64(),
			Priority:            r.Priority,
			Active:              &active,
			UpdatedAt:           r.UpdatedAt,
		})
	}
	if cfg := p.SettlementConfig; cfg != nil {
		dto.Config.Settlement = &factory.SettlementJSON{
			CutoffDay:             int(cfg.CutoffDay),
			PayoutDay:             int(cfg.PayoutDay),
			PayoutWeekDelay:       cfg.PayoutWeekDelay,
			DownPaymentPercentage: cfg.DownPaymentPercentage.InexactFloat64(),
			FirstPayoutPercentage: cfg.FirstPayoutPercentage.InexactFloat64(),
		}
	}
	return dto
}

func toCaseDTO(c crm.Case) CaseDTO {
	dto := CaseDTO{
		ID:          string(c.ID),
		PartnerID:   string(c.PartnerID),
		ClientName:  c.ClientName,
		Phone:       c.Phone,
		Status:      string(c.Status),
		ContractAt:  dateOrEmpty(c.ContractAt),
		ContractFee: c.ContractFee.InexactFloat64(),
		Deposits:    []DepositDTO{},
		Memo:        c.Memo,
		CreatedAt:   dateOrEmpty(c.CreatedAt),
		ClosedAt:    dateOrEmpty(c.ClosedAt),
	}
	for _, d := range c.DepositHistory {
		dto.Deposits = append(dto.Deposits, DepositDTO{Date: d.Date.String(), Amount: d.Amount.InexactFloat64()})
	}
	for _, r := range c.Reminders {
		dto.Reminders = append(dto.Reminders, ReminderDTO{Due: r.Due.String(), Note: r.Note})
	}
	return dto
}

func toPayableDTO(res commission.PayableResult) PayableDTO {
	dto := PayableDTO{
		Payable:   res.Payable.InexactFloat64(),
		Total:     res.Total.InexactFloat64(),
		IsPartial: res.IsPartial,
	}
	if res.Rule != nil {
		dto.RuleID = string(res.Rule.ID)
	}
	return dto
}

func toWindowDTO(w settlement.Window) WindowDTO {
	return WindowDTO{CutoffDate: w.Cutoff.String(), PayoutDate: w.Payout.String()}
}

func toBatchDTO(b crm.SettlementBatch) BatchDTO {
	dto := BatchDTO{
		ID:          string(b.ID),
		PartnerID:   string(b.PartnerID),
		CutoffDate:  b.CutoffDate.String(),
		PayoutDate:  b.PayoutDate.String(),
		Lines:       []BatchLineDTO{},
		Total:       b.Total.InexactFloat64(),
		Status:      string(b.Status),
		CreatedAt:   dateOrEmpty(b.CreatedAt),
		ConfirmedAt: dateOrEmpty(b.ConfirmedAt),
		PaidAt:      dateOrEmpty(b.PaidAt),
	}
	for _, l := range b.Lines {
		dto.Lines = append(dto.Lines, BatchLineDTO{
			CaseID:      string(l.CaseID),
			ClientName:  l.ClientName,
			ContractFee: l.ContractFee.InexactFloat64(),
			Payable:     l.Payable.InexactFloat64(),
			Total:       l.Total.InexactFloat64(),
			IsPartial:   l.IsPartial,
			RuleID:      string(l.RuleID),
		})
	}
	return dto
}

func toExpenseDTO(e crm.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:       e.ID,
		Date:     e.Date.String(),
		Category: e.Category,
		Memo:     e.Memo,
		Amount:   e.Amount.InexactFloat64(),
	}
}

func toInvoiceDTO(inv crm.TaxInvoice) InvoiceDTO {
	return InvoiceDTO{
		ID:         inv.ID,
		CaseID:     string(inv.CaseID),
		ClientName: inv.ClientName,
		IssuedAt:   inv.IssuedAt.String(),
		Gross:      inv.Gross.InexactFloat64(),
		Supply:     inv.Supply.InexactFloat64(),
		VAT:        inv.VAT.InexactFloat64(),
	}
}

func toProfitLossDTO(pl report.ProfitLoss) ProfitLossDTO {
	return ProfitLossDTO{
		Month:      pl.Month,
		Revenue:    pl.Revenue.InexactFloat64(),
		Commission: pl.Commission.InexactFloat64(),
		Expenses:   pl.Expenses.InexactFloat64(),
		Net:        pl.Net.InexactFloat64(),
	}
}

func dateOrEmpty(d crm.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
