/*
handlers.go - HTTP API handlers for the CRM/settlement service

PURPOSE:
  Exposes the commission/settlement engine and the CRM model via REST.
  Handlers parse HTTP, validate input, delegate to the engine or the store,
  and serialize responses.

ENDPOINTS:
  Partners:
    GET    /api/partners                     List partners
    POST   /api/partners                     Create partner
    GET    /api/partners/{id}                Get partner
    PUT    /api/partners/{id}/config         Replace rules/settlement config

  Cases:
    GET    /api/cases                        List (filter: partner_id, status)
    POST   /api/cases                        Create (legacy deposits folded in)
    GET    /api/cases/{id}                   Get case
    PUT    /api/cases/{id}                   Update status/fee/memo, close
    POST   /api/cases/{id}/deposits          Record a deposit
    GET    /api/cases/{id}/warnings          Data-quality warnings
    GET    /api/cases/{id}/payable           Current payable commission

  Settlement:
    GET    /api/settlement/window            Window for ?date=&partner_id=
    POST   /api/settlement/preview           Build batch, don't persist
    GET    /api/settlement/batches           List (?partner_id=)
    POST   /api/settlement/batches           Build + persist a draft batch
    GET    /api/settlement/batches/{id}      Get batch
    POST   /api/settlement/batches/{id}/confirm  Freeze the draft
    POST   /api/settlement/batches/{id}/pay      Mark paid
    GET    /api/settlement/batches/{id}/export   Download xlsx

  Bookkeeping:
    GET/POST /api/expenses                   Expenses (?month=yyyy-MM)
    GET/POST /api/invoices                   Tax invoices (VAT server-side)
    GET    /api/reports/profit-loss          ?month=yyyy-MM
    GET    /api/reports/profit-loss/export   xlsx, ?months=yyyy-MM,yyyy-MM

ERROR HANDLING:
  Errors return JSON with status mapped from the crm error helpers:
  400 invalid input, 404 not found, 409 conflict, 500 otherwise.

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/9981mark-hub/leadmaster-crm-sub000/commission"
	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
	"github.com/9981mark-hub/leadmaster-crm-sub000/factory"
	"github.com/9981mark-hub/leadmaster-crm-sub000/report"
	"github.com/9981mark-hub/leadmaster-crm-sub000/settlement"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store crm.Store
}

// NewHandler creates a new handler backed by the given store.
func NewHandler(store crm.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// PARTNER HANDLERS
// =============================================================================

func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.Store.ListPartners(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list partners", err)
		return
	}

	dtos := make([]PartnerDTO, len(partners))
	for i, p := range partners {
		dtos[i] = toPartnerDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var req CreatePartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Partner name is required", nil)
		return
	}

	rules, cfg, err := factory.FromJSON(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid partner config", err)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	p := crm.Partner{
		ID:               crm.PartnerID(id),
		Name:             req.Name,
		Manager:          req.Manager,
		Phone:            req.Phone,
		CommissionRules:  rules,
		SettlementConfig: cfg,
		CreatedAt:        crm.Today(),
	}
	if err := h.Store.SavePartner(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save partner", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPartnerDTO(p))
}

func (h *Handler) GetPartner(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPartner(r.Context(), crm.PartnerID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get partner", err)
		return
	}
	writeJSON(w, http.StatusOK, toPartnerDTO(*p))
}

func (h *Handler) UpdatePartnerConfig(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPartner(r.Context(), crm.PartnerID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get partner", err)
		return
	}

	var req UpdatePartnerConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rules, cfg, err := factory.FromJSON(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid partner config", err)
		return
	}

	p.CommissionRules = rules
	p.SettlementConfig = cfg
	if err := h.Store.SavePartner(r.Context(), *p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save partner", err)
		return
	}
	writeJSON(w, http.StatusOK, toPartnerDTO(*p))
}

// =============================================================================
// CASE HANDLERS
// =============================================================================

func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	filter := crm.CaseFilter{
		PartnerID:     crm.PartnerID(r.URL.Query().Get("partner_id")),
		Status:        crm.Status(r.URL.Query().Get("status")),
		IncludeClosed: r.URL.Query().Get("include_closed") == "true",
	}

	cases, err := h.Store.ListCases(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cases", err)
		return
	}

	dtos := make([]CaseDTO, len(cases))
	for i, c := range cases {
		dtos[i] = toCaseDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PartnerID == "" || req.ClientName == "" {
		writeError(w, http.StatusBadRequest, "partner_id and client_name are required", nil)
		return
	}
	if _, err := h.Store.GetPartner(r.Context(), crm.PartnerID(req.PartnerID)); err != nil {
		writeStoreError(w, "Unknown partner", err)
		return
	}

	c, err := caseFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid case", err)
		return
	}
	if err := h.Store.SaveCase(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save case", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCaseDTO(c))
}

// caseFromRequest normalizes a create request into a canonical Case: dates
// parsed with fail-fast, legacy deposit columns folded into the history.
func caseFromRequest(req CreateCaseRequest) (crm.Case, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := crm.Status(req.Status)
	if status == "" {
		status = crm.StatusNew
	}
	if !status.IsKnown() {
		return crm.Case{}, fmt.Errorf("unknown status %q", status)
	}

	contractAt, err := parseOptionalDate(req.ContractAt, "contract_at")
	if err != nil {
		return crm.Case{}, err
	}

	var history []crm.Deposit
	for _, d := range req.Deposits {
		date, err := parseOptionalDate(d.Date, "deposit date")
		if err != nil {
			return crm.Case{}, err
		}
		history = append(history, crm.Deposit{Date: date, Amount: money(d.Amount)})
	}

	legacy := crm.LegacyDeposits{
		Deposit1Amount: money(req.Deposit1Amount),
		Deposit2Amount: money(req.Deposit2Amount),
	}
	if legacy.Deposit1Date, err = parseOptionalDate(req.Deposit1Date, "deposit1_date"); err != nil {
		return crm.Case{}, err
	}
	if legacy.Deposit2Date, err = parseOptionalDate(req.Deposit2Date, "deposit2_date"); err != nil {
		return crm.Case{}, err
	}

	var reminders []crm.Reminder
	for _, rem := range req.Reminders {
		due, err := parseOptionalDate(rem.Due, "reminder due")
		if err != nil {
			return crm.Case{}, err
		}
		reminders = append(reminders, crm.Reminder{Due: due, Note: rem.Note})
	}

	return crm.Case{
		ID:             crm.CaseID(id),
		PartnerID:      crm.PartnerID(req.PartnerID),
		ClientName:     req.ClientName,
		Phone:          req.Phone,
		Status:         status,
		ContractAt:     contractAt,
		ContractFee:    money(req.ContractFee),
		DepositHistory: crm.CanonicalDeposits(history, legacy),
		Reminders:      reminders,
		Memo:           req.Memo,
		CreatedAt:      crm.Today(),
	}, nil
}

func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCase(r.Context(), crm.CaseID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get case", err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseDTO(*c))
}

func (h *Handler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCase(r.Context(), crm.CaseID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get case", err)
		return
	}

	var req UpdateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Status != nil {
		status := crm.Status(*req.Status)
		if !status.IsKnown() {
			writeError(w, http.StatusBadRequest, "Unknown status", fmt.Errorf("unknown status %q", status))
			return
		}
		c.Status = status
	}
	if req.ContractAt != nil {
		date, err := parseOptionalDate(*req.ContractAt, "contract_at")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid contract date", err)
			return
		}
		c.ContractAt = date
	}
	if req.ContractFee != nil {
		c.ContractFee = money(*req.ContractFee)
	}
	if req.Memo != nil {
		c.Memo = *req.Memo
	}
	if req.Closed != nil {
		if *req.Closed {
			c.ClosedAt = crm.Today()
		} else {
			c.ClosedAt = crm.Date{}
		}
	}

	if err := h.Store.SaveCase(r.Context(), *c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save case", err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseDTO(*c))
}

func (h *Handler) AddDeposit(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCase(r.Context(), crm.CaseID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get case", err)
		return
	}

	var req AddDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Deposit amount must be positive", nil)
		return
	}
	date, ok := crm.ParseDate(req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid deposit date", &crm.InvalidDateError{Input: req.Date, Field: "date"})
		return
	}

	c.DepositHistory = append(c.DepositHistory, crm.Deposit{Date: date, Amount: money(req.Amount)})
	if err := h.Store.SaveCase(r.Context(), *c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save case", err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseDTO(*c))
}

func (h *Handler) GetCaseWarnings(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCase(r.Context(), crm.CaseID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get case", err)
		return
	}

	// Partner may be missing for imported rows; the rule check degrades.
	partner, err := h.Store.GetPartner(r.Context(), c.PartnerID)
	if err != nil && !crm.IsNotFound(err) {
		writeError(w, http.StatusInternalServerError, "Failed to get partner", err)
		return
	}

	warnings := commission.Warnings(*c, partner)
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, WarningsDTO{CaseID: string(c.ID), Warnings: warnings})
}

func (h *Handler) GetCasePayable(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCase(r.Context(), crm.CaseID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get case", err)
		return
	}
	partner, err := h.Store.GetPartner(r.Context(), c.PartnerID)
	if err != nil {
		writeStoreError(w, "Failed to get partner", err)
		return
	}

	result := commission.CalculatePayable(*c, partner.CommissionRules, partner.SettlementConfig)
	writeJSON(w, http.StatusOK, toPayableDTO(result))
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

func (h *Handler) GetSettlementWindow(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("date")
	if ref == "" {
		ref = crm.Today().String()
	}

	var cfg *crm.SettlementConfig
	if pid := r.URL.Query().Get("partner_id"); pid != "" {
		partner, err := h.Store.GetPartner(r.Context(), crm.PartnerID(pid))
		if err != nil {
			writeStoreError(w, "Failed to get partner", err)
			return
		}
		cfg = partner.SettlementConfig
	}

	window, err := settlement.NextWindowFromString(ref, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reference date", err)
		return
	}
	writeJSON(w, http.StatusOK, toWindowDTO(window))
}

// buildBatch shares the preview/create path: load the partner and its open
// cases, compute the window, and build the draft.
func (h *Handler) buildBatch(r *http.Request, req BuildBatchRequest) (*crm.SettlementBatch, error) {
	partner, err := h.Store.GetPartner(r.Context(), crm.PartnerID(req.PartnerID))
	if err != nil {
		return nil, err
	}

	ref := req.ReferenceDate
	if ref == "" {
		ref = crm.Today().String()
	}
	window, err := settlement.NextWindowFromString(ref, partner.SettlementConfig)
	if err != nil {
		return nil, err
	}

	cases, err := h.Store.ListCases(r.Context(), crm.CaseFilter{PartnerID: partner.ID})
	if err != nil {
		return nil, err
	}

	batch := settlement.BuildBatch(*partner, cases, window)
	return &batch, nil
}

func (h *Handler) PreviewBatch(w http.ResponseWriter, r *http.Request) {
	var req BuildBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	batch, err := h.buildBatch(r, req)
	if err != nil {
		writeStoreError(w, "Failed to build batch", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchDTO(*batch))
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req BuildBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	batch, err := h.buildBatch(r, req)
	if err != nil {
		writeStoreError(w, "Failed to build batch", err)
		return
	}
	if err := h.Store.SaveBatch(r.Context(), *batch); err != nil {
		writeStoreError(w, "Failed to save batch", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBatchDTO(*batch))
}

func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.Store.ListBatches(r.Context(), crm.PartnerID(r.URL.Query().Get("partner_id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list batches", err)
		return
	}

	dtos := make([]BatchDTO, len(batches))
	for i, b := range batches {
		dtos[i] = toBatchDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.GetBatch(r.Context(), crm.BatchID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get batch", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchDTO(*b))
}

func (h *Handler) ConfirmBatch(w http.ResponseWriter, r *http.Request) {
	h.updateBatchStatus(w, r, crm.BatchConfirmed)
}

func (h *Handler) PayBatch(w http.ResponseWriter, r *http.Request) {
	h.updateBatchStatus(w, r, crm.BatchPaid)
}

func (h *Handler) updateBatchStatus(w http.ResponseWriter, r *http.Request, status crm.BatchStatus) {
	id := crm.BatchID(chi.URLParam(r, "id"))
	if err := h.Store.UpdateBatchStatus(r.Context(), id, status, crm.Today()); err != nil {
		writeStoreError(w, "Failed to update batch", err)
		return
	}
	b, err := h.Store.GetBatch(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get batch", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchDTO(*b))
}

func (h *Handler) ExportBatch(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.GetBatch(r.Context(), crm.BatchID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get batch", err)
		return
	}
	partner, err := h.Store.GetPartner(r.Context(), b.PartnerID)
	if err != nil {
		writeStoreError(w, "Failed to get partner", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="settlement-%s-%s.xlsx"`, partner.Name, b.CutoffDate))
	if err := report.WriteBatchSheet(w, *partner, *b); err != nil {
		// Headers are already out; nothing sane left to send.
		return
	}
}

// =============================================================================
// EXPENSE / INVOICE HANDLERS
// =============================================================================

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.Store.ListExpenses(r.Context(), crm.ExpenseFilter{Month: r.URL.Query().Get("month")})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expenses", err)
		return
	}

	dtos := make([]ExpenseDTO, len(expenses))
	for i, e := range expenses {
		dtos[i] = toExpenseDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, ok := crm.ParseDate(req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid expense date", &crm.InvalidDateError{Input: req.Date, Field: "date"})
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Expense amount must be positive", nil)
		return
	}

	e := crm.Expense{
		ID:       uuid.NewString(),
		Date:     date,
		Category: req.Category,
		Memo:     req.Memo,
		Amount:   money(req.Amount),
	}
	if err := h.Store.SaveExpense(r.Context(), e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(e))
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Store.ListInvoices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}

	dtos := make([]InvoiceDTO, len(invoices))
	for i, inv := range invoices {
		dtos[i] = toInvoiceDTO(inv)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Gross <= 0 {
		writeError(w, http.StatusBadRequest, "Invoice gross must be positive", nil)
		return
	}

	c, err := h.Store.GetCase(r.Context(), crm.CaseID(req.CaseID))
	if err != nil {
		writeStoreError(w, "Failed to get case", err)
		return
	}

	issuedAt := crm.Today()
	if req.IssuedAt != "" {
		var ok bool
		if issuedAt, ok = crm.ParseDate(req.IssuedAt); !ok {
			writeError(w, http.StatusBadRequest, "Invalid issue date", &crm.InvalidDateError{Input: req.IssuedAt, Field: "issued_at"})
			return
		}
	}

	inv := report.NewTaxInvoice(*c, money(req.Gross), issuedAt)
	if err := h.Store.SaveInvoice(r.Context(), inv); err != nil {
		writeStoreError(w, "Failed to save invoice", err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceDTO(inv))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

func (h *Handler) loadProfitLoss(r *http.Request, month string) (report.ProfitLoss, error) {
	cases, err := h.Store.ListCases(r.Context(), crm.CaseFilter{IncludeClosed: true})
	if err != nil {
		return report.ProfitLoss{}, err
	}
	batches, err := h.Store.ListBatches(r.Context(), "")
	if err != nil {
		return report.ProfitLoss{}, err
	}
	expenses, err := h.Store.ListExpenses(r.Context(), crm.ExpenseFilter{Month: month})
	if err != nil {
		return report.ProfitLoss{}, err
	}
	return report.Summarize(month, cases, batches, expenses), nil
}

func (h *Handler) GetProfitLoss(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = crm.Today().MonthKey()
	}

	pl, err := h.loadProfitLoss(r, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfitLossDTO(pl))
}

func (h *Handler) ExportProfitLoss(w http.ResponseWriter, r *http.Request) {
	months := strings.Split(r.URL.Query().Get("months"), ",")
	if len(months) == 1 && months[0] == "" {
		// Default to the trailing three months, oldest first.
		today := crm.Today()
		months = []string{
			today.AddMonths(-2).MonthKey(),
			today.AddMonths(-1).MonthKey(),
			today.MonthKey(),
		}
	}

	var rows []report.ProfitLoss
	for _, month := range months {
		pl, err := h.loadProfitLoss(r, month)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to build report", err)
			return
		}
		rows = append(rows, pl)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="profit-loss.xlsx"`)
	if err := report.WriteProfitLossSheet(w, rows); err != nil {
		return
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps model errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case crm.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, crm.ErrDuplicateID) || errors.Is(err, crm.ErrBatchNotDraft):
		writeError(w, http.StatusConflict, message, err)
	case crm.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func parseOptionalDate(s, field string) (crm.Date, error) {
	if s == "" {
		return crm.Date{}, nil
	}
	d, ok := crm.ParseDate(s)
	if !ok {
		return crm.Date{}, &crm.InvalidDateError{Input: s, Field: field}
	}
	return d, nil
}
