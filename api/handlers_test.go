/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Partner and case CRUD, legacy deposit normalization
- Warnings and payable endpoints
- Settlement window and batch lifecycle
- Expenses, invoices, profit/loss
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter() http.Handler {
	return NewRouter(NewHandler(store.NewMemory()))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// standardPartnerConfig is the canonical test setup: one open-ended rule
// paying 100 with full payout at deposit 500, weekly Sunday/Tuesday window.
func standardPartnerConfig() map[string]any {
	return map[string]any{
		"commission_rules": []map[string]any{
			{"id": "std", "min_fee": 0, "commission": 100, "full_payout_threshold": 500},
		},
		"settlement": map[string]any{
			"cutoff_day":              0,
			"payout_day":              2,
			"down_payment_percentage": 10,
			"first_payout_percentage": 50,
		},
	}
}

func createTestPartner(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/partners", map[string]any{
		"id":     "p1",
		"name":   "Test Partner",
		"config": standardPartnerConfig(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Failed to create partner: %d %s", rec.Code, rec.Body.String())
	}
	return "p1"
}

func createTestCase(t *testing.T, router http.Handler, body map[string]any) CaseDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/cases", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Failed to create case: %d %s", rec.Code, rec.Body.String())
	}
	return decode[CaseDTO](t, rec)
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealthEndpoint(t *testing.T) {
	rec := doJSON(t, newTestRouter(), http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

// =============================================================================
// PARTNERS
// =============================================================================

func TestCreateAndGetPartner(t *testing.T) {
	router := newTestRouter()
	id := createTestPartner(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/partners/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	dto := decode[PartnerDTO](t, rec)
	if dto.Name != "Test Partner" {
		t.Errorf("Expected name 'Test Partner', got %q", dto.Name)
	}
	if len(dto.Config.CommissionRules) != 1 {
		t.Fatalf("Expected 1 rule, got %d", len(dto.Config.CommissionRules))
	}
	if dto.Config.Settlement == nil || dto.Config.Settlement.PayoutDay != 2 {
		t.Errorf("Settlement config not round-tripped: %+v", dto.Config.Settlement)
	}
}

func TestCreatePartner_RequiresName(t *testing.T) {
	rec := doJSON(t, newTestRouter(), http.MethodPost, "/api/partners", map[string]any{"id": "p1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestGetPartner_NotFound(t *testing.T) {
	rec := doJSON(t, newTestRouter(), http.MethodGet, "/api/partners/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestUpdatePartnerConfig_Invalid(t *testing.T) {
	router := newTestRouter()
	id := createTestPartner(t, router)

	rec := doJSON(t, router, http.MethodPut, "/api/partners/"+id+"/config", map[string]any{
		"config": map[string]any{
			"commission_rules": []map[string]any{{"commission": 10}}, // missing id
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

// =============================================================================
// CASES
// =============================================================================

func TestCreateCase_LegacyDepositsNormalized(t *testing.T) {
	// GIVEN: A create request still using the old deposit1/deposit2 columns
	router := newTestRouter()
	pid := createTestPartner(t, router)

	dto := createTestCase(t, router, map[string]any{
		"partner_id":      pid,
		"client_name":     "Hong Gildong",
		"status":          "계약 완료",
		"contract_at":     "2026-03-02",
		"contract_fee":    1000,
		"deposit1_amount": 100,
		"deposit1_date":   "2026-03-03",
		"deposit2_amount": 400,
		"deposit2_date":   "2026-03-05",
	})

	// THEN: The stored case carries one canonical deposit history
	if len(dto.Deposits) != 2 {
		t.Fatalf("Expected 2 canonical deposits, got %d", len(dto.Deposits))
	}
	if dto.Deposits[0].Amount != 100 || dto.Deposits[0].Date != "2026-03-03" {
		t.Errorf("First deposit wrong: %+v", dto.Deposits[0])
	}
	if dto.Deposits[1].Amount != 400 {
		t.Errorf("Second deposit wrong: %+v", dto.Deposits[1])
	}
}

func TestCreateCase_UnknownPartner(t *testing.T) {
	rec := doJSON(t, newTestRouter(), http.MethodPost, "/api/cases", map[string]any{
		"partner_id":  "ghost",
		"client_name": "Nobody",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestCreateCase_BadDate(t *testing.T) {
	router := newTestRouter()
	pid := createTestPartner(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/cases", map[string]any{
		"partner_id":  pid,
		"client_name": "Hong Gildong",
		"contract_at": "not-a-date",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateCase_UnknownStatus(t *testing.T) {
	router := newTestRouter()
	pid := createTestPartner(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/cases", map[string]any{
		"partner_id":  pid,
		"client_name": "Hong Gildong",
		"status":      "whatever",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateCase_UnknownStatus(t *testing.T) {
	router := newTestRouter()
	pid := createTestPartner(t, router)
	c := createTestCase(t, router, map[string]any{"partner_id": pid, "client_name": "Hong Gildong"})

	bad := "whatever"
	rec := doJSON(t, router, http.MethodPut, "/api/cases/"+c.ID, UpdateCaseRequest{Status: &bad})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateCase_CloseAndReopen(t *testing.T) {
	router := newTestRouter()
	pid := createTestPartner(t, router)
	c := createTestCase(t, router, map[string]any{"partner_id": pid, "client_name": "Hong Gildong"})

	closed := true
	rec := doJSON(t, router, http.MethodPut, "/api/cases/"+c.ID, UpdateCaseRequest{Closed: &closed})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[CaseDTO](t, rec); got.ClosedAt == "" {
		t.Error("Expected closed_at to be set")
	}

	// Closed cases disappear from the default listing
	list := decode[[]CaseDTO](t, doJSON(t, router, http.MethodGet, "/api/cases", nil))
	if len(list) != 0 {
		t.Errorf("Expected closed case hidden, got %d cases", len(list))
	}
	list = decode[[]CaseDTO](t, doJSON(t, router, http.MethodGet, "/api/cases?include_closed=true", nil))
	if len(list) != 1 {
		t.Errorf("Expected 1 case with include_closed, got %d", len(list))
	}

	closed = false
	rec = doJSON(t, router, http.MethodPut, "/api/cases/"+c.ID, UpdateCaseRequest{Closed: &closed})
	if got := decode[CaseDTO](t, rec); got.ClosedAt != "" {
		t.Errorf("Expected closed_at cleared, got %q", got.ClosedAt)
	}
}

func TestAddDeposit(t *testing.T) {
	router := newTestRouter()
	pid := createTestPartner(t, router)
	c := createTestCase(t, router, map[string]any{
		"partner_id":   pid,
		"client_name":  "Hong Gildong",
		"contract_fee": 1000,
	})

	rec := doJSON(t, router, http.MethodPost, "/api/cases/"+c.ID+"/deposits",
		AddDepositRequest{Date: "2026-03-03", Amount: 250})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[CaseDTO](t, rec); len(got.Deposits) != 1 {
		t.Fatalf("Expected 1 deposit, got %d", len(got.Deposits))
	}

	rec = doJSON(t, router, http.MethodPost, "/api/cases/"+c.ID+"/deposits",
		AddDepositRequest{Date: "2026-03-03", Amount: -5})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for negative amount, got %d", rec.Code)
	}
}

// =============================================================================
// WARNINGS AND PAYABLE
// =============================================================================

func TestGetCaseWarnings_ContractedWithoutData(t *testing.T) {
	// GIVEN: A contracted case with no contract date or fee
	router := newTestRouter()
	pid := createTestPartner(t, router)
	c := createTestCase(t, router, map[string]any{
		"partner_id":  pid,
		"client_name": "Hong Gildong",
		"status":      "계약 완료",
	})

	rec := doJSON(t, router, http.MethodGet, "/api/cases/"+c.ID+"/warnings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	dto := decode[WarningsDTO](t, rec)
	want := []string{"missing contract date", "missing contract fee"}
	if len(dto.Warnings) != len(want) {
		t.Fatalf("Expected %v, got %v", want, dto.Warnings)
	}
	for i := range want {
		if dto.Warnings[i] != want[i] {
			t.Errorf("Warning %d: expected %q, got %q", i, want[i], dto.Warnings[i])
		}
	}
}

func TestGetCasePayable(t *testing.T) {
	router := newTestRouter()
	pid := createTestPartner(t, router)
	c := createTestCase(t, router, map[string]any{
		"partner_id":   pid,
		"client_name":  "Hong Gildong",
		"status":       "계약 완료",
		"contract_fee": 1000,
		"deposit_history": []map[string]any{
			{"date": "2026-03-03", "amount": 500},
		},
	})

	rec := doJSON(t, router, http.MethodGet, "/api/cases/"+c.ID+"/payable", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	dto := decode[PayableDTO](t, rec)
	if dto.Payable != 100 || dto.IsPartial {
		t.Errorf("Expected full payout of 100, got %+v", dto)
	}
	if dto.RuleID != "std" {
		t.Errorf("Expected rule 'std', got %q", dto.RuleID)
	}
}

// =============================================================================
// SETTLEMENT
// =============================================================================

func TestGetSettlementWindow(t *testing.T) {
	router := newTestRouter()

	// 2026-03-04 is a Wednesday; default config cuts off Sunday, pays Tuesday
	rec := doJSON(t, router, http.MethodGet, "/api/settlement/window?date=2026-03-04", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	dto := decode[WindowDTO](t, rec)
	if dto.CutoffDate != "2026-03-08" || dto.PayoutDate != "2026-03-10" {
		t.Errorf("Unexpected window: %+v", dto)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/settlement/window?date=banana", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestBatchLifecycle(t *testing.T) {
	// GIVEN: A partner with one case fully deposited this week
	router := newTestRouter()
	pid := createTestPartner(t, router)
	createTestCase(t, router, map[string]any{
		"partner_id":   pid,
		"client_name":  "Hong Gildong",
		"status":       "계약 완료",
		"contract_fee": 1000,
		"deposit_history": []map[string]any{
			{"date": "2026-03-03", "amount": 500},
		},
	})

	// Preview does not persist
	rec := doJSON(t, router, http.MethodPost, "/api/settlement/preview",
		BuildBatchRequest{PartnerID: pid, ReferenceDate: "2026-03-04"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Preview failed: %d %s", rec.Code, rec.Body.String())
	}
	preview := decode[BatchDTO](t, rec)
	if len(preview.Lines) != 1 || preview.Total != 100 {
		t.Fatalf("Unexpected preview: %+v", preview)
	}
	if list := decode[[]BatchDTO](t, doJSON(t, router, http.MethodGet, "/api/settlement/batches", nil)); len(list) != 0 {
		t.Fatalf("Preview must not persist, found %d batches", len(list))
	}

	// WHEN: Creating, confirming, and paying the batch
	rec = doJSON(t, router, http.MethodPost, "/api/settlement/batches",
		BuildBatchRequest{PartnerID: pid, ReferenceDate: "2026-03-04"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create failed: %d %s", rec.Code, rec.Body.String())
	}
	batch := decode[BatchDTO](t, rec)
	if batch.Status != "draft" {
		t.Fatalf("Expected draft, got %q", batch.Status)
	}

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/settlement/batches/%s/confirm", batch.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Confirm failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[BatchDTO](t, rec); got.Status != "confirmed" {
		t.Fatalf("Expected confirmed, got %q", got.Status)
	}

	// THEN: Re-confirming the frozen batch conflicts
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/settlement/batches/%s/confirm", batch.ID), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/settlement/batches/%s/pay", batch.ID), nil)
	if got := decode[BatchDTO](t, rec); got.Status != "paid" || got.PaidAt == "" {
		t.Fatalf("Expected paid batch, got %+v", got)
	}
}

func TestExportBatch(t *testing.T) {
	router := newTestRouter()
	pid := createTestPartner(t, router)
	createTestCase(t, router, map[string]any{
		"partner_id":   pid,
		"client_name":  "Hong Gildong",
		"contract_fee": 1000,
		"deposit_history": []map[string]any{
			{"date": "2026-03-03", "amount": 500},
		},
	})

	rec := doJSON(t, router, http.MethodPost, "/api/settlement/batches",
		BuildBatchRequest{PartnerID: pid, ReferenceDate: "2026-03-04"})
	batch := decode[BatchDTO](t, rec)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/settlement/batches/%s/export", batch.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Export failed: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("Expected a workbook body")
	}
}

// =============================================================================
// BOOKKEEPING
// =============================================================================

func TestExpenses(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/expenses",
		CreateExpenseRequest{Date: "2026-03-03", Category: "rent", Amount: 400})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create failed: %d %s", rec.Code, rec.Body.String())
	}
	doJSON(t, router, http.MethodPost, "/api/expenses",
		CreateExpenseRequest{Date: "2026-04-03", Category: "rent", Amount: 300})

	list := decode[[]ExpenseDTO](t, doJSON(t, router, http.MethodGet, "/api/expenses?month=2026-03", nil))
	if len(list) != 1 || list[0].Amount != 400 {
		t.Fatalf("Unexpected March expenses: %+v", list)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/expenses",
		CreateExpenseRequest{Date: "2026-03-03", Amount: 0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for zero amount, got %d", rec.Code)
	}
}

func TestInvoices_VATSplitServerSide(t *testing.T) {
	router := newTestRouter()
	pid := createTestPartner(t, router)
	c := createTestCase(t, router, map[string]any{"partner_id": pid, "client_name": "Hong Gildong"})

	rec := doJSON(t, router, http.MethodPost, "/api/invoices",
		CreateInvoiceRequest{CaseID: c.ID, IssuedAt: "2026-03-15", Gross: 1100000})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create failed: %d %s", rec.Code, rec.Body.String())
	}

	inv := decode[InvoiceDTO](t, rec)
	if inv.Supply != 1000000 || inv.VAT != 100000 {
		t.Errorf("Unexpected VAT split: %+v", inv)
	}
	if inv.ClientName != "Hong Gildong" {
		t.Errorf("Expected client name copied from the case, got %q", inv.ClientName)
	}
}

func TestGetProfitLoss(t *testing.T) {
	// GIVEN: A March deposit and a March expense
	router := newTestRouter()
	pid := createTestPartner(t, router)
	createTestCase(t, router, map[string]any{
		"partner_id":   pid,
		"client_name":  "Hong Gildong",
		"contract_fee": 1000,
		"deposit_history": []map[string]any{
			{"date": "2026-03-03", "amount": 500},
		},
	})
	doJSON(t, router, http.MethodPost, "/api/expenses",
		CreateExpenseRequest{Date: "2026-03-10", Category: "rent", Amount: 200})

	rec := doJSON(t, router, http.MethodGet, "/api/reports/profit-loss?month=2026-03", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	pl := decode[ProfitLossDTO](t, rec)
	if pl.Revenue != 500 || pl.Expenses != 200 || pl.Net != 300 {
		t.Errorf("Unexpected profit/loss: %+v", pl)
	}
	if pl.Commission != 0 {
		t.Errorf("Draft-free ledger should show no commission, got %v", pl.Commission)
	}
}
