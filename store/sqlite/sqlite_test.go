package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *Store {
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedPartner(t *testing.T, s *Store) crm.Partner {
	p := crm.Partner{
		ID:      "p1",
		Name:    "Test Partner",
		Manager: "Manager Kim",
		CommissionRules: []crm.CommissionRule{{
			ID:                  "std",
			Commission:          decimal.NewFromInt(100),
			FullPayoutThreshold: decimal.NewFromInt(500),
			Active:              true,
		}},
		SettlementConfig: &crm.SettlementConfig{
			CutoffDay:             time.Sunday,
			PayoutDay:             time.Tuesday,
			DownPaymentPercentage: decimal.NewFromInt(10),
			FirstPayoutPercentage: decimal.NewFromInt(50),
		},
		CreatedAt: crm.NewDate(2026, time.January, 1),
	}
	require.NoError(t, s.SavePartner(context.Background(), p))
	return p
}

// =============================================================================
// PARTNERS
// =============================================================================

func TestSQLite_PartnerRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPartner(t, s)

	got, err := s.GetPartner(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Manager, got.Manager)
	require.Len(t, got.CommissionRules, 1)
	assert.True(t, got.CommissionRules[0].Commission.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, got.SettlementConfig)
	assert.Equal(t, time.Tuesday, got.SettlementConfig.PayoutDay)

	_, err = s.GetPartner(ctx, "ghost")
	assert.ErrorIs(t, err, crm.ErrPartnerNotFound)
}

func TestSQLite_PartnerUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedPartner(t, s)

	p.Name = "Renamed"
	require.NoError(t, s.SavePartner(ctx, p))

	got, err := s.GetPartner(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	all, err := s.ListPartners(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "upsert must not duplicate the row")
}

// =============================================================================
// CASES
// =============================================================================

func TestSQLite_CaseRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPartner(t, s)

	c := crm.Case{
		ID:          "c1",
		PartnerID:   "p1",
		ClientName:  "Hong Gildong",
		Phone:       "010-1234-5678",
		Status:      crm.StatusFirstDeposit,
		ContractAt:  crm.NewDate(2026, time.March, 2),
		ContractFee: decimal.NewFromInt(1000),
		DepositHistory: []crm.Deposit{
			{Date: crm.NewDate(2026, time.March, 3), Amount: decimal.NewFromInt(100)},
			{Date: crm.NewDate(2026, time.March, 10), Amount: decimal.NewFromInt(400)},
		},
		Reminders: []crm.Reminder{{Due: crm.NewDate(2026, time.March, 20), Note: "call back"}},
		Memo:      "referred by p1",
		CreatedAt: crm.NewDate(2026, time.March, 1),
	}
	require.NoError(t, s.SaveCase(ctx, c))

	got, err := s.GetCase(ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, c.ClientName, got.ClientName)
	assert.Equal(t, crm.StatusFirstDeposit, got.Status)
	assert.True(t, got.ContractAt.Equal(c.ContractAt))
	assert.True(t, got.ContractFee.Equal(c.ContractFee))
	require.Len(t, got.DepositHistory, 2)
	assert.True(t, got.CumulativeDeposit().Equal(decimal.NewFromInt(500)))
	require.Len(t, got.Reminders, 1)
	assert.Equal(t, "call back", got.Reminders[0].Note)
	assert.True(t, got.ClosedAt.IsZero())
}

func TestSQLite_CaseFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPartner(t, s)

	open := crm.Case{ID: "c1", PartnerID: "p1", ClientName: "A", Status: crm.StatusConsulting}
	closed := crm.Case{ID: "c2", PartnerID: "p1", ClientName: "B", Status: crm.StatusClosed,
		ClosedAt: crm.NewDate(2026, time.March, 1)}
	require.NoError(t, s.SaveCase(ctx, open))
	require.NoError(t, s.SaveCase(ctx, closed))

	got, err := s.ListCases(ctx, crm.CaseFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1, "closed cases hidden by default")

	got, err = s.ListCases(ctx, crm.CaseFilter{IncludeClosed: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListCases(ctx, crm.CaseFilter{Status: crm.StatusConsulting})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, crm.CaseID("c1"), got[0].ID)
}

// =============================================================================
// BATCHES
// =============================================================================

func TestSQLite_BatchLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedPartner(t, s)

	b := crm.SettlementBatch{
		ID:         "b1",
		PartnerID:  "p1",
		CutoffDate: crm.NewDate(2026, time.March, 8),
		PayoutDate: crm.NewDate(2026, time.March, 10),
		Status:     crm.BatchDraft,
		Total:      decimal.NewFromInt(150),
		CreatedAt:  crm.NewDate(2026, time.March, 4),
		Lines: []crm.BatchLine{
			{CaseID: "c1", ClientName: "Hong Gildong", ContractFee: decimal.NewFromInt(1000),
				Payable: decimal.NewFromInt(100), Total: decimal.NewFromInt(100), RuleID: "std"},
			{CaseID: "c2", ClientName: "Kim Cheolsu", ContractFee: decimal.NewFromInt(1000),
				Payable: decimal.NewFromInt(50), Total: decimal.NewFromInt(100), IsPartial: true, RuleID: "std"},
		},
	}
	require.NoError(t, s.SaveBatch(ctx, b))

	got, err := s.GetBatch(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(150)))
	assert.True(t, got.Lines[1].IsPartial)

	confirmDay := crm.NewDate(2026, time.March, 9)
	require.NoError(t, s.UpdateBatchStatus(ctx, "b1", crm.BatchConfirmed, confirmDay))

	got, err = s.GetBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, crm.BatchConfirmed, got.Status)
	assert.True(t, got.ConfirmedAt.Equal(confirmDay))

	err = s.UpdateBatchStatus(ctx, "b1", crm.BatchConfirmed, confirmDay)
	assert.ErrorIs(t, err, crm.ErrBatchNotDraft)

	require.NoError(t, s.UpdateBatchStatus(ctx, "b1", crm.BatchPaid, crm.NewDate(2026, time.March, 10)))
	got, err = s.GetBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, crm.BatchPaid, got.Status)
	assert.False(t, got.PaidAt.IsZero())
}

func TestSQLite_BatchNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetBatch(context.Background(), "ghost")
	assert.ErrorIs(t, err, crm.ErrBatchNotFound)

	err = s.UpdateBatchStatus(context.Background(), "ghost", crm.BatchPaid, crm.Today())
	assert.ErrorIs(t, err, crm.ErrBatchNotFound)
}

// =============================================================================
// EXPENSES AND INVOICES
// =============================================================================

func TestSQLite_ExpenseMonthFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveExpense(ctx, crm.Expense{
		ID: "e1", Date: crm.NewDate(2026, time.March, 3), Category: "rent",
		Amount: decimal.NewFromInt(400),
	}))
	require.NoError(t, s.SaveExpense(ctx, crm.Expense{
		ID: "e2", Date: crm.NewDate(2026, time.April, 3), Category: "rent",
		Amount: decimal.NewFromInt(300),
	}))

	got, err := s.ListExpenses(ctx, crm.ExpenseFilter{Month: "2026-03"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(400)))

	all, err := s.ListExpenses(ctx, crm.ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_InvoiceRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inv := crm.TaxInvoice{
		ID:         "i1",
		CaseID:     "c1",
		ClientName: "Hong Gildong",
		IssuedAt:   crm.NewDate(2026, time.March, 15),
		Gross:      decimal.NewFromInt(1_100_000),
		Supply:     decimal.NewFromInt(1_000_000),
		VAT:        decimal.NewFromInt(100_000),
	}
	require.NoError(t, s.SaveInvoice(ctx, inv))

	got, err := s.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Gross.Equal(inv.Gross))
	assert.True(t, got[0].Supply.Add(got[0].VAT).Equal(got[0].Gross))
}
