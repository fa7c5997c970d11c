package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
	"github.com/9981mark-hub/leadmaster-crm-sub000/crm/store"
)

// =============================================================================
// BASIC CRUD
// =============================================================================

func TestMemory_PartnerRoundTrip(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	_, err := m.GetPartner(ctx, "nope")
	assert.ErrorIs(t, err, crm.ErrPartnerNotFound)

	p := crm.Partner{ID: "p1", Name: "Partner One"}
	require.NoError(t, m.SavePartner(ctx, p))

	got, err := m.GetPartner(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Partner One", got.Name)
}

func TestMemory_CaseFilters(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	open := crm.Case{ID: "c1", PartnerID: "p1", Status: crm.StatusConsulting}
	other := crm.Case{ID: "c2", PartnerID: "p2", Status: crm.StatusConsulting}
	closed := crm.Case{ID: "c3", PartnerID: "p1", Status: crm.StatusClosed, ClosedAt: crm.NewDate(2026, time.March, 1)}
	for _, c := range []crm.Case{open, other, closed} {
		require.NoError(t, m.SaveCase(ctx, c))
	}

	// Closed cases are hidden by default
	got, err := m.ListCases(ctx, crm.CaseFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = m.ListCases(ctx, crm.CaseFilter{IncludeClosed: true})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = m.ListCases(ctx, crm.CaseFilter{PartnerID: "p1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, crm.CaseID("c1"), got[0].ID)

	got, err = m.ListCases(ctx, crm.CaseFilter{Status: crm.StatusConsulting, PartnerID: "p2"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// =============================================================================
// BATCH LIFECYCLE
// =============================================================================

func TestMemory_BatchLifecycle(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	b := crm.SettlementBatch{
		ID:         "b1",
		PartnerID:  "p1",
		Status:     crm.BatchDraft,
		CutoffDate: crm.NewDate(2026, time.March, 8),
		PayoutDate: crm.NewDate(2026, time.March, 10),
		Total:      decimal.NewFromInt(150),
	}
	require.NoError(t, m.SaveBatch(ctx, b))

	confirmDay := crm.NewDate(2026, time.March, 9)
	require.NoError(t, m.UpdateBatchStatus(ctx, "b1", crm.BatchConfirmed, confirmDay))

	got, err := m.GetBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, crm.BatchConfirmed, got.Status)
	assert.True(t, got.ConfirmedAt.Equal(confirmDay))

	// Re-confirming a non-draft batch is rejected
	err = m.UpdateBatchStatus(ctx, "b1", crm.BatchConfirmed, confirmDay)
	assert.ErrorIs(t, err, crm.ErrBatchNotDraft)

	payDay := crm.NewDate(2026, time.March, 10)
	require.NoError(t, m.UpdateBatchStatus(ctx, "b1", crm.BatchPaid, payDay))

	got, err = m.GetBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, crm.BatchPaid, got.Status)
	assert.True(t, got.PaidAt.Equal(payDay))
}

func TestMemory_UpdateMissingBatch(t *testing.T) {
	m := store.NewMemory()
	err := m.UpdateBatchStatus(context.Background(), "missing", crm.BatchConfirmed, crm.Today())
	assert.ErrorIs(t, err, crm.ErrBatchNotFound)
}

// =============================================================================
// EXPENSES
// =============================================================================

func TestMemory_ExpenseMonthFilter(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveExpense(ctx, crm.Expense{ID: "e1", Date: crm.NewDate(2026, time.March, 3), Amount: decimal.NewFromInt(100)}))
	require.NoError(t, m.SaveExpense(ctx, crm.Expense{ID: "e2", Date: crm.NewDate(2026, time.April, 3), Amount: decimal.NewFromInt(200)}))

	got, err := m.ListExpenses(ctx, crm.ExpenseFilter{Month: "2026-03"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)

	all, err := m.ListExpenses(ctx, crm.ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
