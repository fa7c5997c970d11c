// Package store provides an in-memory crm.Store implementation for tests/dev.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	partners map[crm.PartnerID]crm.Partner
	cases    map[crm.CaseID]crm.Case
	batches  map[crm.BatchID]crm.SettlementBatch
	expenses map[string]crm.Expense
	invoices map[string]crm.TaxInvoice
}

var _ crm.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		partners: make(map[crm.PartnerID]crm.Partner),
		cases:    make(map[crm.CaseID]crm.Case),
		batches:  make(map[crm.BatchID]crm.SettlementBatch),
		expenses: make(map[string]crm.Expense),
		invoices: make(map[string]crm.TaxInvoice),
	}
}

// =============================================================================
// PARTNERS
// =============================================================================

func (m *Memory) SavePartner(_ context.Context, p crm.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partners[p.ID] = p
	return nil
}

func (m *Memory) GetPartner(_ context.Context, id crm.PartnerID) (*crm.Partner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.partners[id]
	if !ok {
		return nil, crm.ErrPartnerNotFound
	}
	return &p, nil
}

func (m *Memory) ListPartners(_ context.Context) ([]crm.Partner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]crm.Partner, 0, len(m.partners))
	for _, p := range m.partners {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// CASES
// =============================================================================

func (m *Memory) SaveCase(_ context.Context, c crm.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[c.ID] = c
	return nil
}

func (m *Memory) GetCase(_ context.Context, id crm.CaseID) (*crm.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, crm.ErrCaseNotFound
	}
	return &c, nil
}

func (m *Memory) ListCases(_ context.Context, filter crm.CaseFilter) ([]crm.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []crm.Case
	for _, c := range m.cases {
		if filter.PartnerID != "" && c.PartnerID != filter.PartnerID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if !filter.IncludeClosed && !c.ClosedAt.IsZero() {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// SETTLEMENT BATCHES
// =============================================================================

func (m *Memory) SaveBatch(_ context.Context, b crm.SettlementBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[b.ID] = b
	return nil
}

func (m *Memory) GetBatch(_ context.Context, id crm.BatchID) (*crm.SettlementBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, crm.ErrBatchNotFound
	}
	return &b, nil
}

func (m *Memory) ListBatches(_ context.Context, partnerID crm.PartnerID) ([]crm.SettlementBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []crm.SettlementBatch
	for _, b := range m.batches {
		if partnerID != "" && b.PartnerID != partnerID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CutoffDate.Equal(out[j].CutoffDate) {
			return out[i].CutoffDate.Before(out[j].CutoffDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) UpdateBatchStatus(_ context.Context, id crm.BatchID, status crm.BatchStatus, at crm.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return crm.ErrBatchNotFound
	}
	switch status {
	case crm.BatchConfirmed:
		if b.Status != crm.BatchDraft {
			return crm.ErrBatchNotDraft
		}
		b.ConfirmedAt = at
	case crm.BatchPaid:
		b.PaidAt = at
	}
	b.Status = status
	m.batches[id] = b
	return nil
}

// =============================================================================
// EXPENSES
// =============================================================================

func (m *Memory) SaveExpense(_ context.Context, e crm.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[e.ID] = e
	return nil
}

func (m *Memory) ListExpenses(_ context.Context, filter crm.ExpenseFilter) ([]crm.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []crm.Expense
	for _, e := range m.expenses {
		if filter.Month != "" && e.Date.MonthKey() != filter.Month {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// =============================================================================
// TAX INVOICES
// =============================================================================

func (m *Memory) SaveInvoice(_ context.Context, inv crm.TaxInvoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.ID] = inv
	return nil
}

func (m *Memory) ListInvoices(_ context.Context) ([]crm.TaxInvoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]crm.TaxInvoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
