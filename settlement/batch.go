/*
batch.go - Settlement batch construction

PURPOSE:
  Builds one partner's draft settlement batch for a settlement window:
  per-case incremental payables, zero lines skipped, batch total summed.
  The result is a plain crm.SettlementBatch; persisting or confirming it
  is the caller's concern.

DOUBLE-COUNT PREVENTION:
  Lines use commission.CalculateWeekPayable, so amounts already payable
  before the window's week began are excluded. Running batches for
  consecutive weeks therefore pays each commission exactly once.
*/
package settlement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/9981mark-hub/leadmaster-crm-sub000/commission"
	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// BuildBatch builds a draft settlement batch for a partner's cases over the
// given window. Cases belonging to other partners are skipped, as are cases
// with nothing payable this week.
func BuildBatch(partner crm.Partner, cases []crm.Case, window Window) crm.SettlementBatch {
	batch := crm.SettlementBatch{
		ID:         crm.BatchID(uuid.NewString()),
		PartnerID:  partner.ID,
		CutoffDate: window.Cutoff,
		PayoutDate: window.Payout,
		Total:      decimal.Zero,
		Status:     crm.BatchDraft,
		CreatedAt:  crm.Today(),
	}

	weekStart := window.WeekStart()
	for _, c := range cases {
		if c.PartnerID != partner.ID {
			continue
		}

		result := commission.CalculateWeekPayable(c, partner.CommissionRules, partner.SettlementConfig, weekStart)
		if result.Rule == nil || result.Payable.IsZero() {
			continue
		}

		line := crm.BatchLine{
			CaseID:      c.ID,
			ClientName:  c.ClientName,
			ContractFee: c.ContractFee,
			Payable:     result.Payable,
			Total:       result.Total,
			IsPartial:   result.IsPartial,
			RuleID:      result.Rule.ID,
		}
		batch.Lines = append(batch.Lines, line)
		batch.Total = batch.Total.Add(result.Payable)
	}

	return batch
}
