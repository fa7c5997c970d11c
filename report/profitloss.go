/*
profitloss.go - Monthly profit/loss aggregation

PURPOSE:
  The owner's monthly view: revenue actually received (deposits), commission
  paid out to partners (settled batches), office expenses, and the net.

BUCKETING:
  Everything buckets by calendar month (yyyy-MM):
  - Revenue: deposit entries by deposit date
  - Commission: confirmed/paid batches by payout date
  - Expenses: by expense date
  Draft batches are projections, not money out the door, so they are
  excluded from commission.
*/
package report

import (
	"github.com/shopspring/decimal"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// ProfitLoss is one month's summary.
type ProfitLoss struct {
	Month      string
	Revenue    decimal.Decimal
	Commission decimal.Decimal
	Expenses   decimal.Decimal
	Net        decimal.Decimal
}

// Summarize computes the profit/loss for one yyyy-MM month.
func Summarize(month string, cases []crm.Case, batches []crm.SettlementBatch, expenses []crm.Expense) ProfitLoss {
	pl := ProfitLoss{
		Month:      month,
		Revenue:    decimal.Zero,
		Commission: decimal.Zero,
		Expenses:   decimal.Zero,
	}

	for _, c := range cases {
		for _, d := range c.DepositHistory {
			if d.Date.MonthKey() == month {
				pl.Revenue = pl.Revenue.Add(d.Amount)
			}
		}
	}

	for _, b := range batches {
		if b.Status == crm.BatchDraft {
			continue
		}
		if b.PayoutDate.MonthKey() == month {
			pl.Commission = pl.Commission.Add(b.Total)
		}
	}

	for _, e := range expenses {
		if e.Date.MonthKey() == month {
			pl.Expenses = pl.Expenses.Add(e.Amount)
		}
	}

	pl.Net = pl.Revenue.Sub(pl.Commission).Sub(pl.Expenses)
	return pl
}
