/*
Package report implements the bookkeeping reports: tax-invoice VAT splits,
monthly profit/loss summaries, and Excel export for the office staff.

PURPOSE:
  Everything here is derived data: it aggregates the crm model (cases,
  settlement batches, expenses, invoices) into the figures the office
  actually files or reads. Pure computation except for the Excel writers,
  which stream a workbook to an io.Writer.

KEY CONCEPTS IN THIS FILE (vat.go):
  - SplitVAT: Gross amount -> supply amount + 10% VAT
  - NewTaxInvoice: Invoice construction with the split applied

VAT MATH:
  Korean VAT is 10% on the supply amount, so gross = supply * 1.1.
  supply = round(gross / 1.1), vat = gross - supply. The subtraction form
  guarantees supply + vat == gross exactly, whatever the rounding did.
*/
package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

var vatDivisor = decimal.NewFromFloat(1.1)

// SplitVAT splits a gross amount into supply amount and VAT under the 10%
// rate. Supply is rounded to a whole currency unit; VAT takes the remainder
// so the parts always sum back to the gross.
func SplitVAT(gross decimal.Decimal) (supply, vat decimal.Decimal) {
	supply = gross.DivRound(vatDivisor, 0)
	vat = gross.Sub(supply)
	return supply, vat
}

// NewTaxInvoice builds a tax invoice for a case with the VAT split applied.
func NewTaxInvoice(c crm.Case, gross decimal.Decimal, issuedAt crm.Date) crm.TaxInvoice {
	supply, vat := SplitVAT(gross)
	return crm.TaxInvoice{
		ID:         uuid.NewString(),
		CaseID:     c.ID,
		ClientName: c.ClientName,
		IssuedAt:   issuedAt,
		Gross:      gross,
		Supply:     supply,
		VAT:        vat,
	}
}
