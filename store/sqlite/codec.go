/*
codec.go - Column helpers and JSON codecs for the SQLite store

PURPOSE:
  Conversion between model types and their stored representations: dates as
  yyyy-MM-dd TEXT (NULL when unset), money as decimal strings, and the
  deposit/reminder/batch-line collections as JSON documents.
*/
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// =============================================================================
// COLUMN HELPERS
// =============================================================================

func dateString(d crm.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// nullDate maps a zero date to NULL so "never happened" is queryable.
func nullDate(d crm.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func parseDateColumn(col sql.NullString) crm.Date {
	if !col.Valid || col.String == "" {
		return crm.Date{}
	}
	d, _ := crm.ParseDate(col.String)
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// =============================================================================
// JSON DOCUMENT TYPES
// =============================================================================

type depositJSON struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

type reminderJSON struct {
	Due  string `json:"due"`
	Note string `json:"note,omitempty"`
}

type lineJSON struct {
	CaseID      string `json:"case_id"`
	ClientName  string `json:"client_name"`
	ContractFee string `json:"contract_fee"`
	Payable     string `json:"payable"`
	Total       string `json:"total"`
	IsPartial   bool   `json:"is_partial,omitempty"`
	RuleID      string `json:"rule_id,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func depositsToJSON(deposits []crm.Deposit) []depositJSON {
	out := make([]depositJSON, len(deposits))
	for i, d := range deposits {
		out[i] = depositJSON{Date: dateString(d.Date), Amount: d.Amount.String()}
	}
	return out
}

func depositsFromJSON(docs []depositJSON) ([]crm.Deposit, error) {
	var out []crm.Deposit
	for _, doc := range docs {
		amount, err := decimal.NewFromString(doc.Amount)
		if err != nil {
			return nil, fmt.Errorf("bad deposit amount %q: %w", doc.Amount, err)
		}
		date, _ := crm.ParseDate(doc.Date)
		out = append(out, crm.Deposit{Date: date, Amount: amount})
	}
	return out, nil
}

func remindersToJSON(reminders []crm.Reminder) []reminderJSON {
	out := make([]reminderJSON, len(reminders))
	for i, r := range reminders {
		out[i] = reminderJSON{Due: dateString(r.Due), Note: r.Note}
	}
	return out
}

func remindersFromJSON(docs []reminderJSON) []crm.Reminder {
	var out []crm.Reminder
	for _, doc := range docs {
		due, _ := crm.ParseDate(doc.Due)
		out = append(out, crm.Reminder{Due: due, Note: doc.Note})
	}
	return out
}

func linesToJSON(lines []crm.BatchLine) []lineJSON {
	out := make([]lineJSON, len(lines))
	for i, l := range lines {
		out[i] = lineJSON{
			CaseID:      string(l.CaseID),
			ClientName:  l.ClientName,
			ContractFee: l.ContractFee.String(),
			Payable:     l.Payable.String(),
			Total:       l.Total.String(),
			IsPartial:   l.IsPartial,
			RuleID:      string(l.RuleID),
		}
	}
	return out
}

func linesFromJSON(docs []lineJSON) ([]crm.BatchLine, error) {
	var out []crm.BatchLine
	for _, doc := range docs {
		line := crm.BatchLine{
			CaseID:     crm.CaseID(doc.CaseID),
			ClientName: doc.ClientName,
			IsPartial:  doc.IsPartial,
			RuleID:     crm.RuleID(doc.RuleID),
		}
		var err error
		if line.ContractFee, err = decimal.NewFromString(doc.ContractFee); err != nil {
			return nil, fmt.Errorf("bad line contract_fee %q: %w", doc.ContractFee, err)
		}
		if line.Payable, err = decimal.NewFromString(doc.Payable); err != nil {
			return nil, fmt.Errorf("bad line payable %q: %w", doc.Payable, err)
		}
		if line.Total, err = decimal.NewFromString(doc.Total); err != nil {
			return nil, fmt.Errorf("bad line total %q: %w", doc.Total, err)
		}
		out = append(out, line)
	}
	return out, nil
}
