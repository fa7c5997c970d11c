/*
excel.go - Excel export for settlement batches and profit/loss

PURPOSE:
  The office hands partners their weekly settlement sheet and keeps the
  monthly P&L in a workbook, so both export as .xlsx. Sheets are plain
  header row + data rows; formatting beyond column headers is left to the
  humans who own the files.
*/
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
)

// WriteBatchSheet writes one settlement batch as an xlsx workbook.
func WriteBatchSheet(w io.Writer, partner crm.Partner, batch crm.SettlementBatch) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Settlement"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"Case ID", "Client", "Contract Fee", "Payable", "Total Commission", "Partial", "Rule"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	row := 2
	for _, line := range batch.Lines {
		partial := ""
		if line.IsPartial {
			partial = "partial"
		}
		values := []any{
			string(line.CaseID),
			line.ClientName,
			line.ContractFee.String(),
			line.Payable.String(),
			line.Total.String(),
			partial,
			string(line.RuleID),
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	// Summary block below the lines.
	summary := [][]any{
		{"Partner", partner.Name},
		{"Cutoff", batch.CutoffDate.String()},
		{"Payout", batch.PayoutDate.String()},
		{"Total", batch.Total.String()},
	}
	row++
	for _, vals := range summary {
		if err := writeRow(f, sheet, row, vals); err != nil {
			return err
		}
		row++
	}

	return f.Write(w)
}

// WriteProfitLossSheet writes monthly profit/loss rows as an xlsx workbook.
func WriteProfitLossSheet(w io.Writer, rows []ProfitLoss) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "ProfitLoss"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"Month", "Revenue", "Commission", "Expenses", "Net"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	for i, pl := range rows {
		values := []any{
			pl.Month,
			pl.Revenue.String(),
			pl.Commission.String(),
			pl.Expenses.String(),
			pl.Net.String(),
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}
