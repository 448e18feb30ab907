// Package report renders the ledger as a spreadsheet.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/gastos/internal/csvcodec"
	"github.com/cleared-dev/gastos/internal/model"
)

// SheetName is the only worksheet in the exported workbook.
const SheetName = "Gastos"

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var colWidths = []float64{38, 12, 20, 16, 12, 8, 12, 12, 18, 40}

// Filename returns the download name for a month, e.g. gastos_barco_2025-03.xlsx.
func Filename(month string) string {
	return fmt.Sprintf("gastos_barco_%s.xlsx", month)
}

// WriteXLSX writes records as a single-sheet workbook with the CSV export
// columns. Amounts, rates and totals are numeric cells.
func WriteXLSX(w io.Writer, records []model.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(csvcodec.Header))
	for i, h := range csvcodec.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(SheetName, "A1", last+"1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, e := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			e.ID,
			e.Date.Format(model.DateFormat),
			string(e.Category),
			e.Crew,
			e.Amount.InexactFloat64(),
			e.TaxRate.InexactFloat64(),
			e.Tax().InexactFloat64(),
			e.Gross().InexactFloat64(),
			string(e.JobType),
			csvcodec.FlattenNotes(e.Notes),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	for i, width := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
