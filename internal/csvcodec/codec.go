// Package csvcodec reads and writes the ledger's CSV exchange format.
package csvcodec

import (
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/gastos/internal/model"
)

// Column names of the export header, in order.
const (
	ColID      = "id"
	ColDate    = "fecha"
	ColCat     = "categoria"
	ColCrew    = "tripulante"
	ColBase    = "base_eur"
	ColRate    = "igic_%"
	ColTax     = "igic_eur"
	ColTotal   = "total_eur"
	ColJobType = "tipo_trabajo"
	ColNotes   = "notas"

	// Legacy spellings accepted on import.
	ColBaseLegacy = "importe"
	ColRateLegacy = "iva_%"
)

// Header is the fixed export column order.
var Header = []string{ColID, ColDate, ColCat, ColCrew, ColBase, ColRate, ColTax, ColTotal, ColJobType, ColNotes}

const (
	numFields  = 10
	colID      = 0
	colDate    = 1
	colCat     = 2
	colCrew    = 3
	colBase    = 4
	colRate    = 5
	colTax     = 6
	colTotal   = 7
	colJobType = 8
	colNotes   = 9
)

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// MarshalRow converts an expense to its export row (unquoted values).
func MarshalRow(e model.Expense) []string {
	row := make([]string, numFields)
	row[colID] = e.ID
	row[colDate] = e.Date.Format(model.DateFormat)
	row[colCat] = string(e.Category)
	row[colCrew] = e.Crew
	row[colBase] = e.Amount.String()
	row[colRate] = e.TaxRate.String()
	row[colTax] = e.Tax().String()
	row[colTotal] = e.Gross().String()
	row[colJobType] = string(e.JobType)
	row[colNotes] = FlattenNotes(e.Notes)
	return row
}

// Encode renders the header and one row per record. Every field is quoted and
// rows are joined with "\n".
func Encode(records []model.Expense) string {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, joinQuoted(Header))
	for _, e := range records {
		lines = append(lines, joinQuoted(MarshalRow(e)))
	}
	return strings.Join(lines, "\n")
}

// Write encodes records to w.
func Write(w io.Writer, records []model.Expense) error {
	if _, err := io.WriteString(w, Encode(records)); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

// FlattenNotes replaces line breaks with spaces so a note stays on one row.
func FlattenNotes(s string) string {
	return newlines.Replace(s)
}

// Filename returns the download name for a month, e.g. gastos_barco_2025-03.csv.
func Filename(month string) string {
	return fmt.Sprintf("gastos_barco_%s.csv", month)
}

func joinQuoted(fields []string) string {
	quotedFields := make([]string, len(fields))
	for i, f := range fields {
		quotedFields[i] = quoteField(f)
	}
	return strings.Join(quotedFields, ",")
}
