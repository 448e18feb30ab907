package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// expenseJSON is the persisted shape. Numbers are raw so that legacy slots
// holding strings, nulls or garbage still decode.
type expenseJSON struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"`
	Category string          `json:"category"`
	Crew     string          `json:"crew,omitempty"`
	Amount   json.RawMessage `json:"amount"`
	TaxRate  json.RawMessage `json:"taxRate"`
	JobType  string          `json:"jobType,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// MarshalJSON writes amounts as JSON numbers.
func (e Expense) MarshalJSON() ([]byte, error) {
	amount, _ := json.Marshal(json.Number(e.Amount.String()))
	rate, _ := json.Marshal(json.Number(e.TaxRate.String()))
	return json.Marshal(expenseJSON{
		ID:       e.ID,
		Date:     e.Date.Format(DateFormat),
		Category: string(e.Category),
		Crew:     e.Crew,
		Amount:   amount,
		TaxRate:  rate,
		JobType:  string(e.JobType),
		Notes:    e.Notes,
	})
}

// UnmarshalJSON decodes leniently: absent or non-numeric amounts become zero
// and an unparseable date becomes the zero time.
func (e *Expense) UnmarshalJSON(data []byte) error {
	var raw expenseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		date = time.Time{}
	}
	*e = Expense{
		ID:       raw.ID,
		Date:     date,
		Category: Category(raw.Category),
		Crew:     raw.Crew,
		Amount:   coerceRaw(raw.Amount),
		TaxRate:  coerceRaw(raw.TaxRate),
		JobType:  JobType(raw.JobType),
		Notes:    raw.Notes,
	}
	return nil
}

func coerceRaw(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Coerce(s)
	}
	return Coerce(strings.TrimSpace(string(raw)))
}
