package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/gastos/internal/catalog"
	"github.com/cleared-dev/gastos/internal/model"
)

// ErrUnknownCategory reports a category name outside the catalog.
var ErrUnknownCategory = errors.New("unknown category")

// Entry is manual input for a new expense, as typed by a user.
type Entry struct {
	Date     string
	Category string
	Crew     string
	Amount   string
	TaxRate  string
	JobType  string
	Notes    string
}

// Expense converts the entry into a candidate record for Store.Add. Empty
// fields take defaults: today, the first category, defaultRate and the
// default job type.
func (in Entry) Expense(cat *catalog.Service, defaultRate decimal.Decimal, today time.Time) (model.Expense, error) {
	e := model.Expense{
		Date:    model.Today(today),
		Crew:    strings.TrimSpace(in.Crew),
		TaxRate: defaultRate,
		Notes:   in.Notes,
	}

	if strings.TrimSpace(in.Date) != "" {
		d, err := model.ParseDate(in.Date)
		if err != nil {
			return model.Expense{}, fmt.Errorf("%w: %q", err, in.Date)
		}
		e.Date = d
	}

	amount, err := model.ParseAmount(in.Amount)
	if err != nil {
		return model.Expense{}, fmt.Errorf("%w: %q", err, in.Amount)
	}
	e.Amount = amount

	if r := strings.TrimSpace(in.TaxRate); r != "" {
		rate, err := model.ParseRate(r)
		if err != nil {
			return model.Expense{}, fmt.Errorf("%w: %q", err, in.TaxRate)
		}
		e.TaxRate = rate
	}

	e.Category = model.DefaultCategory()
	if strings.TrimSpace(in.Category) != "" {
		c, ok := cat.Resolve(in.Category)
		if !ok {
			return model.Expense{}, fmt.Errorf("%w: %q", ErrUnknownCategory, in.Category)
		}
		e.Category = c
	}

	jt, ok := catalog.ParseJobType(in.JobType)
	if !ok || jt == model.JobAll {
		return model.Expense{}, fmt.Errorf("%w: %q", ErrInvalidJobType, in.JobType)
	}
	e.JobType = jt

	return e, e.Validate()
}

// IsInputError reports whether err comes from invalid user input rather than
// from the system.
func IsInputError(err error) bool {
	for _, target := range []error{
		model.ErrInvalidAmount, model.ErrInvalidTaxRate, model.ErrInvalidDate,
		ErrUnknownCategory, ErrInvalidJobType, ErrInvalidMonth,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
