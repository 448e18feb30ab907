package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the ISO layout used for expense dates on every wire.
const DateFormat = "2006-01-02"

// MonthFormat is the layout of a month key ("2025-03").
const MonthFormat = "2006-01"

// NoCrew labels expenses without a crew member in breakdowns.
const NoCrew = "—"

// Category labels what an expense was spent on.
type Category string

const (
	CategoryFuel        Category = "Combustible"
	CategoryMaintenance Category = "Mantenimiento"
	CategoryMooring     Category = "Amarras/Puerto"
	CategoryCrewMeals   Category = "Dietas tripulación"
	CategoryWages       Category = "Sueldos"
	CategoryInsurance   Category = "Seguro"
	CategorySupplies    Category = "Materiales/EPIs"
	CategoryFees        Category = "Tasas"
	CategoryWorkshop    Category = "Taller externo"
	CategoryMisc        Category = "Misceláneo"
)

// Categories is the enumerated category set in display order.
var Categories = []Category{
	CategoryFuel,
	CategoryMaintenance,
	CategoryMooring,
	CategoryCrewMeals,
	CategoryWages,
	CategoryInsurance,
	CategorySupplies,
	CategoryFees,
	CategoryWorkshop,
	CategoryMisc,
}

// JobType classifies the kind of work an expense belongs to.
type JobType string

const (
	JobPort         JobType = "Portuarios"
	JobInlandWaters JobType = "Aguas interiores"
	JobAll          JobType = "Todos" // filter only: matches every job type
)

// DefaultJobType is assigned when an import row has no job type.
const DefaultJobType = JobPort

// JobTypes lists the job types a record can carry.
var JobTypes = []JobType{JobPort, JobInlandWaters}

// Validation errors for manually entered values.
var (
	// ErrInvalidAmount reports a missing, non-positive or unreadable amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidTaxRate reports a negative or unreadable tax rate.
	ErrInvalidTaxRate = errors.New("invalid tax rate")
	// ErrInvalidDate reports a date not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")
)

// MaxExponent bounds the power-of-ten exponent of numbers read from text.
// Larger exponents expand to that many digits when printed.
const MaxExponent = 30

// Expense is one ledger record.
type Expense struct {
	ID       string
	Date     time.Time
	Category Category
	Crew     string
	Amount   decimal.Decimal // pre-tax base
	TaxRate  decimal.Decimal // percent, 7 = 7%
	JobType  JobType
	Notes    string
}

// DefaultCategory returns the category used when none is supplied.
func DefaultCategory() Category { return Categories[0] }

// Tax returns Amount * TaxRate / 100.
func (e Expense) Tax() decimal.Decimal {
	return e.Amount.Mul(e.TaxRate).Shift(-2)
}

// Gross returns Amount * (1 + TaxRate/100).
func (e Expense) Gross() decimal.Decimal {
	return e.Amount.Add(e.Tax())
}

// Month returns the "YYYY-MM" key of the expense date.
func (e Expense) Month() string {
	return e.Date.Format(MonthFormat)
}

// CrewLabel returns the crew name, or NoCrew when empty.
func (e Expense) CrewLabel() string {
	if strings.TrimSpace(e.Crew) == "" {
		return NoCrew
	}
	return e.Crew
}

// Validate checks a manually entered expense before it is stored.
func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.TaxRate.IsNegative() {
		return ErrInvalidTaxRate
	}
	return nil
}

// ParseDate parses an ISO date. Longer timestamps are truncated to their date part.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateFormat) {
		s = s[:len(DateFormat)]
	}
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// Today returns now truncated to a UTC date.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InRange reports whether the exponent of d lies within ±MaxExponent.
func InRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -MaxExponent && exp <= MaxExponent
}

// ParseAmount parses a manually entered decimal, accepting a comma separator.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := parseTyped(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseRate parses a manually entered tax percentage, accepting a comma separator.
func ParseRate(s string) (decimal.Decimal, error) {
	d, err := parseTyped(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidTaxRate
	}
	return d, nil
}

func parseTyped(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, err
	}
	if !InRange(d) {
		return decimal.Zero, fmt.Errorf("exponent %d out of range", d.Exponent())
	}
	return d, nil
}

// Coerce parses a numeric string leniently: empty, non-numeric or out of
// range input is zero.
func Coerce(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !InRange(d) {
		return decimal.Zero
	}
	return d
}
