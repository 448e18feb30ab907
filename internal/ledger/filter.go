package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/gastos/internal/catalog"
	"github.com/cleared-dev/gastos/internal/model"
)

// Errors returned by ParseFilter and Entry.Expense.
var (
	ErrInvalidMonth   = errors.New("invalid month, want YYYY-MM")
	ErrInvalidJobType = errors.New("unknown job type")
)

// Filter selects the records shown for a month, job type and search text.
type Filter struct {
	Month   string        // "YYYY-MM"; empty matches every month
	JobType model.JobType // model.JobAll or empty matches every job type
	Search  string
}

// ParseFilter builds a Filter from user input. Empty month and job type match
// everything.
func ParseFilter(month, jobType, search string) (Filter, error) {
	f := Filter{Month: strings.TrimSpace(month), Search: search}
	if f.Month != "" {
		if _, err := time.Parse(model.MonthFormat, f.Month); err != nil {
			return Filter{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
		}
	}
	if strings.TrimSpace(jobType) != "" {
		jt, ok := catalog.ParseJobType(jobType)
		if !ok {
			return Filter{}, fmt.Errorf("%w: %q", ErrInvalidJobType, jobType)
		}
		f.JobType = jt
	}
	return f, nil
}

// Match reports whether e passes all three checks.
func (f Filter) Match(e model.Expense) bool {
	return f.sameMonth(e) && f.typeOK(e) && f.searchOK(e)
}

func (f Filter) sameMonth(e model.Expense) bool {
	return f.Month == "" || e.Month() == f.Month
}

func (f Filter) typeOK(e model.Expense) bool {
	return f.JobType == "" || f.JobType == model.JobAll || e.JobType == f.JobType
}

func (f Filter) searchOK(e model.Expense) bool {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(string(e.Category)), q) ||
		strings.Contains(strings.ToLower(e.Notes), q) ||
		strings.Contains(strings.ToLower(e.Crew), q)
}

// Apply returns the records matching f, in their original order.
func Apply(records []model.Expense, f Filter) []model.Expense {
	out := make([]model.Expense, 0, len(records))
	for _, e := range records {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
