package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/gastos/internal/model"
)

// Breakdown maps a label to its summed gross value.
type Breakdown map[string]decimal.Decimal

// Subtotal is one entry of a sorted Breakdown.
type Subtotal struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// Sorted returns the entries by descending total, ties by label.
func (b Breakdown) Sorted() []Subtotal {
	out := make([]Subtotal, 0, len(b))
	for label, total := range b {
		out = append(out, Subtotal{Label: label, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func (b Breakdown) add(label string, v decimal.Decimal) {
	b[label] = b[label].Add(v)
}

// Summary aggregates a filtered record set.
type Summary struct {
	Total      decimal.Decimal
	Count      int
	ByCategory Breakdown
	ByCrew     Breakdown
}

// Summarize computes the gross total and the category and crew breakdowns.
func Summarize(records []model.Expense) Summary {
	s := Summary{
		Total:      decimal.Zero,
		Count:      len(records),
		ByCategory: make(Breakdown),
		ByCrew:     make(Breakdown),
	}
	for _, e := range records {
		gross := e.Gross()
		s.Total = s.Total.Add(gross)
		s.ByCategory.add(string(e.Category), gross)
		s.ByCrew.add(e.CrewLabel(), gross)
	}
	return s
}
