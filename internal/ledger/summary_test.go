package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/gastos/internal/model"
)

func TestSummarize(t *testing.T) {
	march := Apply(sample(), Filter{Month: "2025-03", JobType: model.JobAll})
	s := Summarize(march)

	assert.Equal(t, 3, s.Count)
	// 342.935 + 48.364 + 10
	assert.True(t, s.Total.Equal(dec("401.299")), "total %s", s.Total)

	sum := decimal.Zero
	for _, e := range march {
		sum = sum.Add(e.Gross())
	}
	assert.True(t, sum.Equal(s.Total))

	assert.Len(t, s.ByCategory, 3)
	assert.True(t, s.ByCategory["Combustible"].Equal(dec("342.935")))
	assert.True(t, s.ByCategory["Dietas tripulación"].Equal(dec("48.364")))
	_, ok := s.ByCategory["Sueldos"]
	assert.False(t, ok, "only categories present in the filtered set")

	assert.True(t, s.ByCrew["Tripulante 1"].Equal(dec("342.935")))
	assert.True(t, s.ByCrew["Tripulante 2"].Equal(dec("48.364")))
	assert.True(t, s.ByCrew[model.NoCrew].Equal(dec("10")))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Count)
	assert.True(t, s.Total.IsZero())
	assert.Empty(t, s.ByCategory)
	assert.Empty(t, s.ByCrew)
	assert.Empty(t, s.ByCrew.Sorted())
}

func TestSummarize_ZeroNumbers(t *testing.T) {
	s := Summarize([]model.Expense{{Category: model.CategoryFuel}})
	assert.True(t, s.Total.IsZero())
	assert.True(t, s.ByCategory["Combustible"].IsZero())
}

func TestBreakdownSorted(t *testing.T) {
	b := Breakdown{
		"Tasas":       dec("10"),
		"Combustible": dec("342.935"),
		"Seguro":      dec("10"),
		"Sueldos":     dec("1200"),
	}
	sorted := b.Sorted()
	require.Len(t, sorted, 4)
	labels := []string{sorted[0].Label, sorted[1].Label, sorted[2].Label, sorted[3].Label}
	assert.Equal(t, []string{"Sueldos", "Combustible", "Seguro", "Tasas"}, labels)
	assert.True(t, sorted[0].Total.Equal(dec("1200")))
}
