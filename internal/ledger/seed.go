package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/gastos/internal/id"
	"github.com/cleared-dev/gastos/internal/model"
)

// Seed returns the sample records used on first run or when the slot is unreadable.
func Seed(now time.Time, ids id.Generator) []model.Expense {
	today := model.Today(now)
	return []model.Expense{
		{
			ID:       ids.NewID(),
			Date:     today,
			Category: model.CategoryFuel,
			Crew:     "Tripulante 1",
			Amount:   decimal.RequireFromString("320.5"),
			TaxRate:  decimal.NewFromInt(7),
			JobType:  model.JobPort,
			Notes:    "Repostaje gasóleo",
		},
		{
			ID:       ids.NewID(),
			Date:     today,
			Category: model.CategoryCrewMeals,
			Crew:     "Tripulante 2",
			Amount:   decimal.RequireFromString("45.2"),
			TaxRate:  decimal.NewFromInt(7),
			JobType:  model.JobInlandWaters,
			Notes:    "Comidas día",
		},
	}
}
