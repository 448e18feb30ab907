package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/gastos/internal/model"
)

func TestDefault(t *testing.T) {
	svc := Default(nil)

	assert.Len(t, svc.Categories(), 10)
	assert.Equal(t, model.CategoryFuel, svc.Categories()[0])
	assert.Equal(t, DefaultCrew, svc.Crew())
	assert.Equal(t, []model.JobType{model.JobPort, model.JobInlandWaters}, svc.JobTypes())
}

func TestCustomCrew(t *testing.T) {
	svc := Default([]string{"Ana", "Luis"})
	assert.Equal(t, []string{"Ana", "Luis"}, svc.Crew())
	assert.True(t, svc.IsCrew("ana"))
	assert.False(t, svc.IsCrew("Tripulante 1"))
}

func TestResolve(t *testing.T) {
	svc := Default(nil)

	c, ok := svc.Resolve(" combustible ")
	assert.True(t, ok)
	assert.Equal(t, model.CategoryFuel, c)

	c, ok = svc.Resolve("dietas TRIPULACIÓN")
	assert.True(t, ok)
	assert.Equal(t, model.CategoryCrewMeals, c)

	c, ok = svc.Resolve("Pizza")
	assert.False(t, ok)
	assert.Equal(t, model.Category("Pizza"), c)
}

func TestCategoriesReturnsCopy(t *testing.T) {
	svc := Default(nil)
	cats := svc.Categories()
	cats[0] = "mutated"
	assert.Equal(t, model.CategoryFuel, svc.Categories()[0])
}

func TestParseJobType(t *testing.T) {
	tests := []struct {
		in   string
		want model.JobType
		ok   bool
	}{
		{"", model.JobPort, true},
		{"portuarios", model.JobPort, true},
		{"Aguas interiores", model.JobInlandWaters, true},
		{"todos", model.JobAll, true},
		{"Pesca", model.JobType("Pesca"), false},
	}
	for _, tt := range tests {
		got, ok := ParseJobType(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
	}
}
