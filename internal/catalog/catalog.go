package catalog

import (
	"strings"

	"github.com/cleared-dev/gastos/internal/model"
)

// DefaultCrew lists the crew labels used when the config names none.
var DefaultCrew = []string{"Tripulante 1", "Tripulante 2", "Tripulante 3"}

// Service provides in-memory lookup over the category set and crew names.
type Service struct {
	categories []model.Category
	crew       []string
	byLower    map[string]model.Category
}

// NewService creates a Service. Empty crew falls back to DefaultCrew.
func NewService(categories []model.Category, crew []string) *Service {
	if len(crew) == 0 {
		crew = DefaultCrew
	}
	byLower := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		byLower[strings.ToLower(string(c))] = c
	}
	return &Service{categories: categories, crew: crew, byLower: byLower}
}

// Default returns the built-in category set with the given crew.
func Default(crew []string) *Service {
	return NewService(model.Categories, crew)
}

// Categories returns every category in display order.
func (s *Service) Categories() []model.Category {
	return append([]model.Category(nil), s.categories...)
}

// Crew returns the known crew labels.
func (s *Service) Crew() []string {
	return append([]string(nil), s.crew...)
}

// JobTypes returns the assignable job types.
func (s *Service) JobTypes() []model.JobType {
	return append([]model.JobType(nil), model.JobTypes...)
}

// Resolve maps label onto a known category case-insensitively. Unknown labels
// are returned verbatim and ok is false.
func (s *Service) Resolve(label string) (model.Category, bool) {
	label = strings.TrimSpace(label)
	if c, ok := s.byLower[strings.ToLower(label)]; ok {
		return c, true
	}
	return model.Category(label), false
}

// IsCrew reports whether name is one of the known crew labels.
func (s *Service) IsCrew(name string) bool {
	for _, c := range s.crew {
		if strings.EqualFold(c, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// ParseJobType maps user input onto a job type. Empty input yields the default.
func ParseJobType(s string) (model.JobType, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.DefaultJobType, true
	}
	for _, jt := range model.JobTypes {
		if strings.EqualFold(string(jt), s) {
			return jt, true
		}
	}
	if strings.EqualFold(string(model.JobAll), s) {
		return model.JobAll, true
	}
	return model.JobType(s), false
}
