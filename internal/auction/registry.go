package auction

import (
	"fmt"
	"strings"

	"github.com/rickgao/mock-auction/internal/model"
)

// Registry holds the teams taking part in the auction.
// It is not safe for concurrent use; the Engine serializes access.
type Registry struct {
	teams map[string]*model.Team
	order []string // registration order
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		teams: make(map[string]*model.Team),
	}
}

// AddTeam registers a team with its starting budget.
func (r *Registry) AddTeam(name string, initialBudget int) (model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Team{}, fmt.Errorf("team name: %w", ErrInvalidName)
	}
	if strings.EqualFold(name, model.Unsold) {
		return model.Team{}, fmt.Errorf("team name %q is reserved: %w", name, ErrInvalidName)
	}
	if initialBudget < 0 {
		return model.Team{}, fmt.Errorf("team %s budget %d: %w", name, initialBudget, ErrInvalidAmount)
	}
	if _, ok := r.teams[name]; ok {
		return model.Team{}, fmt.Errorf("team %s: %w", name, ErrDuplicateTeam)
	}

	t := &model.Team{Name: name, Budget: initialBudget, InitialBudget: initialBudget}
	r.teams[name] = t
	r.order = append(r.order, name)
	return *t, nil
}

// Has reports whether the team is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.teams[name]
	return ok
}

// Team returns a copy of the team record.
func (r *Registry) Team(name string) (model.Team, error) {
	t, ok := r.teams[name]
	if !ok {
		return model.Team{}, fmt.Errorf("team %s: %w", name, ErrUnknownTeam)
	}
	return *t, nil
}

// Budget returns the team's remaining budget.
func (r *Registry) Budget(name string) (int, error) {
	t, ok := r.teams[name]
	if !ok {
		return 0, fmt.Errorf("team %s: %w", name, ErrUnknownTeam)
	}
	return t.Budget, nil
}

// CheckAdjust reports whether Adjust(name, delta) would succeed without
// applying it.
func (r *Registry) CheckAdjust(name string, delta int) error {
	t, ok := r.teams[name]
	if !ok {
		return fmt.Errorf("team %s: %w", name, ErrUnknownTeam)
	}
	if t.Budget+delta < 0 {
		return fmt.Errorf("team %s budget %d%+d: %w", name, t.Budget, delta, ErrBudgetViolation)
	}
	return nil
}

// Adjust applies delta to the team's remaining budget. Negative deltas are
// spend, positive deltas are refunds.
func (r *Registry) Adjust(name string, delta int) error {
	if err := r.CheckAdjust(name, delta); err != nil {
		return err
	}
	r.teams[name].Budget += delta
	return nil
}

// Teams returns copies of all teams in registration order.
func (r *Registry) Teams() []model.Team {
	result := make([]model.Team, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, *r.teams[name])
	}
	return result
}

// Names returns team names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered teams.
func (r *Registry) Len() int {
	return len(r.order)
}

// restoreTeam registers a team with an explicit remaining budget.
// Only used when rebuilding state from the store.
func (r *Registry) restoreTeam(t model.Team) error {
	added, err := r.AddTeam(t.Name, t.InitialBudget)
	if err != nil {
		return err
	}
	if t.Budget < 0 || t.Budget > t.InitialBudget {
		return fmt.Errorf("team %s budget %d outside [0, %d]: %w", added.Name, t.Budget, t.InitialBudget, ErrBudgetViolation)
	}
	r.teams[added.Name].Budget = t.Budget
	return nil
}
