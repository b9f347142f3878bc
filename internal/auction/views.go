package auction

import (
	"fmt"
	"sort"

	"github.com/rickgao/mock-auction/internal/model"
)

// Standing is one row of the team rankings.
type Standing struct {
	Rank        int    `json:"rank"`
	Team        string `json:"team"`
	RatingTotal int    `json:"rating_total"`
	Budget      int    `json:"budget"` // Remaining (lakhs)
	Players     int    `json:"players"`
}

// SquadSummary describes one team's squad.
type SquadSummary struct {
	Team          string                    `json:"team"`
	Entries       []model.SquadEntry        `json:"entries"`
	TotalSpent    int                       `json:"total_spent"`
	TotalRating   int                       `json:"total_rating"`
	Remaining     int                       `json:"remaining"`
	ByCategory    map[model.Category]int    `json:"by_category"`
	ByNationality map[model.Nationality]int `json:"by_nationality"`
	Players       int                       `json:"players"`
}

// TickerItem is one sold player in the scrolling ticker.
type TickerItem struct {
	Player          string `json:"player"`
	Foreign         bool   `json:"foreign"`
	Rating          int    `json:"rating"`
	Team            string `json:"team"`
	TeamRatingTotal int    `json:"team_rating_total"`
}

// PlayerFilter selects which players Players returns.
type PlayerFilter int

const (
	AllPlayers PlayerFilter = iota
	SoldPlayers
	UnsoldPlayers
)

// Teams returns every team in registration order.
func (e *Engine) Teams() []model.Team {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Registry.Teams()
}

// Team returns one team.
func (e *Engine) Team(name string) (model.Team, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Registry.Team(name)
}

// Players returns players matching the filter, latest first.
func (e *Engine) Players(filter PlayerFilter) []model.Player {
	e.mu.Lock()
	all := e.state.Ledger.Players()
	e.mu.Unlock()

	result := make([]model.Player, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		p := all[i]
		switch {
		case filter == SoldPlayers && !p.IsSold():
			continue
		case filter == UnsoldPlayers && p.IsSold():
			continue
		}
		result = append(result, p)
	}
	return result
}

// Player looks up a player the same way ModifyPlayer and DeletePlayer do.
func (e *Engine) Player(name string) (model.Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.state.Ledger.FindByName(name)
	if !ok {
		return model.Player{}, fmt.Errorf("player %s: %w", name, ErrPlayerNotFound)
	}
	return p, nil
}

// NextID returns the ID the next added player will receive.
func (e *Engine) NextID() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Ledger.NextID()
}

// Standings ranks teams by squad rating total, highest first. When every
// total is zero teams are ranked alphabetically instead. Ties keep
// registration order.
func (e *Engine) Standings() []Standing {
	e.mu.Lock()
	teams := e.state.Registry.Teams()
	result := make([]Standing, 0, len(teams))
	for _, t := range teams {
		result = append(result, Standing{
			Team:        t.Name,
			RatingTotal: e.state.Squads.RatingTotal(t.Name),
			Budget:      t.Budget,
			Players:     len(e.state.Squads.squads[t.Name]),
		})
	}
	e.mu.Unlock()

	return rank(result)
}

func rank(rows []Standing) []Standing {
	allZero := true
	for _, r := range rows {
		if r.RatingTotal != 0 {
			allZero = false
			break
		}
	}

	if allZero {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Team < rows[j].Team
		})
	} else {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].RatingTotal > rows[j].RatingTotal
		})
	}

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Squad summarizes one team's squad.
func (e *Engine) Squad(team string) (SquadSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.state.Registry.Team(team)
	if err != nil {
		return SquadSummary{}, err
	}

	sum := SquadSummary{
		Team:          t.Name,
		Entries:       e.state.Squads.Entries(t.Name),
		Remaining:     t.Budget,
		ByCategory:    make(map[model.Category]int, len(model.Categories)),
		ByNationality: make(map[model.Nationality]int, len(model.Nationalities)),
	}
	for _, c := range model.Categories {
		sum.ByCategory[c] = 0
	}
	for _, n := range model.Nationalities {
		sum.ByNationality[n] = 0
	}
	for _, entry := range sum.Entries {
		sum.TotalSpent += entry.SoldAmount
		sum.TotalRating += entry.Rating
		sum.ByCategory[entry.Category]++
		sum.ByNationality[entry.Nationality]++
	}
	sum.Players = len(sum.Entries)
	if sum.Entries == nil {
		sum.Entries = []model.SquadEntry{}
	}
	return sum, nil
}

// Ticker lists every sold player, grouped by team in registration order.
func (e *Engine) Ticker() []TickerItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	var items []TickerItem
	for _, team := range e.state.Registry.Names() {
		total := e.state.Squads.RatingTotal(team)
		for _, entry := range e.state.Squads.squads[team] {
			items = append(items, TickerItem{
				Player:          entry.Name,
				Foreign:         entry.Nationality == model.NationalityForeign,
				Rating:          entry.Rating,
				Team:            team,
				TeamRatingTotal: total,
			})
		}
	}
	return items
}

// Snapshot returns a copy of the full state for export.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.state.snapshot()
	snap.Version = e.version
	snap.TakenAt = e.now()
	return snap
}

// CheckInvariants verifies the squad and budget invariants.
func (e *Engine) CheckInvariants() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CheckInvariants()
}
