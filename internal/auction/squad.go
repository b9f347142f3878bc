package auction

import "github.com/rickgao/mock-auction/internal/model"

// SquadIndex holds the per-team copies of sold players.
// It is not safe for concurrent use; the Engine serializes access.
type SquadIndex struct {
	squads map[string][]model.SquadEntry
}

// NewSquadIndex returns an empty index.
func NewSquadIndex() *SquadIndex {
	return &SquadIndex{
		squads: make(map[string][]model.SquadEntry),
	}
}

// Add appends an entry to the team's squad.
func (s *SquadIndex) Add(team string, e model.SquadEntry) {
	s.squads[team] = append(s.squads[team], e)
}

// Remove drops the entry with the given ID. No-op if absent.
func (s *SquadIndex) Remove(team string, id int) bool {
	entries := s.squads[team]
	for i, e := range entries {
		if e.ID == id {
			s.squads[team] = append(entries[:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// Update replaces the entry with the same ID in place, keeping its position.
func (s *SquadIndex) Update(team string, e model.SquadEntry) bool {
	entries := s.squads[team]
	for i := range entries {
		if entries[i].ID == e.ID {
			entries[i] = e
			return true
		}
	}
	return false
}

// Has reports whether the team's squad contains the ID.
func (s *SquadIndex) Has(team string, id int) bool {
	for _, e := range s.squads[team] {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Entries returns a copy of the team's squad in insertion order.
func (s *SquadIndex) Entries(team string) []model.SquadEntry {
	return append([]model.SquadEntry(nil), s.squads[team]...)
}

// RatingTotal sums the rating of every player in the team's squad.
func (s *SquadIndex) RatingTotal(team string) int {
	total := 0
	for _, e := range s.squads[team] {
		total += e.Rating
	}
	return total
}

// Spent sums the sold amount of every player in the team's squad.
func (s *SquadIndex) Spent(team string) int {
	total := 0
	for _, e := range s.squads[team] {
		total += e.SoldAmount
	}
	return total
}

// Len returns the total number of squad entries across all teams.
func (s *SquadIndex) Len() int {
	n := 0
	for _, entries := range s.squads {
		n += len(entries)
	}
	return n
}

// teams returns every team that has ever held an entry.
func (s *SquadIndex) teams() []string {
	result := make([]string, 0, len(s.squads))
	for team := range s.squads {
		result = append(result, team)
	}
	return result
}
