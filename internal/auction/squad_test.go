package auction

import (
	"testing"

	"github.com/rickgao/mock-auction/internal/model"
)

func TestSquadIndex(t *testing.T) {
	s := NewSquadIndex()
	s.Add("CSK", model.SquadEntry{ID: 1, Name: "Dhoni", SoldAmount: 1500, Rating: 90})
	s.Add("CSK", model.SquadEntry{ID: 2, Name: "Jadeja", SoldAmount: 1000, Rating: 85})
	s.Add("MI", model.SquadEntry{ID: 3, Name: "Rohit", SoldAmount: 1600, Rating: 88})

	if got := s.RatingTotal("CSK"); got != 175 {
		t.Errorf("RatingTotal(CSK) = %d, want 175", got)
	}
	if got := s.Spent("CSK"); got != 2500 {
		t.Errorf("Spent(CSK) = %d, want 2500", got)
	}
	if got := s.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}

	entries := s.Entries("CSK")
	if len(entries) != 2 || entries[0].ID != 1 || entries[1].ID != 2 {
		t.Errorf("Entries(CSK) = %+v, want IDs [1 2]", entries)
	}

	// Entries returns a copy.
	entries[0].Rating = 0
	if s.RatingTotal("CSK") != 175 {
		t.Error("mutating Entries() result changed the index")
	}

	if !s.Update("CSK", model.SquadEntry{ID: 1, Name: "Dhoni", SoldAmount: 2000, Rating: 91}) {
		t.Error("Update(CSK, 1) returned false")
	}
	entries = s.Entries("CSK")
	if entries[0].ID != 1 || entries[0].SoldAmount != 2000 {
		t.Errorf("Update did not replace in place: %+v", entries)
	}

	if !s.Remove("CSK", 1) {
		t.Error("Remove(CSK, 1) returned false")
	}
	if s.Remove("CSK", 1) {
		t.Error("second Remove(CSK, 1) returned true")
	}
	if s.Remove("RCB", 1) {
		t.Error("Remove on empty team returned true")
	}
	if s.Has("CSK", 1) {
		t.Error("Has(CSK, 1) after remove")
	}
	if got := s.RatingTotal("RCB"); got != 0 {
		t.Errorf("RatingTotal(RCB) = %d, want 0", got)
	}
}
