package auction

import (
	"errors"
	"testing"

	"github.com/rickgao/mock-auction/internal/model"
)

func seededEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine()
	for _, name := range []string{"RCB", "CSK", "MI"} {
		if _, err := e.AddTeam(name, 9000); err != nil {
			t.Fatalf("AddTeam(%s) error = %v", name, err)
		}
	}
	return e
}

func sell(t *testing.T, e *Engine, name, team string, amount, rating int, nat model.Nationality) {
	t.Helper()
	_, err := e.AddPlayer(PlayerInput{
		Name:        name,
		SoldAmount:  amount,
		Rating:      rating,
		Team:        team,
		Category:    model.CategoryBatter,
		Nationality: nat,
	})
	if err != nil {
		t.Fatalf("AddPlayer(%s) error = %v", name, err)
	}
}

func standingTeams(rows []Standing) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Team
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStandings_AllZeroIsAlphabetical(t *testing.T) {
	e := seededEngine(t)

	rows := e.Standings()
	want := []string{"CSK", "MI", "RCB"}
	if got := standingTeams(rows); !equalStrings(got, want) {
		t.Errorf("Standings() = %v, want %v", got, want)
	}
	for i, r := range rows {
		if r.Rank != i+1 {
			t.Errorf("row %d rank = %d, want %d", i, r.Rank, i+1)
		}
	}
}

func TestStandings_ByRatingTotal(t *testing.T) {
	e := seededEngine(t)
	sell(t, e, "A", "MI", 100, 50, model.NationalityIndian)
	sell(t, e, "B", "CSK", 100, 90, model.NationalityIndian)
	sell(t, e, "C", "MI", 100, 30, model.NationalityForeign)

	rows := e.Standings()
	want := []string{"CSK", "MI", "RCB"}
	if got := standingTeams(rows); !equalStrings(got, want) {
		t.Fatalf("Standings() = %v, want %v", got, want)
	}
	if rows[0].RatingTotal != 90 || rows[1].RatingTotal != 80 || rows[2].RatingTotal != 0 {
		t.Errorf("totals = %d/%d/%d, want 90/80/0", rows[0].RatingTotal, rows[1].RatingTotal, rows[2].RatingTotal)
	}
	if rows[1].Players != 2 || rows[1].Budget != 8800 {
		t.Errorf("MI row = %+v, want 2 players and 8800 left", rows[1])
	}
}

func TestStandings_TiesKeepRegistrationOrder(t *testing.T) {
	e := seededEngine(t)
	sell(t, e, "A", "MI", 100, 70, model.NationalityIndian)
	sell(t, e, "B", "RCB", 100, 70, model.NationalityIndian)

	// RCB registered before MI.
	want := []string{"RCB", "MI", "CSK"}
	if got := standingTeams(e.Standings()); !equalStrings(got, want) {
		t.Errorf("Standings() = %v, want %v", got, want)
	}
}

func TestSquad_Summary(t *testing.T) {
	e := seededEngine(t)
	sell(t, e, "A", "CSK", 1000, 80, model.NationalityIndian)
	sell(t, e, "B", "CSK", 500, 60, model.NationalityForeign)
	e.AddPlayer(PlayerInput{
		Name:        "C",
		Rating:      70,
		Team:        "CSK",
		SoldAmount:  200,
		Category:    model.CategoryBowler,
		Nationality: model.NationalityForeign,
	})

	sum, err := e.Squad("CSK")
	if err != nil {
		t.Fatalf("Squad() error = %v", err)
	}

	if sum.Players != 3 {
		t.Errorf("Players = %d, want 3", sum.Players)
	}
	if sum.TotalSpent != 1700 {
		t.Errorf("TotalSpent = %d, want 1700", sum.TotalSpent)
	}
	if sum.TotalRating != 210 {
		t.Errorf("TotalRating = %d, want 210", sum.TotalRating)
	}
	if sum.Remaining != 7300 {
		t.Errorf("Remaining = %d, want 7300", sum.Remaining)
	}
	if sum.ByCategory[model.CategoryBatter] != 2 || sum.ByCategory[model.CategoryBowler] != 1 {
		t.Errorf("ByCategory = %v", sum.ByCategory)
	}
	if sum.ByCategory[model.CategoryWicketkeeper] != 0 {
		t.Errorf("Wicketkeeper count = %d, want 0", sum.ByCategory[model.CategoryWicketkeeper])
	}
	if sum.ByNationality[model.NationalityForeign] != 2 || sum.ByNationality[model.NationalityIndian] != 1 {
		t.Errorf("ByNationality = %v", sum.ByNationality)
	}
	if sum.Entries[0].Name != "A" || sum.Entries[2].Name != "C" {
		t.Errorf("entries out of purchase order: %+v", sum.Entries)
	}
}

func TestSquad_UnknownTeam(t *testing.T) {
	e := seededEngine(t)
	if _, err := e.Squad("XYZ"); !errors.Is(err, ErrUnknownTeam) {
		t.Errorf("Squad(XYZ) error = %v, want ErrUnknownTeam", err)
	}
}

func TestPlayers_LatestFirstAndFiltered(t *testing.T) {
	e := seededEngine(t)
	sell(t, e, "A", "CSK", 100, 10, model.NationalityIndian)
	sell(t, e, "B", model.Unsold, 0, 20, model.NationalityIndian)
	sell(t, e, "C", "MI", 100, 30, model.NationalityIndian)

	tests := []struct {
		filter PlayerFilter
		want   []string
	}{
		{AllPlayers, []string{"C", "B", "A"}},
		{SoldPlayers, []string{"C", "A"}},
		{UnsoldPlayers, []string{"B"}},
	}

	for _, tt := range tests {
		players := e.Players(tt.filter)
		got := make([]string, len(players))
		for i, p := range players {
			got[i] = p.Name
		}
		if !equalStrings(got, tt.want) {
			t.Errorf("Players(%d) = %v, want %v", tt.filter, got, tt.want)
		}
	}
}

func TestTicker(t *testing.T) {
	e := seededEngine(t)
	sell(t, e, "A", "MI", 100, 50, model.NationalityForeign)
	sell(t, e, "B", "RCB", 100, 40, model.NationalityIndian)
	sell(t, e, "C", "MI", 100, 30, model.NationalityIndian)
	sell(t, e, "D", model.Unsold, 0, 99, model.NationalityIndian)

	items := e.Ticker()
	if len(items) != 3 {
		t.Fatalf("Ticker() len = %d, want 3", len(items))
	}

	want := []TickerItem{
		{Player: "B", Rating: 40, Team: "RCB", TeamRatingTotal: 40},
		{Player: "A", Foreign: true, Rating: 50, Team: "MI", TeamRatingTotal: 80},
		{Player: "C", Rating: 30, Team: "MI", TeamRatingTotal: 80},
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestSnapshot_DoesNotAdvanceVersion(t *testing.T) {
	e := seededEngine(t)
	first := e.Snapshot()
	second := e.Snapshot()

	if first.Version != 3 || second.Version != 3 {
		t.Errorf("versions = %d, %d; want 3, 3", first.Version, second.Version)
	}
	if len(first.Teams) != 3 {
		t.Errorf("teams = %d, want 3", len(first.Teams))
	}
}
