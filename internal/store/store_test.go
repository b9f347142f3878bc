package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rickgao/mock-auction/internal/auction"
	"github.com/rickgao/mock-auction/internal/config"
	"github.com/rickgao/mock-auction/internal/model"
)

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Version: 7,
		NextID:  5,
		Teams: []model.Team{
			{Name: "CSK", Budget: 7500, InitialBudget: 9000},
			{Name: "MI", Budget: 9000, InitialBudget: 9000},
		},
		Players: []model.Player{
			{ID: 1, Name: "Dhoni", SoldAmount: 1500, Rating: 90, TeamBought: "CSK", Category: model.CategoryWicketkeeper, Nationality: model.NationalityIndian},
			{ID: 3, Name: "Y, Jr.", SoldAmount: 0, Rating: 60, TeamBought: model.Unsold, Category: model.CategoryBatter, Nationality: model.NationalityForeign},
		},
	}
}

func assertSameData(t *testing.T, got, want model.Snapshot) {
	t.Helper()
	if len(got.Teams) != len(want.Teams) {
		t.Fatalf("teams = %d, want %d", len(got.Teams), len(want.Teams))
	}
	for i := range want.Teams {
		if got.Teams[i] != want.Teams[i] {
			t.Errorf("team %d = %+v, want %+v", i, got.Teams[i], want.Teams[i])
		}
	}
	if len(got.Players) != len(want.Players) {
		t.Fatalf("players = %d, want %d", len(got.Players), len(want.Players))
	}
	for i := range want.Players {
		if got.Players[i] != want.Players[i] {
			t.Errorf("player %d = %+v, want %+v", i, got.Players[i], want.Players[i])
		}
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !IsEmpty(snap) {
		t.Errorf("new store not empty: %+v", snap)
	}

	want := sampleSnapshot()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Mutating the caller's slices must not reach the store.
	want.Teams[0].Budget = 1
	got, _ := s.Load(ctx)
	if got.Teams[0].Budget != 7500 {
		t.Errorf("stored budget = %d, want 7500", got.Teams[0].Budget)
	}
	if got.Version != 7 || got.NextID != 5 {
		t.Errorf("Version, NextID = %d, %d; want 7, 5", got.Version, got.NextID)
	}
	if s.Saves() != 1 {
		t.Errorf("Saves() = %d, want 1", s.Saves())
	}
}

func TestMemoryStoreSaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	if err := s.Save(ctx, sampleSnapshot()); err == nil {
		t.Error("Save() with cancelled context expected error")
	}
}

func TestCSVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")

	s, err := NewCSVStore(dir)
	if err != nil {
		t.Fatalf("NewCSVStore() error = %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	empty, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() on empty dir error = %v", err)
	}
	if !IsEmpty(empty) {
		t.Errorf("empty dir loaded %+v", empty)
	}

	want := sampleSnapshot()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSameData(t, got, want)
	if got.Version != 7 || got.NextID != 5 {
		t.Errorf("Version, NextID = %d, %d; want 7, 5", got.Version, got.NextID)
	}

	meta, _ := os.ReadFile(filepath.Join(dir, MetaFile))
	if string(meta) != "Version,Next ID\n7,5\n" {
		t.Errorf("meta.csv = %q", meta)
	}

	teams, err := os.ReadFile(filepath.Join(dir, TeamsFile))
	if err != nil {
		t.Fatalf("read teams.csv: %v", err)
	}
	wantTeams := "Team,Budget,Initial Budget\nCSK,7500,9000\nMI,9000,9000\n"
	if string(teams) != wantTeams {
		t.Errorf("teams.csv = %q, want %q", teams, wantTeams)
	}

	players, _ := os.ReadFile(filepath.Join(dir, PlayersFile))
	if !strings.HasPrefix(string(players), "ID,Name,Sold Amount,Rating,Team Bought,Category,Nationality\n") {
		t.Errorf("players.csv header = %q", strings.SplitN(string(players), "\n", 2)[0])
	}
	if !strings.Contains(string(players), `"Y, Jr."`) {
		t.Errorf("players.csv did not quote name with comma: %q", players)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Errorf("dir has %d entries, want 3 (temp files left behind?)", len(entries))
	}
}

func TestReadTeamsCSVInitialBudget(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantBudget  int
		wantInitial int
	}{
		{"missing column", "Team,Budget\nMI,8500.0\n", 8500, model.UnknownBudget},
		{"blank cell", "Team,Budget,Initial Budget\nMI,8500,\n", 8500, model.UnknownBudget},
		{"explicit zero", "Team,Budget,Initial Budget\nMI,0,0\n", 0, 0},
		{"recorded", "Team,Budget,Initial Budget\nMI,8500,9000\n", 8500, 9000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teams, err := ReadTeamsCSV(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("ReadTeamsCSV() error = %v", err)
			}
			if len(teams) != 1 {
				t.Fatalf("teams = %d, want 1", len(teams))
			}
			if teams[0].Budget != tt.wantBudget || teams[0].InitialBudget != tt.wantInitial {
				t.Errorf("MI = %+v, want budget %d initial %d", teams[0], tt.wantBudget, tt.wantInitial)
			}
		})
	}
}

func TestReadMetaCSV(t *testing.T) {
	version, nextID, err := ReadMetaCSV(strings.NewReader("Version,Next ID\n12,40\n"))
	if err != nil {
		t.Fatalf("ReadMetaCSV() error = %v", err)
	}
	if version != 12 || nextID != 40 {
		t.Errorf("ReadMetaCSV() = %d, %d; want 12, 40", version, nextID)
	}

	if _, _, err := ReadMetaCSV(strings.NewReader("Version\n12\n")); err == nil {
		t.Error("ReadMetaCSV() without Next ID column expected error")
	}
}

func TestNeedsSeed(t *testing.T) {
	tests := []struct {
		name string
		snap model.Snapshot
		want bool
	}{
		{"never saved", model.Snapshot{}, true},
		{"emptied by reset", model.Snapshot{Version: 4, NextID: 1}, false},
		{"legacy data without meta", model.Snapshot{Teams: []model.Team{{Name: "CSK", Budget: 9000}}}, false},
		{"saved data", sampleSnapshot(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsSeed(tt.snap); got != tt.want {
				t.Errorf("NeedsSeed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCSVStoreResetSurvivesReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewCSVStore(dir)
	if err != nil {
		t.Fatalf("NewCSVStore() error = %v", err)
	}
	fresh, _ := s.Load(ctx)
	if !NeedsSeed(fresh) {
		t.Fatal("fresh dir should need seeding")
	}

	e := auction.NewEngine()
	if _, err := e.AddTeam("CSK", 9000); err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}
	e.DeleteAllData()
	if err := s.Save(ctx, e.Snapshot()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := NewCSVStore(dir)
	if err != nil {
		t.Fatalf("NewCSVStore() error = %v", err)
	}
	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !IsEmpty(got) {
		t.Errorf("reloaded reset = %+v, want empty", got)
	}
	if NeedsSeed(got) {
		t.Error("reset store asks for seeding again")
	}
}

func TestReadPlayersCSV(t *testing.T) {
	in := "ID,Name,Sold Amount,Rating,Team Bought,Category,Nationality\n" +
		"1,Dhoni,1500,90,CSK,Wicketkeeper,Indian\n" +
		"2,Y,,60,,Batter,Foreign\n"

	players, err := ReadPlayersCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadPlayersCSV() error = %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("players = %d, want 2", len(players))
	}
	if players[1].TeamBought != model.Unsold || players[1].SoldAmount != 0 {
		t.Errorf("blank row = %+v, want Unsold with zero amount", players[1])
	}
	if players[0].Category != model.CategoryWicketkeeper {
		t.Errorf("Category = %q, want %q", players[0].Category, model.CategoryWicketkeeper)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		read func() error
	}{
		{"teams missing budget column", func() error {
			_, err := ReadTeamsCSV(strings.NewReader("Team\nCSK\n"))
			return err
		}},
		{"teams fractional budget", func() error {
			_, err := ReadTeamsCSV(strings.NewReader("Team,Budget\nCSK,10.5\n"))
			return err
		}},
		{"players bad id", func() error {
			_, err := ReadPlayersCSV(strings.NewReader("ID,Name\nx,Dhoni\n"))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.read(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"1500", 1500, false},
		{"1500.0", 1500, false},
		{"-5", -5, false},
		{"1.5", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAmount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Driver: "memory"}, nil)
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T, want *MemoryStore", s)
	}

	s, err = Open(ctx, config.StorageConfig{Driver: "csv", CSV: config.CSVConfig{Dir: t.TempDir()}}, nil)
	if err != nil {
		t.Fatalf("Open(csv) error = %v", err)
	}
	if _, ok := s.(*CSVStore); !ok {
		t.Errorf("Open(csv) = %T, want *CSVStore", s)
	}

	if _, err := Open(ctx, config.StorageConfig{Driver: "sqlite"}, nil); err == nil {
		t.Error("Open(sqlite) expected error")
	}
}
