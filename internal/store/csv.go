package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rickgao/mock-auction/internal/model"
)

// File names used by CSVStore.
const (
	TeamsFile   = "teams.csv"
	PlayersFile = "players.csv"
	MetaFile    = "meta.csv"
)

// Column headers, in file order.
var (
	TeamsHeader   = []string{"Team", "Budget", "Initial Budget"}
	PlayersHeader = []string{"ID", "Name", "Sold Amount", "Rating", "Team Bought", "Category", "Nationality"}
	MetaHeader    = []string{"Version", "Next ID"}
)

// CSVStore keeps teams.csv and players.csv in a directory, with the snapshot
// version and ID sequence in meta.csv. Files are replaced atomically by
// writing a temp file and renaming it. meta.csv is written last, so a
// directory without it has never been saved by this store.
type CSVStore struct {
	dir string
	mu  sync.Mutex
}

// NewCSVStore creates a CSVStore, creating dir if needed.
func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create csv dir: %w", err)
	}
	return &CSVStore{dir: dir}, nil
}

func (s *CSVStore) Load(ctx context.Context) (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap model.Snapshot

	if err := readFile(filepath.Join(s.dir, TeamsFile), func(r io.Reader) error {
		teams, err := ReadTeamsCSV(r)
		snap.Teams = teams
		return err
	}); err != nil {
		return model.Snapshot{}, err
	}

	if err := readFile(filepath.Join(s.dir, PlayersFile), func(r io.Reader) error {
		players, err := ReadPlayersCSV(r)
		snap.Players = players
		return err
	}); err != nil {
		return model.Snapshot{}, err
	}

	if err := readFile(filepath.Join(s.dir, MetaFile), func(r io.Reader) error {
		var err error
		snap.Version, snap.NextID, err = ReadMetaCSV(r)
		return err
	}); err != nil {
		return model.Snapshot{}, err
	}

	return snap, nil
}

func (s *CSVStore) Save(ctx context.Context, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(filepath.Join(s.dir, TeamsFile), func(w io.Writer) error {
		return WriteTeamsCSV(w, snap.Teams)
	}); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(s.dir, PlayersFile), func(w io.Writer) error {
		return WritePlayersCSV(w, snap.Players)
	}); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, MetaFile), func(w io.Writer) error {
		return WriteMetaCSV(w, snap.Version, snap.NextID)
	})
}

func (s *CSVStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat csv dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("csv dir %s is not a directory", s.dir)
	}
	return nil
}

func (s *CSVStore) Close() error { return nil }

// Dir returns the directory holding the CSV files.
func (s *CSVStore) Dir() string { return s.dir }

// readFile calls fn with the file contents. A missing file is not an error.
func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeFileAtomic(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteTeamsCSV writes teams with a header row.
func WriteTeamsCSV(w io.Writer, teams []model.Team) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TeamsHeader); err != nil {
		return err
	}
	for _, t := range teams {
		if err := cw.Write([]string{
			t.Name,
			strconv.Itoa(t.Budget),
			strconv.Itoa(t.InitialBudget),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePlayersCSV writes players with a header row.
func WritePlayersCSV(w io.Writer, players []model.Player) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PlayersHeader); err != nil {
		return err
	}
	for _, p := range players {
		if err := cw.Write([]string{
			strconv.Itoa(p.ID),
			p.Name,
			strconv.Itoa(p.SoldAmount),
			strconv.Itoa(p.Rating),
			p.TeamBought,
			string(p.Category),
			string(p.Nationality),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetaCSV writes the snapshot version and next player ID.
func WriteMetaCSV(w io.Writer, version uint64, nextID int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MetaHeader); err != nil {
		return err
	}
	if err := cw.Write([]string{
		strconv.FormatUint(version, 10),
		strconv.Itoa(nextID),
	}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ReadMetaCSV parses a meta file. A file with only a header reads as zero.
func ReadMetaCSV(r io.Reader) (version uint64, nextID int, err error) {
	rows, cols, err := readTable(r, MetaHeader...)
	if err != nil || len(rows) == 0 {
		return 0, 0, err
	}

	if v := cols.get(rows[0], "Version"); v != "" {
		if version, err = strconv.ParseUint(v, 10, 64); err != nil {
			return 0, 0, fmt.Errorf("version: %w", err)
		}
	}
	if nextID, err = parseAmount(cols.get(rows[0], "Next ID")); err != nil {
		return 0, 0, fmt.Errorf("next id: %w", err)
	}
	return version, nextID, nil
}

// ReadTeamsCSV parses a teams file. Columns are located by header, so the
// two-column sheet written by older tools (no Initial Budget) also loads.
// A missing column or blank cell reads as model.UnknownBudget; an explicit
// 0 stays 0.
func ReadTeamsCSV(r io.Reader) ([]model.Team, error) {
	rows, cols, err := readTable(r, "Team", "Budget")
	if err != nil {
		return nil, err
	}

	teams := make([]model.Team, 0, len(rows))
	for i, row := range rows {
		t := model.Team{Name: cols.get(row, "Team"), InitialBudget: model.UnknownBudget}
		if t.Budget, err = parseAmount(cols.get(row, "Budget")); err != nil {
			return nil, fmt.Errorf("row %d budget: %w", i+2, err)
		}
		if v := cols.get(row, "Initial Budget"); v != "" {
			if t.InitialBudget, err = parseAmount(v); err != nil {
				return nil, fmt.Errorf("row %d initial budget: %w", i+2, err)
			}
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// ReadPlayersCSV parses a players file. A blank Team Bought is read as Unsold.
func ReadPlayersCSV(r io.Reader) ([]model.Player, error) {
	rows, cols, err := readTable(r, "ID", "Name")
	if err != nil {
		return nil, err
	}

	players := make([]model.Player, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		p := model.Player{
			Name:        cols.get(row, "Name"),
			TeamBought:  cols.get(row, "Team Bought"),
			Category:    model.Category(cols.get(row, "Category")),
			Nationality: model.Nationality(cols.get(row, "Nationality")),
		}
		if p.TeamBought == "" {
			p.TeamBought = model.Unsold
		}
		if p.ID, err = parseAmount(cols.get(row, "ID")); err != nil {
			return nil, fmt.Errorf("row %d id: %w", line, err)
		}
		if p.SoldAmount, err = parseAmount(cols.get(row, "Sold Amount")); err != nil {
			return nil, fmt.Errorf("row %d sold amount: %w", line, err)
		}
		if p.Rating, err = parseAmount(cols.get(row, "Rating")); err != nil {
			return nil, fmt.Errorf("row %d rating: %w", line, err)
		}
		players = append(players, p)
	}
	return players, nil
}

type columns map[string]int

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// readTable reads all records and indexes the header. required columns
// must be present.
func readTable(r io.Reader, required ...string) ([][]string, columns, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, columns{}, nil
	}

	cols := make(columns, len(records[0]))
	for i, name := range records[0] {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}
	return records[1:], cols, nil
}

// parseAmount parses an integer cell. Blank cells are zero. Whole-number
// floats ("1500.0", as spreadsheets export them) are accepted.
func parseAmount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	return int(f), nil
}
