package auction

import (
	"fmt"
	"sort"

	"github.com/rickgao/mock-auction/internal/model"
)

// Ledger is the authoritative list of player records.
// It is not safe for concurrent use; the Engine serializes access.
type Ledger struct {
	records map[int]*model.Player

	// Name is not a hard key. byName keeps IDs in insertion order so the
	// earliest live player wins a lookup.
	byName map[string][]int

	// Highest ID ever issued. IDs are not reused after deletes.
	highWater int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		records: make(map[int]*model.Player),
		byName:  make(map[string][]int),
	}
}

// NextID returns the ID the next inserted player will receive.
func (l *Ledger) NextID() int {
	return l.highWater + 1
}

// reserveThrough raises the high-water mark so IDs up to and including id
// are never issued. It never lowers it.
func (l *Ledger) reserveThrough(id int) {
	if id > l.highWater {
		l.highWater = id
	}
}

// Insert adds a new record. The ID must be unused.
func (l *Ledger) Insert(p model.Player) error {
	if p.ID <= 0 {
		return fmt.Errorf("insert player %q: id %d must be positive", p.Name, p.ID)
	}
	if _, ok := l.records[p.ID]; ok {
		return fmt.Errorf("insert player %q: id %d already in use", p.Name, p.ID)
	}

	rec := p
	l.records[p.ID] = &rec
	l.byName[p.Name] = append(l.byName[p.Name], p.ID)
	if p.ID > l.highWater {
		l.highWater = p.ID
	}
	return nil
}

// Get returns a copy of the record with the given ID.
func (l *Ledger) Get(id int) (model.Player, bool) {
	p, ok := l.records[id]
	if !ok {
		return model.Player{}, false
	}
	return *p, true
}

// FindByName returns the earliest inserted live player with that name.
func (l *Ledger) FindByName(name string) (model.Player, bool) {
	ids := l.byName[name]
	if len(ids) == 0 {
		return model.Player{}, false
	}
	return *l.records[ids[0]], true
}

// CountByName returns how many live players share the name.
func (l *Ledger) CountByName(name string) int {
	return len(l.byName[name])
}

// Update overwrites every field of the record with the given ID.
// The ID itself cannot change.
func (l *Ledger) Update(id int, p model.Player) error {
	rec, ok := l.records[id]
	if !ok {
		return fmt.Errorf("update player %d: %w", id, ErrPlayerNotFound)
	}
	if rec.Name != p.Name {
		l.unindexName(rec.Name, id)
		l.indexNameOrdered(p.Name, id)
	}

	p.ID = id
	*rec = p
	return nil
}

// Remove deletes the record with the given ID.
func (l *Ledger) Remove(id int) error {
	rec, ok := l.records[id]
	if !ok {
		return fmt.Errorf("remove player %d: %w", id, ErrPlayerNotFound)
	}
	l.unindexName(rec.Name, id)
	delete(l.records, id)
	return nil
}

// Players returns copies of all records sorted by ascending ID.
func (l *Ledger) Players() []model.Player {
	result := make([]model.Player, 0, len(l.records))
	for _, p := range l.records {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Len returns the number of live records.
func (l *Ledger) Len() int {
	return len(l.records)
}

func (l *Ledger) unindexName(name string, id int) {
	ids := l.byName[name]
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(l.byName, name)
		return
	}
	l.byName[name] = ids
}

// indexNameOrdered inserts id keeping the name's ID list ascending, so a
// renamed player keeps its insertion-order position.
func (l *Ledger) indexNameOrdered(name string, id int) {
	ids := l.byName[name]
	i := sort.SearchInts(ids, id)
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	l.byName[name] = ids
}
