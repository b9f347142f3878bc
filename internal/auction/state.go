package auction

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rickgao/mock-auction/internal/model"
)

// AuctionState bundles the three views the Engine keeps in sync.
type AuctionState struct {
	Registry *Registry
	Ledger   *Ledger
	Squads   *SquadIndex
}

// NewState returns an empty auction.
func NewState() *AuctionState {
	return &AuctionState{
		Registry: NewRegistry(),
		Ledger:   NewLedger(),
		Squads:   NewSquadIndex(),
	}
}

// CheckInvariants verifies the squad and budget invariants. It returns every
// violation found, joined.
func (s *AuctionState) CheckInvariants() error {
	var errs []error

	for _, p := range s.Ledger.Players() {
		if !p.IsSold() {
			continue
		}
		if !s.Registry.Has(p.TeamBought) {
			errs = append(errs, fmt.Errorf("player %d bought by unknown team %s", p.ID, p.TeamBought))
			continue
		}
		if !s.Squads.Has(p.TeamBought, p.ID) {
			errs = append(errs, fmt.Errorf("player %d missing from %s squad", p.ID, p.TeamBought))
		}
	}

	for _, team := range s.Squads.teams() {
		seen := make(map[int]bool)
		for _, e := range s.Squads.squads[team] {
			if seen[e.ID] {
				errs = append(errs, fmt.Errorf("player %d listed twice in %s squad", e.ID, team))
			}
			seen[e.ID] = true

			p, ok := s.Ledger.Get(e.ID)
			if !ok || p.TeamBought != team {
				errs = append(errs, fmt.Errorf("squad entry %d in %s has no matching ledger record", e.ID, team))
			}
		}
	}

	for _, t := range s.Registry.Teams() {
		want := t.InitialBudget - s.Squads.Spent(t.Name)
		if t.Budget != want {
			errs = append(errs, fmt.Errorf("team %s budget %d, want %d", t.Name, t.Budget, want))
		}
		if t.Budget < 0 {
			errs = append(errs, fmt.Errorf("team %s budget %d: %w", t.Name, t.Budget, ErrBudgetViolation))
		}
	}

	return errors.Join(errs...)
}

// snapshot copies the state for persistence.
func (s *AuctionState) snapshot() model.Snapshot {
	return model.Snapshot{
		NextID:  s.Ledger.NextID(),
		Teams:   s.Registry.Teams(),
		Players: s.Ledger.Players(),
	}
}

// stateFromSnapshot rebuilds an AuctionState from persisted records.
//
// Initial budgets come from the stored InitialBudget unless it is
// model.UnknownBudget, in which case they are reconstructed as remaining
// budget plus squad spend. An explicit zero is kept as is. Remaining
// budgets are then recomputed from the squads so the budget invariant holds
// even if the stored budget column drifted.
func stateFromSnapshot(snap model.Snapshot) (*AuctionState, error) {
	s := NewState()

	spent := make(map[string]int)
	for _, p := range snap.Players {
		if p.IsSold() {
			spent[p.TeamBought] += p.SoldAmount
		}
	}

	for _, t := range snap.Teams {
		initial := t.InitialBudget
		if initial == model.UnknownBudget {
			initial = t.Budget + spent[t.Name]
		}
		t.InitialBudget = initial
		t.Budget = initial - spent[t.Name]
		if err := s.Registry.restoreTeam(t); err != nil {
			return nil, fmt.Errorf("restore team %s: %w", t.Name, err)
		}
	}

	players := append([]model.Player(nil), snap.Players...)
	sort.Slice(players, func(i, j int) bool {
		return players[i].ID < players[j].ID
	})

	for _, p := range players {
		if p.TeamBought == "" {
			p.TeamBought = model.Unsold
		}
		if !p.IsSold() {
			p.SoldAmount = 0
		} else if !s.Registry.Has(p.TeamBought) {
			return nil, fmt.Errorf("restore player %d: team %s: %w", p.ID, p.TeamBought, ErrUnknownTeam)
		}
		if err := s.Ledger.Insert(p); err != nil {
			return nil, fmt.Errorf("restore: %w", err)
		}
		if p.IsSold() {
			s.Squads.Add(p.TeamBought, model.EntryFor(p))
		}
	}

	// Deleted players leave gaps above the highest live ID; keep them unused.
	if snap.NextID > 0 {
		s.Ledger.reserveThrough(snap.NextID - 1)
	}

	if err := s.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	return s, nil
}
