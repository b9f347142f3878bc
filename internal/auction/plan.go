package auction

import (
	"fmt"

	"github.com/rickgao/mock-auction/internal/model"
)

// plan is a validated operation that has not been applied yet.
type plan struct {
	op       Op
	player   model.Player  // Ledger record after the operation
	previous *model.Player // Ledger record before (modify/delete)

	insert bool
	update bool
	remove bool

	// Budget deltas keyed by team, in the order they were planned.
	deltas     map[string]int
	deltaOrder []string

	squadRemove []squadChange
	squadAdd    []squadChange
	squadUpdate []squadChange

	notify bool
}

type squadChange struct {
	team  string
	entry model.SquadEntry
}

// spend records a budget movement (negative = spend, positive = refund).
func (p *plan) spend(team string, delta int) {
	if p.deltas == nil {
		p.deltas = make(map[string]int)
	}
	if _, ok := p.deltas[team]; !ok {
		p.deltaOrder = append(p.deltaOrder, team)
	}
	p.deltas[team] += delta
}

// check verifies every budget movement would keep budgets non-negative.
func (p *plan) check(s *AuctionState) error {
	for _, team := range p.deltaOrder {
		if err := s.Registry.CheckAdjust(team, p.deltas[team]); err != nil {
			return err
		}
	}
	if p.update || p.remove {
		if _, ok := s.Ledger.Get(p.player.ID); !ok {
			return fmt.Errorf("player %d: %w", p.player.ID, ErrPlayerNotFound)
		}
	}
	if p.insert {
		if _, ok := s.Ledger.Get(p.player.ID); ok {
			return fmt.Errorf("player id %d already in use", p.player.ID)
		}
	}
	return nil
}

// apply commits the plan. check must have passed first.
func (p *plan) apply(s *AuctionState) (*Receipt, error) {
	switch {
	case p.insert:
		if err := s.Ledger.Insert(p.player); err != nil {
			return nil, err
		}
	case p.update:
		if err := s.Ledger.Update(p.player.ID, p.player); err != nil {
			return nil, err
		}
	case p.remove:
		if err := s.Ledger.Remove(p.player.ID); err != nil {
			return nil, err
		}
	}

	for _, c := range p.squadRemove {
		s.Squads.Remove(c.team, c.entry.ID)
	}
	for _, c := range p.squadUpdate {
		s.Squads.Update(c.team, c.entry)
	}
	for _, c := range p.squadAdd {
		s.Squads.Add(c.team, c.entry)
	}

	receipt := &Receipt{
		Op:       p.op,
		Player:   p.player,
		Previous: p.previous,
		Budgets:  make(map[string]int, len(p.deltaOrder)),
	}
	for _, team := range p.deltaOrder {
		if err := s.Registry.Adjust(team, p.deltas[team]); err != nil {
			return nil, err
		}
		receipt.Budgets[team], _ = s.Registry.Budget(team)
	}

	if p.notify {
		receipt.Notice = &model.SaleNotice{
			PlayerName:      p.player.Name,
			Rating:          p.player.Rating,
			Team:            p.player.TeamBought,
			TeamRatingTotal: s.Squads.RatingTotal(p.player.TeamBought),
			Foreign:         p.player.Nationality == model.NationalityForeign,
		}
	}
	return receipt, nil
}
