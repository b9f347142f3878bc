package model

import (
	"fmt"
	"strings"
	"time"
)

// Unsold is the sentinel team value for players not bought by any team.
const Unsold = "Unsold"

// LakhsPerCrore is the fixed display divisor for crore values.
const LakhsPerCrore = 100

// -----------------------------------------------------------------------------
// Enumerations
// -----------------------------------------------------------------------------

// Category is a player's playing role.
type Category string

const (
	CategoryBatter       Category = "Batter"
	CategoryBowler       Category = "Bowler"
	CategoryAllrounder   Category = "Allrounder"
	CategoryWicketkeeper Category = "Wicketkeeper"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryBatter, CategoryBowler, CategoryAllrounder, CategoryWicketkeeper}

// ParseCategory accepts the canonical spelling case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Nationality distinguishes home players from overseas players.
type Nationality string

const (
	NationalityIndian  Nationality = "Indian"
	NationalityForeign Nationality = "Foreign"
)

// Nationalities lists every nationality in display order.
var Nationalities = []Nationality{NationalityIndian, NationalityForeign}

// ParseNationality accepts the canonical spelling case-insensitively.
func ParseNationality(s string) (Nationality, error) {
	for _, n := range Nationalities {
		if strings.EqualFold(strings.TrimSpace(s), string(n)) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown nationality %q", s)
}

// -----------------------------------------------------------------------------
// Ledger Types
// -----------------------------------------------------------------------------

// Team is a franchise taking part in the auction.
type Team struct {
	Name          string `json:"name"`           // Primary key
	Budget        int    `json:"budget"`         // Remaining budget (lakhs)
	InitialBudget int    `json:"initial_budget"` // Budget at registration (lakhs)
}

// UnknownBudget marks an InitialBudget that was never recorded, as in team
// sheets that predate the Initial Budget column. Restore derives it from the
// remaining budget and squad spend.
const UnknownBudget = -1

// Spent returns the amount already committed to the squad.
func (t Team) Spent() int {
	return t.InitialBudget - t.Budget
}

// Player is one record in the auction ledger.
type Player struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	SoldAmount  int         `json:"sold_amount"` // Lakhs, 0 when unsold
	Rating      int         `json:"rating"`      // 0-100
	TeamBought  string      `json:"team_bought"` // Team name or Unsold
	Category    Category    `json:"category"`
	Nationality Nationality `json:"nationality"`
}

// IsSold reports whether the player belongs to a team.
func (p Player) IsSold() bool {
	return p.TeamBought != Unsold
}

// SquadEntry is the per-team copy of a sold player.
type SquadEntry struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	SoldAmount  int         `json:"sold_amount"`
	Rating      int         `json:"rating"`
	Category    Category    `json:"category"`
	Nationality Nationality `json:"nationality"`
}

// EntryFor builds the squad copy of a player.
func EntryFor(p Player) SquadEntry {
	return SquadEntry{
		ID:          p.ID,
		Name:        p.Name,
		SoldAmount:  p.SoldAmount,
		Rating:      p.Rating,
		Category:    p.Category,
		Nationality: p.Nationality,
	}
}

// Snapshot is the full persisted state: every team and every player.
type Snapshot struct {
	Version uint64 // Increases with every commit; newer wins; 0 if never saved
	NextID  int    // ID the next added player receives; 0 when not recorded
	Teams   []Team
	Players []Player
	TakenAt time.Time
}

// -----------------------------------------------------------------------------
// Notification Types
// -----------------------------------------------------------------------------

// SaleNotice is emitted when a player is sold to a team.
type SaleNotice struct {
	PlayerName      string
	Rating          int
	Team            string
	TeamRatingTotal int
	Foreign         bool
}

// Message renders the popup text shown to spectators.
func (n SaleNotice) Message() string {
	return fmt.Sprintf("Congratulations %s (%d) | %s (%d)", n.PlayerName, n.Rating, n.Team, n.TeamRatingTotal)
}

// -----------------------------------------------------------------------------
// Display Helpers
// -----------------------------------------------------------------------------

// Crore converts lakhs to crore for display.
func Crore(lakhs int) float64 {
	return float64(lakhs) / LakhsPerCrore
}
