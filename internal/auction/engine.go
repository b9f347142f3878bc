package auction

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/mock-auction/internal/model"
)

// Persister receives a full snapshot after every committed mutation.
// Implementations must not block.
type Persister interface {
	Persist(snap model.Snapshot)
}

// Notifier receives a notice whenever a player is sold by AddPlayer.
// Implementations must not block.
type Notifier interface {
	Notify(notice model.SaleNotice)
}

// Observer records the outcome of every operation (metrics).
type Observer interface {
	ObserveTransaction(op Op, start time.Time, err error)
}

// Op names an engine operation.
type Op string

const (
	OpAddTeam      Op = "add_team"
	OpAddPlayer    Op = "add_player"
	OpModifyPlayer Op = "modify_player"
	OpDeletePlayer Op = "delete_player"
	OpDeleteAll    Op = "delete_all"
)

// ModifyBudgetCheck selects what ModifyPlayer compares the new price against.
type ModifyBudgetCheck string

const (
	// CheckCurrentBudget compares against the new team's budget as it stands
	// before the transaction. When the team is unchanged that budget still
	// holds the old allocation, so a price increase within the remaining
	// headroom can be rejected. This matches the auction spreadsheet.
	CheckCurrentBudget ModifyBudgetCheck = "current"

	// CheckHeadroom adds the old allocation back before comparing when the
	// team is unchanged.
	CheckHeadroom ModifyBudgetCheck = "headroom"
)

// PlayerInput carries the attributes submitted with a player operation.
type PlayerInput struct {
	Name        string            `json:"name"`
	SoldAmount  int               `json:"sold_amount"`
	Rating      int               `json:"rating"`
	Team        string            `json:"team"`
	Category    model.Category    `json:"category"`
	Nationality model.Nationality `json:"nationality"`
}

// Receipt describes a committed operation.
type Receipt struct {
	TxID        uuid.UUID         `json:"tx_id"`
	Op          Op                `json:"op"`
	Player      model.Player      `json:"player"`
	Previous    *model.Player     `json:"previous,omitempty"`
	Budgets     map[string]int    `json:"budgets"` // remaining budget of every team touched
	Notice      *model.SaleNotice `json:"notice,omitempty"`
	CommittedAt time.Time         `json:"committed_at"`
}

// Engine applies auction operations atomically across the registry, the
// ledger, and the squad index. It is safe for concurrent use; operations are
// serialized by a single lock.
type Engine struct {
	mu      sync.Mutex
	state   *AuctionState
	version uint64

	persister Persister
	notifier  Notifier
	observer  Observer
	logger    *slog.Logger

	modifyCheck ModifyBudgetCheck
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPersister sets where snapshots go after commit.
func WithPersister(p Persister) Option {
	return func(e *Engine) {
		e.persister = p
	}
}

// WithNotifier sets where sale notices go after commit.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithModifyBudgetCheck sets the ModifyPlayer budget policy.
func WithModifyBudgetCheck(c ModifyBudgetCheck) Option {
	return func(e *Engine) {
		e.modifyCheck = c
	}
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine over an empty auction.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		state:       NewState(),
		logger:      slog.Default(),
		modifyCheck: CheckCurrentBudget,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Restore replaces the engine state with a persisted snapshot. Nothing is
// persisted or notified. Later snapshots continue from the stored version.
func (e *Engine) Restore(snap model.Snapshot) error {
	s, err := stateFromSnapshot(snap)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.state = s
	if snap.Version > e.version {
		e.version = snap.Version
	}
	e.mu.Unlock()

	e.logger.Info("auction state restored",
		"teams", s.Registry.Len(),
		"players", s.Ledger.Len(),
		"sold", s.Squads.Len(),
	)
	return nil
}

// -----------------------------------------------------------------------------
// Mutations
// -----------------------------------------------------------------------------

// AddTeam registers a team with its starting budget.
func (e *Engine) AddTeam(name string, initialBudget int) (team model.Team, err error) {
	start := e.now()
	defer func() { e.observe(OpAddTeam, start, err) }()

	e.mu.Lock()
	team, err = e.state.Registry.AddTeam(name, initialBudget)
	if err != nil {
		e.mu.Unlock()
		e.logger.Debug("add team rejected", "team", name, "error", err)
		return model.Team{}, err
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Info("team added", "team", team.Name, "budget", team.Budget)
	e.persist(snap)
	return team, nil
}

// AddPlayer records a new player, selling them to a team unless the team is
// Unsold.
func (e *Engine) AddPlayer(in PlayerInput) (*Receipt, error) {
	return e.run(OpAddPlayer, in.Name, func(s *AuctionState) (*plan, error) {
		in, err := normalizeInput(in)
		if err != nil {
			return nil, err
		}
		if err := checkTeam(s, in.Team); err != nil {
			return nil, err
		}
		if in.Team != model.Unsold {
			if err := checkBudget(s, in.Team, in.SoldAmount, 0); err != nil {
				return nil, err
			}
		}

		p := playerFrom(s.Ledger.NextID(), in)
		pl := &plan{op: OpAddPlayer, player: p, insert: true}
		if p.IsSold() {
			pl.spend(p.TeamBought, -p.SoldAmount)
			pl.squadAdd = append(pl.squadAdd, squadChange{team: p.TeamBought, entry: model.EntryFor(p)})
			pl.notify = true
		}
		return pl, nil
	})
}

// ModifyPlayer overwrites an existing player's attributes, moving spend
// between teams as needed. The player is looked up by name.
func (e *Engine) ModifyPlayer(in PlayerInput) (*Receipt, error) {
	return e.run(OpModifyPlayer, in.Name, func(s *AuctionState) (*plan, error) {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		old, ok := s.Ledger.FindByName(name)
		if !ok {
			return nil, fmt.Errorf("player %s: %w", name, ErrPlayerNotFound)
		}

		in, err := normalizeInput(in)
		if err != nil {
			return nil, err
		}
		if err := checkTeam(s, in.Team); err != nil {
			return nil, err
		}
		if in.Team != model.Unsold {
			credit := 0
			if e.modifyCheck == CheckHeadroom && in.Team == old.TeamBought {
				credit = old.SoldAmount
			}
			if err := checkBudget(s, in.Team, in.SoldAmount, credit); err != nil {
				return nil, err
			}
		}

		p := playerFrom(old.ID, in)
		pl := &plan{op: OpModifyPlayer, player: p, previous: &old, update: true}

		switch {
		case old.TeamBought != p.TeamBought:
			if old.IsSold() {
				pl.spend(old.TeamBought, old.SoldAmount)
				pl.squadRemove = append(pl.squadRemove, squadChange{team: old.TeamBought, entry: model.SquadEntry{ID: old.ID}})
			}
			if p.IsSold() {
				pl.spend(p.TeamBought, -p.SoldAmount)
				pl.squadAdd = append(pl.squadAdd, squadChange{team: p.TeamBought, entry: model.EntryFor(p)})
			}
		case p.IsSold():
			pl.spend(p.TeamBought, old.SoldAmount-p.SoldAmount)
			pl.squadUpdate = append(pl.squadUpdate, squadChange{team: p.TeamBought, entry: model.EntryFor(p)})
		}
		return pl, nil
	})
}

// DeletePlayer removes a player, refunding their team. The player is looked
// up by name.
func (e *Engine) DeletePlayer(name string) (*Receipt, error) {
	return e.run(OpDeletePlayer, name, func(s *AuctionState) (*plan, error) {
		name := strings.TrimSpace(name)
		if name == "" {
			return nil, ErrEmptyName
		}
		old, ok := s.Ledger.FindByName(name)
		if !ok {
			return nil, fmt.Errorf("player %s: %w", name, ErrPlayerNotFound)
		}

		pl := &plan{op: OpDeletePlayer, player: old, previous: &old, remove: true}
		if old.IsSold() {
			pl.spend(old.TeamBought, old.SoldAmount)
			pl.squadRemove = append(pl.squadRemove, squadChange{team: old.TeamBought, entry: model.SquadEntry{ID: old.ID}})
		}
		return pl, nil
	})
}

// DeleteAllData resets teams, players and squads. The ID sequence restarts
// at 1. Irrecoverable.
func (e *Engine) DeleteAllData() {
	start := e.now()

	e.mu.Lock()
	teams, players := e.state.Registry.Len(), e.state.Ledger.Len()
	e.state = NewState()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.observe(OpDeleteAll, start, nil)
	e.logger.Warn("all auction data deleted", "teams", teams, "players", players)
	e.persist(snap)
}

// run validates an operation into a plan and commits it under the lock.
func (e *Engine) run(op Op, name string, validate func(*AuctionState) (*plan, error)) (receipt *Receipt, err error) {
	start := e.now()
	defer func() { e.observe(op, start, err) }()

	e.mu.Lock()

	pl, err := validate(e.state)
	if err == nil {
		err = pl.check(e.state)
	}
	if err != nil {
		e.mu.Unlock()
		if IsValidation(err) {
			e.logger.Debug("transaction rejected", "op", op, "player", name, "error", err)
		} else {
			e.logger.Error("transaction guard failed", "op", op, "player", name, "error", err)
		}
		return nil, err
	}

	receipt, err = pl.apply(e.state)
	if err != nil {
		// apply only fails if check missed something.
		e.mu.Unlock()
		e.logger.Error("transaction apply failed", "op", op, "player", name, "error", err)
		return nil, err
	}
	receipt.TxID = uuid.New()
	receipt.CommittedAt = e.now()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Info("transaction committed",
		"op", op,
		"tx_id", receipt.TxID,
		"player_id", receipt.Player.ID,
		"player", receipt.Player.Name,
		"team", receipt.Player.TeamBought,
		"sold_amount", receipt.Player.SoldAmount,
	)

	e.persist(snap)
	if receipt.Notice != nil && e.notifier != nil {
		e.notifier.Notify(*receipt.Notice)
	}
	return receipt, nil
}

// snapshotLocked copies state for persistence (caller must hold lock).
func (e *Engine) snapshotLocked() model.Snapshot {
	e.version++
	snap := e.state.snapshot()
	snap.Version = e.version
	snap.TakenAt = e.now()
	return snap
}

func (e *Engine) persist(snap model.Snapshot) {
	if e.persister != nil {
		e.persister.Persist(snap)
	}
}

func (e *Engine) observe(op Op, start time.Time, err error) {
	if e.observer != nil {
		e.observer.ObserveTransaction(op, start, err)
	}
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

// normalizeInput trims names and checks field ranges.
func normalizeInput(in PlayerInput) (PlayerInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ErrEmptyName
	}
	in.Team = normalizeTeam(in.Team)

	if in.SoldAmount < 0 {
		return in, fmt.Errorf("sold amount %d: %w", in.SoldAmount, ErrInvalidAmount)
	}
	if in.Rating < 0 || in.Rating > 100 {
		return in, fmt.Errorf("rating %d: %w", in.Rating, ErrInvalidRating)
	}

	c, err := model.ParseCategory(string(in.Category))
	if err != nil {
		return in, fmt.Errorf("%v: %w", err, ErrInvalidCategory)
	}
	in.Category = c

	n, err := model.ParseNationality(string(in.Nationality))
	if err != nil {
		return in, fmt.Errorf("%v: %w", err, ErrInvalidNationality)
	}
	in.Nationality = n

	return in, nil
}

// normalizeTeam trims the team name and canonicalizes the Unsold label.
func normalizeTeam(team string) string {
	team = strings.TrimSpace(team)
	if strings.EqualFold(team, model.Unsold) {
		return model.Unsold
	}
	return team
}

func checkTeam(s *AuctionState, team string) error {
	if team == model.Unsold || s.Registry.Has(team) {
		return nil
	}
	return fmt.Errorf("team %q: %w", team, ErrUnknownTeam)
}

// checkBudget rejects a price the team cannot cover. credit is added to the
// available budget before comparing.
func checkBudget(s *AuctionState, team string, amount, credit int) error {
	budget, err := s.Registry.Budget(team)
	if err != nil {
		return err
	}
	if budget+credit < amount {
		return fmt.Errorf("insufficient budget for %s: available %d lakhs, need %d: %w",
			team, budget+credit, amount, ErrInsufficientBudget)
	}
	return nil
}

// playerFrom builds the ledger record; unsold players cost nothing.
func playerFrom(id int, in PlayerInput) model.Player {
	p := model.Player{
		ID:          id,
		Name:        in.Name,
		SoldAmount:  in.SoldAmount,
		Rating:      in.Rating,
		TeamBought:  in.Team,
		Category:    in.Category,
		Nationality: in.Nationality,
	}
	if !p.IsSold() {
		p.SoldAmount = 0
	}
	return p
}
