package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/mock-auction/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS teams (
	name           TEXT PRIMARY KEY,
	position       INTEGER NOT NULL,
	budget         INTEGER NOT NULL,
	initial_budget INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	sold_amount INTEGER NOT NULL,
	rating      INTEGER NOT NULL,
	team_bought TEXT NOT NULL,
	category    TEXT NOT NULL,
	nationality TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_meta (
	singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	version   BIGINT NOT NULL,
	next_id   BIGINT NOT NULL DEFAULT 0,
	saved_at  TIMESTAMPTZ NOT NULL
);

ALTER TABLE snapshot_meta ADD COLUMN IF NOT EXISTS next_id BIGINT NOT NULL DEFAULT 0;
`

// PostgresStore keeps the snapshot in the teams and players tables.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore wraps a connected pool. Call EnsureSchema before use.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot

	rows, err := s.db.Query(ctx, `
		SELECT name, budget, initial_budget
		FROM teams
		ORDER BY position
	`)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("query teams: %w", err)
	}
	snap.Teams, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Team, error) {
		var t model.Team
		err := row.Scan(&t.Name, &t.Budget, &t.InitialBudget)
		return t, err
	})
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("scan teams: %w", err)
	}

	rows, err = s.db.Query(ctx, `
		SELECT id, name, sold_amount, rating, team_bought, category, nationality
		FROM players
		ORDER BY id
	`)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("query players: %w", err)
	}
	snap.Players, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Player, error) {
		var (
			p           model.Player
			category    string
			nationality string
		)
		err := row.Scan(&p.ID, &p.Name, &p.SoldAmount, &p.Rating, &p.TeamBought, &category, &nationality)
		p.Category = model.Category(category)
		p.Nationality = model.Nationality(nationality)
		return p, err
	})
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("scan players: %w", err)
	}

	var version, nextID int64
	err = s.db.QueryRow(ctx, `SELECT version, next_id FROM snapshot_meta`).Scan(&version, &nextID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return model.Snapshot{}, fmt.Errorf("query snapshot meta: %w", err)
	}
	snap.Version = uint64(version)
	snap.NextID = int(nextID)

	return snap, nil
}

// Save replaces both tables in one transaction.
func (s *PostgresStore) Save(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM players`)
	batch.Queue(`DELETE FROM teams`)
	for i, t := range snap.Teams {
		batch.Queue(`
			INSERT INTO teams (name, position, budget, initial_budget)
			VALUES ($1, $2, $3, $4)
		`, t.Name, i, t.Budget, t.InitialBudget)
	}
	for _, p := range snap.Players {
		batch.Queue(`
			INSERT INTO players (id, name, sold_amount, rating, team_bought, category, nationality)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.ID, p.Name, p.SoldAmount, p.Rating, p.TeamBought, string(p.Category), string(p.Nationality))
	}
	batch.Queue(`
		INSERT INTO snapshot_meta (singleton, version, next_id, saved_at)
		VALUES (TRUE, $1, $2, now())
		ON CONFLICT (singleton) DO UPDATE
		SET version = EXCLUDED.version, next_id = EXCLUDED.next_id, saved_at = EXCLUDED.saved_at
	`, int64(snap.Version), int64(snap.NextID))

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("save snapshot statement %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
