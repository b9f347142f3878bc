package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/mock-auction/internal/config"
	"github.com/rickgao/mock-auction/internal/database"
	"github.com/rickgao/mock-auction/internal/model"
)

// Store loads and saves full auction snapshots.
type Store interface {
	// Load returns the stored snapshot. An empty store returns an empty
	// snapshot and no error.
	Load(ctx context.Context) (model.Snapshot, error)

	// Save replaces the stored teams and players with snap.
	Save(ctx context.Context, snap model.Snapshot) error

	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// IsEmpty reports whether a loaded snapshot holds no data.
func IsEmpty(snap model.Snapshot) bool {
	return len(snap.Teams) == 0 && len(snap.Players) == 0
}

// NeedsSeed reports whether a loaded snapshot comes from a store that has
// never been saved to. A store emptied by a reset still carries the reset's
// version and must not be seeded again.
func NeedsSeed(snap model.Snapshot) bool {
	return snap.Version == 0 && IsEmpty(snap)
}

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case "memory", "":
		logger.Info("using memory store")
		return NewMemoryStore(), nil

	case "csv":
		s, err := NewCSVStore(cfg.CSV.Dir)
		if err != nil {
			return nil, err
		}
		logger.Info("using csv store", "dir", cfg.CSV.Dir)
		return s, nil

	case "postgres":
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s := NewPostgresStore(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("using postgres store",
			"host", cfg.Postgres.Host,
			"database", cfg.Postgres.Name,
		)
		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
