package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *ServerConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	switch c.Auction.ModifyBudgetCheck {
	case "current", "headroom":
	default:
		return fmt.Errorf("auction.modify_budget_check must be current or headroom, got %q", c.Auction.ModifyBudgetCheck)
	}

	seen := make(map[string]bool, len(c.Auction.SeedTeams))
	for i, team := range c.Auction.SeedTeams {
		name := strings.TrimSpace(team.Name)
		if name == "" {
			return fmt.Errorf("auction.seed_teams[%d].name is required", i)
		}
		if team.Budget < 0 {
			return fmt.Errorf("auction.seed_teams[%d].budget must be >= 0", i)
		}
		if seen[name] {
			return fmt.Errorf("auction.seed_teams[%d].name %q is duplicated", i, name)
		}
		seen[name] = true
	}

	switch c.Storage.Driver {
	case "memory":
	case "csv":
		if c.Storage.CSV.Dir == "" {
			return errors.New("storage.csv.dir is required")
		}
	case "postgres":
		if err := c.Storage.Postgres.validate("storage.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("storage.driver must be memory, csv or postgres, got %q", c.Storage.Driver)
	}

	if err := validatePort("http.port", c.HTTP.Port); err != nil {
		return err
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return errors.New("http.shutdown_timeout must be > 0")
	}

	if c.Notifications.DisplayFor <= 0 {
		return errors.New("notifications.display_for must be > 0")
	}
	if c.Notifications.ClientBuffer < 1 {
		return errors.New("notifications.client_buffer must be >= 1")
	}

	if c.Persistence.RetryInterval <= 0 {
		return errors.New("persistence.retry_interval must be > 0")
	}

	if err := validatePort("metrics.port", c.Metrics.Port); err != nil {
		return err
	}
	if c.Metrics.Port == c.HTTP.Port {
		return fmt.Errorf("metrics.port and http.port must differ, both %d", c.HTTP.Port)
	}

	return nil
}

func validatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", field, port)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
