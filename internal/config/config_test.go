package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-auction
admin:
  secret: admin123
auction:
  modify_budget_check: headroom
  seed_teams:
    - name: CSK
      budget: 9000
    - name: MI
      budget: 9000
storage:
  driver: postgres
  postgres:
    host: localhost
    port: 5432
    name: auction
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-auction" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-auction")
	}
	if cfg.Admin.Secret != "admin123" {
		t.Errorf("Admin.Secret = %q, want %q", cfg.Admin.Secret, "admin123")
	}
	if cfg.Auction.ModifyBudgetCheck != "headroom" {
		t.Errorf("Auction.ModifyBudgetCheck = %q, want %q", cfg.Auction.ModifyBudgetCheck, "headroom")
	}
	if len(cfg.Auction.SeedTeams) != 2 || cfg.Auction.SeedTeams[1].Name != "MI" || cfg.Auction.SeedTeams[1].Budget != 9000 {
		t.Errorf("Auction.SeedTeams = %+v", cfg.Auction.SeedTeams)
	}
	if cfg.Storage.Postgres.Host != "localhost" {
		t.Errorf("Storage.Postgres.Host = %q, want %q", cfg.Storage.Postgres.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
instance:
  id: test-auction
storage:
  driver: postgres
  postgres:
    host: localhost
    name: auction
    user: testuser
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Postgres.Password != "secret123" {
		t.Errorf("Storage.Postgres.Password = %q, want %q", cfg.Storage.Postgres.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-auction
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Storage.Driver != DefaultStorageDriver {
		t.Errorf("Storage.Driver = %q, want default %q", cfg.Storage.Driver, DefaultStorageDriver)
	}
	if cfg.Auction.ModifyBudgetCheck != DefaultModifyBudgetCheck {
		t.Errorf("Auction.ModifyBudgetCheck = %q, want default %q", cfg.Auction.ModifyBudgetCheck, DefaultModifyBudgetCheck)
	}
	if cfg.Storage.Postgres.Port != DefaultDBPort {
		t.Errorf("Storage.Postgres.Port = %d, want default %d", cfg.Storage.Postgres.Port, DefaultDBPort)
	}
	if cfg.HTTP.Port != DefaultHTTPPort {
		t.Errorf("HTTP.Port = %d, want default %d", cfg.HTTP.Port, DefaultHTTPPort)
	}
	if cfg.Notifications.DisplayFor != DefaultDisplayFor {
		t.Errorf("Notifications.DisplayFor = %v, want default %v", cfg.Notifications.DisplayFor, DefaultDisplayFor)
	}
	if cfg.Persistence.RetryInterval != DefaultRetryInterval {
		t.Errorf("Persistence.RetryInterval = %v, want default %v", cfg.Persistence.RetryInterval, DefaultRetryInterval)
	}
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Metrics.Port = %d, want default %d", cfg.Metrics.Port, DefaultMetricsPort)
	}
}

func TestLoadWithDefaultsEnvOverrides(t *testing.T) {
	t.Setenv("AUCTION_STORAGE_DRIVER", "csv")
	t.Setenv("AUCTION_STORAGE_CSV_DIR", "/var/lib/auction")
	t.Setenv("AUCTION_HTTP_PORT", "8081")
	t.Setenv("AUCTION_NOTIFICATIONS_DISPLAY_FOR", "5s")
	t.Setenv("AUCTION_ADMIN_SECRET", "from-env")

	yaml := `
instance:
  id: test-auction
admin:
  secret: from-file
storage:
  driver: memory
http:
  port: 8000
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Storage.Driver != "csv" {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, "csv")
	}
	if cfg.Storage.CSV.Dir != "/var/lib/auction" {
		t.Errorf("Storage.CSV.Dir = %q, want %q", cfg.Storage.CSV.Dir, "/var/lib/auction")
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("HTTP.Port = %d, want %d", cfg.HTTP.Port, 8081)
	}
	if cfg.Notifications.DisplayFor != 5*time.Second {
		t.Errorf("Notifications.DisplayFor = %v, want %v", cfg.Notifications.DisplayFor, 5*time.Second)
	}
	if cfg.Admin.Secret != "from-env" {
		t.Errorf("Admin.Secret = %q, want %q", cfg.Admin.Secret, "from-env")
	}
	// Unset variables keep the loaded or default value.
	if cfg.Instance.ID != "test-auction" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-auction")
	}
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Metrics.Port = %d, want default %d", cfg.Metrics.Port, DefaultMetricsPort)
	}
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	if _, err := LoadAndValidate(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadAndValidate() expected error for missing file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() ServerConfig {
		return *Default()
	}

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{
			name:    "missing instance id",
			mutate:  func(c *ServerConfig) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "bad modify budget check",
			mutate:  func(c *ServerConfig) { c.Auction.ModifyBudgetCheck = "loose" },
			wantErr: `auction.modify_budget_check must be current or headroom, got "loose"`,
		},
		{
			name: "seed team without name",
			mutate: func(c *ServerConfig) {
				c.Auction.SeedTeams = []SeedTeam{{Name: "CSK", Budget: 9000}, {Name: " ", Budget: 9000}}
			},
			wantErr: "auction.seed_teams[1].name is required",
		},
		{
			name: "duplicate seed team",
			mutate: func(c *ServerConfig) {
				c.Auction.SeedTeams = []SeedTeam{{Name: "CSK", Budget: 9000}, {Name: "CSK", Budget: 100}}
			},
			wantErr: `auction.seed_teams[1].name "CSK" is duplicated`,
		},
		{
			name:    "unknown storage driver",
			mutate:  func(c *ServerConfig) { c.Storage.Driver = "sqlite" },
			wantErr: `storage.driver must be memory, csv or postgres, got "sqlite"`,
		},
		{
			name:    "missing postgres host",
			mutate:  func(c *ServerConfig) { c.Storage.Driver = "postgres" },
			wantErr: "storage.postgres.host is required",
		},
		{
			name: "missing postgres password",
			mutate: func(c *ServerConfig) {
				c.Storage.Driver = "postgres"
				c.Storage.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", MaxConns: 5}
			},
			wantErr: "storage.postgres.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *ServerConfig) {
				c.Storage.Driver = "postgres"
				c.Storage.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "storage.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "http port out of range",
			mutate:  func(c *ServerConfig) { c.HTTP.Port = 70000 },
			wantErr: "http.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "metrics port clashes with http",
			mutate:  func(c *ServerConfig) { c.Metrics.Port = c.HTTP.Port },
			wantErr: "metrics.port and http.port must differ, both 8000",
		},
		{
			name:    "zero client buffer",
			mutate:  func(c *ServerConfig) { c.Notifications.ClientBuffer = 0 },
			wantErr: "notifications.client_buffer must be >= 1",
		},
		{
			name: "valid postgres config",
			mutate: func(c *ServerConfig) {
				c.Storage.Driver = "postgres"
				c.Storage.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 10, MinConns: 2}
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
