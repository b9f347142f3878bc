package config

import "time"

// ServerConfig is the root configuration for an auction server.
type ServerConfig struct {
	Instance      InstanceConfig      `yaml:"instance"`
	Admin         AdminConfig         `yaml:"admin" envPrefix:"ADMIN_"`
	Auction       AuctionConfig       `yaml:"auction"`
	Storage       StorageConfig       `yaml:"storage" envPrefix:"STORAGE_"`
	HTTP          HTTPConfig          `yaml:"http" envPrefix:"HTTP_"`
	Notifications NotificationsConfig `yaml:"notifications" envPrefix:"NOTIFICATIONS_"`
	Persistence   PersistenceConfig   `yaml:"persistence" envPrefix:"PERSISTENCE_"`
	Metrics       MetricsConfig       `yaml:"metrics" envPrefix:"METRICS_"`
}

// InstanceConfig identifies this server.
type InstanceConfig struct {
	ID string `yaml:"id" env:"INSTANCE_ID"`
}

// AdminConfig holds the shared admin secret. SecretHash (bcrypt) wins over
// Secret when both are set.
type AdminConfig struct {
	Secret     string `yaml:"secret" env:"SECRET"`
	SecretHash string `yaml:"secret_hash" env:"SECRET_HASH"`
}

// AuctionConfig holds transaction engine settings.
type AuctionConfig struct {
	ModifyBudgetCheck string     `yaml:"modify_budget_check" env:"MODIFY_BUDGET_CHECK"` // current | headroom
	SeedTeams         []SeedTeam `yaml:"seed_teams"`                                    // Applied when the store is empty
}

// SeedTeam is a team registered on first start.
type SeedTeam struct {
	Name   string `yaml:"name"`
	Budget int    `yaml:"budget"` // Lakhs
}

// StorageConfig selects and configures the snapshot store.
type StorageConfig struct {
	Driver   string    `yaml:"driver" env:"DRIVER"` // memory | csv | postgres
	CSV      CSVConfig `yaml:"csv" envPrefix:"CSV_"`
	Postgres DBConfig  `yaml:"postgres" envPrefix:"POSTGRES_"`
}

// CSVConfig holds the CSV store directory.
type CSVConfig struct {
	Dir string `yaml:"dir" env:"DIR"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Name     string `yaml:"name" env:"NAME"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" env:"SSL_MODE"`
	MaxConns int    `yaml:"max_conns" env:"MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"MIN_CONNS"`
}

// HTTPConfig holds API server settings.
type HTTPConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// NotificationsConfig holds sale notification feed settings.
type NotificationsConfig struct {
	DisplayFor   time.Duration `yaml:"display_for" env:"DISPLAY_FOR"`
	ClientBuffer int           `yaml:"client_buffer" env:"CLIENT_BUFFER"`
	PingInterval time.Duration `yaml:"ping_interval" env:"PING_INTERVAL"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
}

// PersistenceConfig holds snapshot writer settings.
type PersistenceConfig struct {
	RetryInterval time.Duration `yaml:"retry_interval" env:"RETRY_INTERVAL"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port" env:"PORT"`
	Path string `yaml:"path" env:"PATH"`
}
