package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultModifyBudgetCheck = "current"
	DefaultStorageDriver     = "memory"
	DefaultCSVDir            = "."
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultHTTPPort          = 8000
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultDisplayFor        = 3 * time.Second
	DefaultClientBuffer      = 64
	DefaultPingInterval      = 15 * time.Second
	DefaultNotifyWriteWait   = 5 * time.Second
	DefaultRetryInterval     = 2 * time.Second
	DefaultMetricsPort       = 9090
	DefaultMetricsPath       = "/metrics"
)

func (c *ServerConfig) applyDefaults() {
	// Auction defaults
	if c.Auction.ModifyBudgetCheck == "" {
		c.Auction.ModifyBudgetCheck = DefaultModifyBudgetCheck
	}

	// Storage defaults
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.CSV.Dir == "" {
		c.Storage.CSV.Dir = DefaultCSVDir
	}
	applyDBDefaults(&c.Storage.Postgres)

	// HTTP defaults
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultHTTPPort
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = DefaultReadTimeout
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = DefaultWriteTimeout
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Notifications defaults
	if c.Notifications.DisplayFor == 0 {
		c.Notifications.DisplayFor = DefaultDisplayFor
	}
	if c.Notifications.ClientBuffer == 0 {
		c.Notifications.ClientBuffer = DefaultClientBuffer
	}
	if c.Notifications.PingInterval == 0 {
		c.Notifications.PingInterval = DefaultPingInterval
	}
	if c.Notifications.WriteTimeout == 0 {
		c.Notifications.WriteTimeout = DefaultNotifyWriteWait
	}

	// Persistence defaults
	if c.Persistence.RetryInterval == 0 {
		c.Persistence.RetryInterval = DefaultRetryInterval
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
