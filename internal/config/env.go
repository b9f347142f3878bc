package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every override variable, e.g. AUCTION_STORAGE_DRIVER.
const EnvPrefix = "AUCTION_"

// ApplyEnv overrides fields from AUCTION_* environment variables. Unset
// variables leave the field as loaded.
func ApplyEnv(cfg *ServerConfig) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
