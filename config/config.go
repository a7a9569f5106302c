// Package config loads runtime configuration from environment variables.
// envconfig maps variables onto the Config struct; everything has a default
// suitable for local development.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// --- HTTP ---
	Port        int      `envconfig:"PORT" default:"8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`

	// --- Database ---
	// Path to the SQLite file; ":memory:" for an ephemeral database.
	DBPath string `envconfig:"DB_PATH" default:"bloom.db"`

	// --- Rollup maintenance ---
	// Cron spec for re-materializing the per-user sprout rollups. The rollup
	// is refreshed synchronously on every mutation; this is the safety net.
	RollupRefreshSpec string `envconfig:"ROLLUP_REFRESH_SPEC" default:"@every 10m"`

	// --- Logging ---
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("bloom", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
