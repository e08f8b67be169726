// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the process reads at startup. Defaults
// produce a runnable local world without any environment set.
type Config struct {
	// Seed drives world generation and all in-turn randomness. The same
	// seed over the same saved state replays identically.
	Seed int64 `env:"AFTERMATH_SEED" envDefault:"42"`

	// DBPath is the SQLite file holding world state.
	DBPath string `env:"AFTERMATH_DB" envDefault:"data/aftermath.db"`

	// APIPort is the HTTP listen port.
	APIPort int `env:"AFTERMATH_PORT" envDefault:"8080"`

	// AdminKey is the bearer token for POST endpoints. Empty disables
	// the control plane.
	AdminKey string `env:"AFTERMATH_ADMIN_KEY"`

	// TurnInterval is the real-time pacing of the turn loop at speed 1.
	TurnInterval time.Duration `env:"AFTERMATH_TURN_INTERVAL" envDefault:"5s"`

	// AutosaveTurns is how many turns pass between automatic saves.
	AutosaveTurns int `env:"AFTERMATH_AUTOSAVE_TURNS" envDefault:"10"`

	// CORSOrigins is a comma-separated list of allowed frontend origins,
	// in addition to the localhost dev servers.
	CORSOrigins []string `env:"AFTERMATH_CORS_ORIGINS" envSeparator:","`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.AutosaveTurns < 1 {
		cfg.AutosaveTurns = 1
	}
	return cfg, nil
}
