package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment defaults for global flags.
type Config struct {
	DB         string `env:"EARTRAIN_DB"         envDefault:"eartrain.db"`
	Curriculum string `env:"EARTRAIN_CURRICULUM" envDefault:"tone-pairs"`
	Seed       uint64 `env:"EARTRAIN_SEED"`
	Format     string `env:"EARTRAIN_FORMAT"     envDefault:"text"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
