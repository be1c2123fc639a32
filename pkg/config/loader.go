package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Validatable lets a config struct enforce its own invariants after the
// environment has been parsed into it.
type Validatable interface {
	Validate() error
}

// Load parses environment variables into the provided struct. The struct
// should use `env` tags to define mappings. If the struct implements
// Validatable, its Validate method runs after parsing and its error fails
// the load.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"8080"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if v, ok := cfg.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	return nil
}
