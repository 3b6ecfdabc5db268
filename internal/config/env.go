package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "EMISSARY_"

// ApplyEnv overrides fields of c from EMISSARY_* environment variables.
// Unset variables leave fields untouched.
func ApplyEnv(c *Config) error {
	return applyEnv(c, nil)
}

// applyEnv is ApplyEnv with an explicit environment for tests. A nil
// environment reads the process environment.
func applyEnv(c *Config, environment map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environment}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
