// Package config loads command configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnviron loads configuration from a KEY=value list instead of the
// process environment.
func ParseEnviron(target any, environ []string) error {
	if err := env.ParseWithOptions(target, env.Options{Environment: env.ToMap(environ)}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
