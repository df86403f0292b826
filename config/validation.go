package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	// Required when the postgres driver is selected
	DatabaseCredentials bool
	JWTSecret           bool
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {},
		Test:        {},
		CI: {
			DatabaseCredentials: true,
		},
		Production: {
			DatabaseCredentials: true,
			JWTSecret:           true,
		},
	}
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "console"}
)

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	reqs := requirements[cfg.Environment]

	var errors []string
	add := func(field, msg string) {
		errors = append(errors, ValidationError{Field: field, Message: msg}.Error())
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if reqs.DatabaseCredentials {
			if cfg.DBUser == "" {
				add("DB_USER", "required with the postgres driver")
			}
			if cfg.DBPassword == "" {
				add("DB_PASSWORD", "required with the postgres driver")
			}
		}
	case DriverSQLite:
		if cfg.DBPath == "" {
			add("DB_PATH", "required with the sqlite driver")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if reqs.JWTSecret && cfg.JWTSecret == "" {
		add("JWT_SECRET", "required in "+string(cfg.Environment))
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "must not be empty")
	}
	if cfg.RateLimitRequests < 0 {
		add("RATE_LIMIT_REQUESTS", "must not be negative")
	}
	if cfg.RateLimitWindow <= 0 {
		add("RATE_LIMIT_WINDOW", "must be positive")
	}
	if !contains(validLogLevels, cfg.LogLevel) {
		add("LOG_LEVEL", fmt.Sprintf("must be one of %s", strings.Join(validLogLevels, ", ")))
	}
	if !contains(validLogFormats, cfg.LogFormat) {
		add("LOG_FORMAT", fmt.Sprintf("must be one of %s", strings.Join(validLogFormats, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
