package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort      string
	ServerHost      string
	ShutdownTimeout time.Duration

	// Database configuration
	DBDriver      string
	DBPath        string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	MigrationsDir string

	// Redis configuration; the filter rate limit is disabled without it
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Filter endpoint rate limit
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// JWT configuration for the admin endpoints
	JWTSecret string
	JWTIssuer string

	CORSAllowedOrigins []string

	// Logging
	LogLevel  string
	LogFormat string

	// Media bucket, used by the media tooling only
	MediaBucket string
	AWSRegion   string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// defaults are applied to any key neither the environment nor a secret sets.
var defaults = map[string]string{
	"server_port":          "8080",
	"server_host":          "0.0.0.0",
	"shutdown_timeout":     "10s",
	"db_driver":            DriverPostgres,
	"db_path":              "catalog.db",
	"db_host":              "localhost",
	"db_port":              "5432",
	"db_name":              "catalog",
	"db_ssl_mode":          "disable",
	"migrations_dir":       "migrations",
	"redis_db":             "0",
	"rate_limit_requests":  "60",
	"rate_limit_window":    "1m",
	"jwt_issuer":           "nocapcooking",
	"cors_allowed_origins": "*",
	"log_level":            "info",
	"log_format":           "json",
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	var lookup lookupFunc
	switch env {
	case CI:
		lookup = fromEnv
	case Development, Test:
		if env == Development {
			loadDotEnv()
		}
		lookup = firstOf(fromEnv, fromSecrets)
	case Production:
		lookup = firstOf(fromSecrets, fromEnv)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	cfg, err := build(env, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// lookupFunc resolves a lower_snake configuration key. An empty result means unset.
type lookupFunc func(key string) string

func fromEnv(key string) string {
	return strings.TrimSpace(os.Getenv(strings.ToUpper(key)))
}

func fromSecrets(key string) string {
	return readSecret(key)
}

func firstOf(lookups ...lookupFunc) lookupFunc {
	return func(key string) string {
		for _, l := range lookups {
			if v := l(key); v != "" {
				return v
			}
		}
		return ""
	}
}

func withDefaults(lookup lookupFunc) lookupFunc {
	return func(key string) string {
		if v := lookup(key); v != "" {
			return v
		}
		return defaults[key]
	}
}

func build(env Environment, lookup lookupFunc) (*Config, error) {
	get := withDefaults(lookup)

	cfg := &Config{
		Environment:   env,
		ServerPort:    get("server_port"),
		ServerHost:    get("server_host"),
		DBDriver:      strings.ToLower(get("db_driver")),
		DBPath:        get("db_path"),
		DBHost:        get("db_host"),
		DBPort:        get("db_port"),
		DBUser:        get("db_user"),
		DBPassword:    get("db_password"),
		DBName:        get("db_name"),
		DBSSLMode:     get("db_ssl_mode"),
		MigrationsDir: get("migrations_dir"),
		RedisHost:     get("redis_host"),
		RedisPort:     get("redis_port"),
		RedisPassword: get("redis_password"),
		RedisURL:      get("redis_url"),
		JWTSecret:     get("jwt_secret"),
		JWTIssuer:     get("jwt_issuer"),
		LogLevel:      strings.ToLower(get("log_level")),
		LogFormat:     strings.ToLower(get("log_format")),
		MediaBucket:   get("s3_bucket_name"),
		AWSRegion:     get("aws_region"),
	}

	for _, origin := range strings.Split(get("cors_allowed_origins"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(get("redis_db")); err != nil {
		return nil, ValidationError{Field: "REDIS_DB", Message: err.Error()}
	}
	if cfg.RateLimitRequests, err = strconv.Atoi(get("rate_limit_requests")); err != nil {
		return nil, ValidationError{Field: "RATE_LIMIT_REQUESTS", Message: err.Error()}
	}
	if cfg.RateLimitWindow, err = time.ParseDuration(get("rate_limit_window")); err != nil {
		return nil, ValidationError{Field: "RATE_LIMIT_WINDOW", Message: err.Error()}
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(get("shutdown_timeout")); err != nil {
		return nil, ValidationError{Field: "SHUTDOWN_TIMEOUT", Message: err.Error()}
	}

	return cfg, nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

// RedisEnabled reports whether a redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// loadDotEnv reads .env when present. Values already in the environment win.
func loadDotEnv() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretPath := filepath.Join(secretsDir(), name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
