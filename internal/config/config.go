// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Data backends the trip repository can talk to.
const (
	BackendPostgres = "postgres"
	BackendREST     = "rest"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `env:"PORT" validate:"required,numeric"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" validate:"dive,url"`

	// DataBackend selects where trips are inserted: "postgres" talks to the
	// database directly, "rest" goes through the Supabase REST endpoint.
	DataBackend string `env:"DATA_BACKEND" validate:"oneof=postgres rest"`

	// DatabaseURL is the Postgres connection string. Required for the postgres backend.
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=DataBackend postgres"`

	// SupabaseURL and SupabaseAnonKey address the REST backend.
	SupabaseURL     string `env:"SUPABASE_URL" validate:"required_if=DataBackend rest,omitempty,url"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY" validate:"required_if=DataBackend rest"`

	// JWTSecret verifies the HS256 access tokens that identify users. Required.
	JWTSecret string `env:"JWT_SECRET" validate:"required"`

	// TripsTable is the remote table trips are inserted into. Defaults to "Trips".
	TripsTable string `env:"TRIPS_TABLE" validate:"required"`

	// RedisURL enables the Redis form store. Empty keeps forms in memory.
	RedisURL string `env:"REDIS_URL" validate:"omitempty,url"`

	// RemoteTimeout bounds one insert against the backend. Defaults to 10s.
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" validate:"gt=0"`

	// MigrateOnStart applies the embedded goose migrations at boot (postgres only).
	MigrateOnStart bool `env:"MIGRATE_ON_START"`

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" validate:"gt=0"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable that does not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigins:     splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DataBackend:     getEnv("DATA_BACKEND", BackendPostgres),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TripsTable:      getEnv("TRIPS_TABLE", "Trips"),
		RedisURL:        os.Getenv("REDIS_URL"),
	}

	var err error
	if cfg.RemoteTimeout, err = time.ParseDuration(getEnv("REMOTE_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("invalid REMOTE_TIMEOUT: %w", err)
	}
	if cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid MIGRATE_ON_START: %w", err)
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("invalid MAX_BODY_BYTES: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks cfg against its struct tags. Failures are reported by
// environment variable name, required ones grouped into a single message.
func validate(cfg Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config.validate: %w", err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		name := fe.Field()
		switch fe.Tag() {
		case "required", "required_if":
			missing = append(missing, name)
		default:
			invalid = append(invalid, fmt.Sprintf("%s (%s)", name, fe.Tag()))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
