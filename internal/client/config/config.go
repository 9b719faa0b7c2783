package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/logging"
	"github.com/go-playground/validator/v10"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Session store kinds.
const (
	StoreSQLite = "sqlite"
	StoreCookie = "cookie"
	StoreMemory = "memory"
)

// Config holds runtime settings for the Babel Edit CLI.
type Config struct {
	// Root of the storefront API, e.g. http://localhost:5000/api
	APIURL string `validate:"required,url"`

	// development, production or test; cookies are marked Secure only in production
	Environment string `validate:"oneof=development production test"`

	// Request pipeline
	RequestTimeout time.Duration `validate:"gt=0"`
	Retries        int           `validate:"gte=0,lte=10"`
	RetryDelay     time.Duration `validate:"gte=0"`
	RefreshPath    string        `validate:"required,startswith=/"`

	// Reachability probe
	HealthPath          string        `validate:"required,startswith=/"`
	HealthTimeout       time.Duration `validate:"gt=0"`
	OnlineCheckInterval time.Duration `validate:"gt=0"`

	// Session persistence
	SessionStore      string        `validate:"oneof=sqlite cookie memory"`
	SessionDBPath     string        `validate:"required_if=SessionStore sqlite"`
	SessionPassphrase string
	CookieMaxAge      time.Duration `validate:"gt=0"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		APIURL:              "http://localhost:5000/api",
		Environment:         EnvDevelopment,
		RequestTimeout:      30 * time.Second,
		Retries:             2,
		RetryDelay:          time.Second,
		RefreshPath:         "/auth/refresh",
		HealthPath:          "/health",
		HealthTimeout:       5 * time.Second,
		OnlineCheckInterval: 30 * time.Second,
		SessionStore:        StoreSQLite,
		SessionDBPath:       "babeledit-session.db",
		CookieMaxAge:        7 * 24 * time.Hour,
		LogLevel:            logging.LevelInfo,
		LogFormat:           logging.FormatText,
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from defaults, .env in the working directory,
// BABEL_* environment variables, an optional JSON file (-c/--config) and
// flags, in that order, and validates the result.
func LoadConfig(args []string) (*Config, error) {
	return load(args, os.Getenv, os.Getwd)
}

func load(args []string, getenv func(string) string, getwd func() (string, error)) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.LoadDotEnv(getwd); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.LoadEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.LoadJSON(args); err != nil {
		return nil, err
	}
	if err := cfg.ParseFlags(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
