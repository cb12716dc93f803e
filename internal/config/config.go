// Package config loads and validates Binga client credentials. Values come
// from explicit construction or from BINGA_* environment variables, with the
// published sandbox credentials filling any gaps in the dev environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	// APIVersion is sent on every charge request.
	APIVersion = "1.1"

	devEndpoint  = "http://preprod.binga.ma"
	prodEndpoint = "https://api.binga.ma"
)

// sandboxDefaults are Binga's published dev credentials. They are applied
// only in the dev environment, under any explicitly provided values.
var sandboxDefaults = map[string]interface{}{
	"store_id":    "4010",
	"private_key": "4010653ddd7e9b8cece2779bbed423ce",
	"username":    "Binga.ma",
	"password":    "Binga",
}

// Config holds the credentials and environment for one client instance. All
// four credential fields are required; a missing one is a ConfigError at
// construction, never at call time.
type Config struct {
	StoreID     string `koanf:"store_id" validate:"required"`
	PrivateKey  string `koanf:"private_key" validate:"required"`
	Username    string `koanf:"username" validate:"required"`
	Password    string `koanf:"password" validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=dev prod"`
	LogLevel    string `koanf:"log_level"`
}

// ConfigError reports a missing or invalid credential field.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("binga: configuration: %q is not defined", e.Field)
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	ok := errors.As(err, &ce)
	return ce, ok
}

// Load reads configuration from BINGA_* environment variables (BINGA_STORE_ID,
// BINGA_PRIVATE_KEY, BINGA_USERNAME, BINGA_PASSWORD, BINGA_ENVIRONMENT,
// BINGA_LOG_LEVEL). In the dev environment, sandbox defaults back any value
// the environment leaves unset. A .env file is honored via godotenv.
func Load() (*Config, error) {
	environment := os.Getenv("BINGA_ENVIRONMENT")
	if environment == "" {
		environment = EnvDev
	}

	k := koanf.New(".")

	if environment == EnvDev {
		if err := k.Load(confmap.Provider(sandboxDefaults, "."), nil); err != nil {
			return nil, fmt.Errorf("load sandbox defaults: %w", err)
		}
	}

	err := k.Load(env.Provider("BINGA_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "BINGA_"))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{Environment: environment}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Environment == "" {
		cfg.Environment = environment
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills dev gaps from the sandbox defaults, then checks every
// required field. The first failing field is reported as a ConfigError.
func (c *Config) Validate() error {
	if c.Environment == "" {
		c.Environment = EnvDev
	}
	if c.Environment == EnvDev {
		c.applySandboxDefaults()
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return &ConfigError{Field: fields[0].Field()}
		}
		return err
	}
	return nil
}

func (c *Config) applySandboxDefaults() {
	if c.StoreID == "" {
		c.StoreID = sandboxDefaults["store_id"].(string)
	}
	if c.PrivateKey == "" {
		c.PrivateKey = sandboxDefaults["private_key"].(string)
	}
	if c.Username == "" {
		c.Username = sandboxDefaults["username"].(string)
	}
	if c.Password == "" {
		c.Password = sandboxDefaults["password"].(string)
	}
}

// Endpoint returns the base URL for the configured environment.
func (c *Config) Endpoint() string {
	if c.Environment == EnvProd {
		return prodEndpoint
	}
	return devEndpoint
}

// NewLogger builds a slog logger honoring LogLevel ("debug", "info", "warn",
// "error"; empty means info).
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
