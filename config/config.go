// Package config loads server settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/orgchart/layout"
)

// Config is the server configuration.
type Config struct {
	ListenAddr    string `yaml:"listen_addr" validate:"required"`
	DatabaseURL   string `yaml:"database_url"`
	SessionSecret string `yaml:"session_secret"`
	LogLevel      string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// ConnectTimeout bounds the startup retries against Postgres; 0 retries forever.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	Layout layout.Config `yaml:"layout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:     ":3000",
		DatabaseURL:    "postgres://localhost:5432/orgchart",
		LogLevel:       "info",
		ConnectTimeout: time.Minute,
		Layout:         layout.DefaultConfig(),
	}
}

// GetEnvDefault returns the value of key, or defVal when it is unset.
func GetEnvDefault(key, defVal string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defVal
	}
	return val
}

var validate = validator.New()

// Load reads path over the defaults, then applies DATABASE_URL, LISTEN_ADDR,
// SESSION_SECRET and LOG_LEVEL from the environment. An empty path skips the
// file; a missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.DatabaseURL = GetEnvDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.ListenAddr = GetEnvDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.SessionSecret = GetEnvDefault("SESSION_SECRET", cfg.SessionSecret)
	cfg.LogLevel = GetEnvDefault("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required settings and a usable layout.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config: %s: failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("config: %w", err)
	}
	if c.Layout.NodeWidth <= 0 || c.Layout.NodeHeight <= 0 {
		return errors.New("config: layout node size must be positive")
	}
	return nil
}
