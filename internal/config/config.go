// Package config loads Happy Places settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds process-wide settings. CLI flags override these when set.
type Config struct {
	DBPath     string     `env:"HAPPY_PLACES_DB"          envDefault:"happy_places.db"`
	Format     string     `env:"HAPPY_PLACES_FORMAT"      envDefault:"text"`
	LogLevel   slog.Level `env:"HAPPY_PLACES_LOG_LEVEL"   envDefault:"info"`
	ExportPath string     `env:"HAPPY_PLACES_EXPORT_PATH" envDefault:"happy_places_export.json"`
	Addr       string     `env:"HAPPY_PLACES_ADDR"        envDefault:"127.0.0.1:8080"`
}

// Load reads the optional dotenv files (default ".env"), then parses the
// environment. Variables already set in the environment win over dotenv
// values. Missing dotenv files are ignored.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, name := range dotenvFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", name, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("HAPPY_PLACES_FORMAT: invalid format %q (want text or json)", c.Format)
	}
	if c.DBPath == "" {
		return fmt.Errorf("HAPPY_PLACES_DB: database path is empty")
	}
	return nil
}
