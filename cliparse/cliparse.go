// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultAPIURL       = "http://localhost:8000/api"
	DefaultDatabaseType = "sqlite"
	DefaultCurrency     = "NRS"
	DefaultOrigin       = "http://localhost:5173"
)

type Config struct {
	APIURL       string
	DatabaseType string
	DatabaseURL  string
	Username     string
	Password     string
	SoundEnabled bool
	Currency     string
	Origin       string
	StreamURL    string
	Verbose      bool
}

// LoadDotEnv loads KEY=VALUE files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ParseFlags reads app flags with environment fallback and returns the
// config plus the remaining positional args (the subcommand).
func ParseFlags(app string, args []string) (Config, []string, error) {
	var cfg Config

	fs := flag.NewFlagSet(app, flag.ContinueOnError)

	// Connection config (can be CLI args or env)
	fs.StringVar(&cfg.APIURL, "api", "", "API base URL")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "State database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "State database type (sqlite or postgres)")

	// Staff credentials (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.Username, "user", "", "Staff username (prefer env)")
	fs.StringVar(&cfg.Password, "password", "", "Staff password (prefer env)")

	fs.BoolVar(&cfg.SoundEnabled, "sound", true, "Ring the terminal bell on new orders")
	fs.StringVar(&cfg.Currency, "currency", "", "Currency prefix for prices")
	fs.StringVar(&cfg.Origin, "origin", "", "Customer app origin for QR links")
	fs.StringVar(&cfg.StreamURL, "stream", "", "Websocket URL pushing live orders (replaces polling)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Fall back to environment variables
	if cfg.APIURL == "" {
		cfg.APIURL = envOr("API_URL", DefaultAPIURL)
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", DefaultDatabaseType)
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, nil, fmt.Errorf("invalid database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, nil, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "file:" + app + ".db"
	}

	if cfg.Username == "" {
		cfg.Username = os.Getenv("KITCHEN_USERNAME")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("KITCHEN_PASSWORD")
	}

	if !set["sound"] {
		if v := os.Getenv("SOUND_ENABLED"); v != "" {
			enabled, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, nil, errors.New("invalid SOUND_ENABLED env variable")
			}
			cfg.SoundEnabled = enabled
		}
	}

	if cfg.Currency == "" {
		cfg.Currency = envOr("CURRENCY", DefaultCurrency)
	}
	if cfg.Origin == "" {
		cfg.Origin = envOr("CUSTOMER_ORIGIN", DefaultOrigin)
	}
	if cfg.StreamURL == "" {
		cfg.StreamURL = os.Getenv("ORDERS_STREAM_URL")
	}

	return cfg, fs.Args(), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
