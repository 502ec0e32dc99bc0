// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	for _, key := range []string{"API_URL", "DATABASE_TYPE", "DATABASE_URL", "SOUND_ENABLED", "CURRENCY", "CUSTOMER_ORIGIN"} {
		t.Setenv(key, "")
	}

	cfg, rest, err := ParseFlags("kitchen-display", []string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected API URL %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.DatabaseURL != "file:kitchen-display.db" {
		t.Errorf("expected per-app sqlite file, got %s", cfg.DatabaseURL)
	}
	if !cfg.SoundEnabled {
		t.Error("sound should default to enabled")
	}
	if cfg.Currency != DefaultCurrency {
		t.Errorf("expected currency %s, got %s", DefaultCurrency, cfg.Currency)
	}
	if len(rest) != 0 {
		t.Errorf("expected no remaining args, got %v", rest)
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("API_URL", "http://api.test/api")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("KITCHEN_USERNAME", "chef")
	t.Setenv("KITCHEN_PASSWORD", "secret")
	t.Setenv("SOUND_ENABLED", "false")
	t.Setenv("CURRENCY", "USD")

	cfg, _, err := ParseFlags("kitchen-display", []string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.APIURL != "http://api.test/api" {
		t.Errorf("expected env API URL, got %s", cfg.APIURL)
	}
	if cfg.DatabaseType != "postgres" || cfg.DatabaseURL != "postgres://test" {
		t.Errorf("expected postgres://test, got %s %s", cfg.DatabaseType, cfg.DatabaseURL)
	}
	if cfg.Username != "chef" || cfg.Password != "secret" {
		t.Errorf("expected env credentials, got %s/%s", cfg.Username, cfg.Password)
	}
	if cfg.SoundEnabled {
		t.Error("SOUND_ENABLED=false should disable sound")
	}
	if cfg.Currency != "USD" {
		t.Errorf("expected USD, got %s", cfg.Currency)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("API_URL", "http://env.test/api")
	t.Setenv("SOUND_ENABLED", "false")

	cfg, rest, err := ParseFlags("customer-app", []string{"-api", "http://cli.test/api", "-sound=true", "menu", "pizza-place"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.APIURL != "http://cli.test/api" {
		t.Errorf("CLI should override env: got %s", cfg.APIURL)
	}
	if !cfg.SoundEnabled {
		t.Error("CLI -sound=true should override SOUND_ENABLED")
	}
	if len(rest) != 2 || rest[0] != "menu" || rest[1] != "pizza-place" {
		t.Errorf("expected subcommand args, got %v", rest)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad database type", nil, []string{"-t", "mysql"}},
		{"postgres without url", map[string]string{"DATABASE_URL": ""}, []string{"-t", "postgres"}},
		{"bad sound env", map[string]string{"SOUND_ENABLED": "loud"}, nil},
		{"unknown flag", nil, []string{"-nope"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DATABASE_TYPE", "")
			t.Setenv("SOUND_ENABLED", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, _, err := ParseFlags("test", tc.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CURRENCY=EUR\nAPI_URL=http://dotenv.test/api\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CURRENCY", "")
	os.Unsetenv("CURRENCY")
	t.Setenv("API_URL", "http://already-set.test/api")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("CURRENCY"); got != "EUR" {
		t.Errorf("expected CURRENCY from .env, got %q", got)
	}
	// Existing variables win over .env
	if got := os.Getenv("API_URL"); got != "http://already-set.test/api" {
		t.Errorf("expected existing API_URL to be kept, got %q", got)
	}
}
