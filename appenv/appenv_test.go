// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package appenv

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/quickly-order/testutil"
)

func TestSetup(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	dbURL := "file:" + filepath.Join(t.TempDir(), "app.db")

	var logs bytes.Buffer
	env, err := Setup("customer-app", []string{"-api", fake.URL, "-t", "sqlite", "-d", dbURL, "menu", testutil.RestaurantSlug}, &logs, nil)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer env.Close()

	if len(env.Args) != 2 || env.Args[0] != "menu" {
		t.Errorf("Expected subcommand args, got %v", env.Args)
	}

	ctx := context.Background()
	if err := env.Store.Set(ctx, "probe", "1"); err != nil {
		t.Fatalf("Store not usable: %v", err)
	}

	r, err := env.Client.Customer().Restaurant(ctx, testutil.RestaurantSlug)
	if err != nil {
		t.Fatalf("Client not usable: %v", err)
	}
	if r.Slug != testutil.RestaurantSlug {
		t.Errorf("Expected %s, got %s", testutil.RestaurantSlug, r.Slug)
	}
}

func TestSetup_BadDatabaseType(t *testing.T) {
	if _, err := Setup("customer-app", []string{"-t", "oracle"}, &bytes.Buffer{}, nil); err == nil {
		t.Error("Expected error for unsupported database type")
	}
}
