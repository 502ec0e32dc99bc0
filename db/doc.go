// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db persists client-side state between runs.

This is the terminal equivalent of browser local storage: the customer cart
snapshot and the staff access/refresh tokens live here so a restart restores
them.

# Opening

	conn, err := db.Open(db.TypeSQLite, "file:quickly-order.db")
	store := db.NewStore(conn)

Open pings the database and runs CreateSchema. SQLite (modernc.org/sqlite,
pure Go) is the default; PostgreSQL (lib/pq) lets several kiosks share one
state database.

# Schema

	client_state(key TEXT PRIMARY KEY, value TEXT, updated_at TIMESTAMP)

CreateSchema is safe to call multiple times.

# Key/Value Access

	err := store.Set(ctx, "access_token", token)
	token, err := store.Get(ctx, "access_token") // db.ErrNotFound if absent
	err = store.Delete(ctx, "access_token")

The store has a single writer at a time (the owning cart or token store), so
no locking is done here.
*/
package db
