// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package appenv

import (
	"database/sql"
	"io"
	"log/slog"
	"os"

	"github.com/danielhkuo/quickly-order/apiclient"
	"github.com/danielhkuo/quickly-order/auth"
	"github.com/danielhkuo/quickly-order/cliparse"
	"github.com/danielhkuo/quickly-order/db"
)

// Env is everything a terminal app needs after startup.
type Env struct {
	Config cliparse.Config
	Args   []string
	DB     *sql.DB
	Store  *db.Store
	Tokens *auth.TokenStore
	Client *apiclient.Client
}

// Setup loads .env, parses flags, configures logging, opens the state
// database and builds the API client. onLogout runs when the client gives
// up on a session; it may be nil.
func Setup(app string, args []string, logOutput io.Writer, onLogout func()) (*Env, error) {
	if err := cliparse.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg, rest, err := cliparse.ParseFlags(app, args)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	if logOutput == nil {
		logOutput = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: level})))

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	slog.Debug("state database ready", "type", cfg.DatabaseType)

	store := db.NewStore(conn)
	tokens := auth.NewTokenStore(store)

	opts := []apiclient.Option{apiclient.WithTokens(tokens)}
	if onLogout != nil {
		opts = append(opts, apiclient.WithLogoutHandler(onLogout))
	}

	return &Env{
		Config: cfg,
		Args:   rest,
		DB:     conn,
		Store:  store,
		Tokens: tokens,
		Client: apiclient.New(cfg.APIURL, opts...),
	}, nil
}

func (e *Env) Close() error {
	return e.DB.Close()
}
