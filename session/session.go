// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/quickly-order/apiclient"
	"github.com/danielhkuo/quickly-order/auth"
	"github.com/danielhkuo/quickly-order/models"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Session is the signed-in staff member: token pair in the persisted store,
// user profile in memory.
type Session struct {
	client *apiclient.Client
	tokens *auth.TokenStore

	mu   sync.RWMutex
	user *models.User
}

func New(client *apiclient.Client, tokens *auth.TokenStore) *Session {
	return &Session{client: client, tokens: tokens}
}

// Login authenticates and persists the token pair.
func (s *Session) Login(ctx context.Context, username, password string) (models.User, error) {
	resp, err := s.client.Auth().Login(ctx, username, password)
	if err != nil {
		return models.User{}, err
	}

	if err := s.tokens.SetTokens(ctx, resp.Tokens.Access, resp.Tokens.Refresh); err != nil {
		return models.User{}, fmt.Errorf("failed to store tokens: %w", err)
	}

	s.mu.Lock()
	s.user = &resp.User
	s.mu.Unlock()

	slog.Info("logged in", "username", resp.User.Username, "role", resp.User.Role)
	return resp.User, nil
}

// Logout tells the server to drop the refresh token and clears local state.
// The server call is best effort; local state is always cleared.
func (s *Session) Logout(ctx context.Context) error {
	refresh, err := s.tokens.RefreshToken(ctx)
	if err == nil && refresh != "" {
		if err := s.client.Auth().Logout(ctx, refresh); err != nil {
			slog.Warn("server logout failed", "error", err)
		}
	}

	s.Forget()
	return s.tokens.Clear(ctx)
}

// Forget drops the in-memory user without touching stored tokens. It is the
// apiclient logout hook: the client has already cleared the tokens.
func (s *Session) Forget() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// FetchUser reloads the profile. Any failure ends the session.
func (s *Session) FetchUser(ctx context.Context) (models.User, error) {
	ok, err := s.IsAuthenticated(ctx)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrNotAuthenticated
	}

	u, err := s.client.Auth().Me(ctx)
	if err != nil {
		s.Forget()
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			slog.Error("failed to clear tokens", "error", clearErr)
		}
		return models.User{}, fmt.Errorf("failed to fetch user: %w", err)
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return u, nil
}

// User returns the cached profile.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether an access token is stored.
func (s *Session) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// Resume restores a session from stored tokens, logging in with the
// credentials only when no usable session exists.
func (s *Session) Resume(ctx context.Context, username, password string) (models.User, error) {
	if ok, err := s.IsAuthenticated(ctx); err != nil {
		return models.User{}, err
	} else if ok {
		u, err := s.FetchUser(ctx)
		if err == nil {
			return u, nil
		}
		slog.Info("stored session rejected", "error", err)
	}

	if username == "" || password == "" {
		return models.User{}, ErrNotAuthenticated
	}
	return s.Login(ctx, username, password)
}
