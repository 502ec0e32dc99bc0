// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/danielhkuo/quickly-order/db"
)

// Storage keys for the token pair
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

var ErrInvalidToken = errors.New("invalid token format")

// Storage is the persisted key/value store. *db.Store satisfies it.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// TokenStore keeps the access/refresh pair under separate keys.
type TokenStore struct {
	storage Storage
}

func NewTokenStore(storage Storage) *TokenStore {
	return &TokenStore{storage: storage}
}

func (s *TokenStore) get(ctx context.Context, key string) (string, error) {
	value, err := s.storage.Get(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return "", nil
	}
	return value, err
}

// AccessToken returns the stored access token, or "" when signed out.
func (s *TokenStore) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, AccessTokenKey)
}

// RefreshToken returns the stored refresh token, or "" when signed out.
func (s *TokenStore) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, RefreshTokenKey)
}

// SetTokens stores a fresh pair after login.
func (s *TokenStore) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.storage.Set(ctx, AccessTokenKey, access); err != nil {
		return err
	}
	return s.storage.Set(ctx, RefreshTokenKey, refresh)
}

// SetAccessToken replaces the access token after a refresh.
func (s *TokenStore) SetAccessToken(ctx context.Context, access string) error {
	return s.storage.Set(ctx, AccessTokenKey, access)
}

// Clear removes both tokens.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, AccessTokenKey); err != nil {
		return err
	}
	return s.storage.Delete(ctx, RefreshTokenKey)
}

// Claims are the fields the client reads out of an access token.
type Claims struct {
	UserID    int64
	TokenType string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp has passed. Tokens without exp never expire.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims decodes a JWT without verifying its signature. The server
// remains the authority; this is for display and diagnostics only.
func ParseClaims(token string) (Claims, error) {
	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var c Claims
	if v, ok := mc["user_id"].(float64); ok {
		c.UserID = int64(v)
	}
	if v, ok := mc["token_type"].(string); ok {
		c.TokenType = v
	}
	if v, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(v), 0)
	}
	return c, nil
}
