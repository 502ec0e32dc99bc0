// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/danielhkuo/quickly-order/db"
)

// memStorage is an in-memory Storage
type memStorage map[string]string

func (m memStorage) Get(ctx context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", db.ErrNotFound
	}
	return v, nil
}

func (m memStorage) Set(ctx context.Context, key, value string) error {
	m[key] = value
	return nil
}

func (m memStorage) Delete(ctx context.Context, key string) error {
	delete(m, key)
	return nil
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	storage := memStorage{}
	store := NewTokenStore(storage)

	access, err := store.AccessToken(ctx)
	if err != nil || access != "" {
		t.Fatalf("Expected no access token, got %q (err=%v)", access, err)
	}

	if err := store.SetTokens(ctx, "a1", "r1"); err != nil {
		t.Fatal(err)
	}
	if storage[AccessTokenKey] != "a1" || storage[RefreshTokenKey] != "r1" {
		t.Errorf("Tokens should be stored under separate keys, got %v", storage)
	}

	if err := store.SetAccessToken(ctx, "a2"); err != nil {
		t.Fatal(err)
	}
	access, _ = store.AccessToken(ctx)
	refresh, _ := store.RefreshToken(ctx)
	if access != "a2" || refresh != "r1" {
		t.Errorf("Expected a2/r1, got %s/%s", access, refresh)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if len(storage) != 0 {
		t.Errorf("Expected storage empty after Clear, got %v", storage)
	}
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    42,
		"token_type": "access",
		"exp":        exp.Unix(),
	}).SignedString([]byte("any-secret"))
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("ParseClaims failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("Expected user 42, got %d", claims.UserID)
	}
	if claims.TokenType != "access" {
		t.Errorf("Expected token_type access, got %s", claims.TokenType)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("Expected exp %v, got %v", exp, claims.ExpiresAt)
	}
	if claims.Expired(time.Now()) {
		t.Error("Token should not be expired yet")
	}
	if !claims.Expired(exp.Add(time.Second)) {
		t.Error("Token should be expired after exp")
	}
}

func TestParseClaims_InvalidFormat(t *testing.T) {
	tests := []string{"", "not-a-jwt", "a.b"}
	for _, token := range tests {
		if _, err := ParseClaims(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ParseClaims(%q): expected ErrInvalidToken, got %v", token, err)
		}
	}
}
