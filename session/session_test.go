// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/quickly-order/apiclient"
	"github.com/danielhkuo/quickly-order/auth"
	"github.com/danielhkuo/quickly-order/testutil"
)

func newTestSession(t *testing.T) (*Session, *auth.TokenStore, *testutil.FakeAPI) {
	t.Helper()
	fake := testutil.NewFakeAPI(t)
	tokens := auth.NewTokenStore(testutil.SetupTestStore(t))

	var s *Session
	client := apiclient.New(fake.URL,
		apiclient.WithTokens(tokens),
		apiclient.WithLogoutHandler(func() { s.Forget() }),
	)
	s = New(client, tokens)
	return s, tokens, fake
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s, tokens, _ := newTestSession(t)

	if ok, _ := s.IsAuthenticated(ctx); ok {
		t.Fatal("New session should not be authenticated")
	}

	u, err := s.Login(ctx, testutil.KitchenUsername, testutil.KitchenPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if u.Username != testutil.KitchenUsername {
		t.Errorf("Expected %s, got %s", testutil.KitchenUsername, u.Username)
	}

	if ok, _ := s.IsAuthenticated(ctx); !ok {
		t.Error("Expected authenticated after login")
	}
	if cached, ok := s.User(); !ok || cached.ID != u.ID {
		t.Error("Expected user cached after login")
	}
	if refresh, _ := tokens.RefreshToken(ctx); refresh == "" {
		t.Error("Refresh token should be persisted")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession(t)

	if _, err := s.Login(ctx, testutil.KitchenUsername, "nope"); err == nil {
		t.Fatal("Expected login error")
	}
	if ok, _ := s.IsAuthenticated(ctx); ok {
		t.Error("Failed login must not store tokens")
	}
}

func TestLogout_NotifiesServerAndClears(t *testing.T) {
	ctx := context.Background()
	s, tokens, fake := newTestSession(t)

	s.Login(ctx, testutil.ManagerUsername, testutil.ManagerPassword)
	refresh, _ := tokens.RefreshToken(ctx)

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if got := fake.LoggedOut(); len(got) != 1 || got[0] != refresh {
		t.Errorf("Expected server logout with refresh token, got %v", got)
	}
	if ok, _ := s.IsAuthenticated(ctx); ok {
		t.Error("Expected tokens cleared")
	}
	if _, ok := s.User(); ok {
		t.Error("Expected user cleared")
	}
}

func TestLogout_ServerFailureStillClears(t *testing.T) {
	ctx := context.Background()
	s, _, fake := newTestSession(t)

	s.Login(ctx, testutil.ManagerUsername, testutil.ManagerPassword)
	fake.DenyAll(true)

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout should ignore server errors, got %v", err)
	}
	if ok, _ := s.IsAuthenticated(ctx); ok {
		t.Error("Expected tokens cleared")
	}
}

func TestFetchUser_FailureEndsSession(t *testing.T) {
	ctx := context.Background()
	s, _, fake := newTestSession(t)

	s.Login(ctx, testutil.KitchenUsername, testutil.KitchenPassword)
	fake.ExpireAccessTokens()
	fake.FailRefresh(true)

	if _, err := s.FetchUser(ctx); err == nil {
		t.Fatal("Expected FetchUser error")
	}
	if ok, _ := s.IsAuthenticated(ctx); ok {
		t.Error("Expected session cleared")
	}
	if _, ok := s.User(); ok {
		t.Error("Expected user cleared")
	}
}

func TestFetchUser_NotAuthenticated(t *testing.T) {
	s, _, fake := newTestSession(t)

	if _, err := s.FetchUser(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
	if fake.TotalCalls() != 0 {
		t.Error("No request should be sent without a token")
	}
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	s, _, fake := newTestSession(t)

	if _, err := s.Resume(ctx, "", ""); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated without tokens or credentials, got %v", err)
	}

	if _, err := s.Resume(ctx, testutil.KitchenUsername, testutil.KitchenPassword); err != nil {
		t.Fatalf("Resume with credentials failed: %v", err)
	}
	logins := fake.Calls("POST", "/auth/login/")

	s.Forget()
	u, err := s.Resume(ctx, testutil.KitchenUsername, testutil.KitchenPassword)
	if err != nil {
		t.Fatalf("Resume from stored tokens failed: %v", err)
	}
	if u.Username != testutil.KitchenUsername {
		t.Errorf("Expected %s, got %s", testutil.KitchenUsername, u.Username)
	}
	if got := fake.Calls("POST", "/auth/login/"); got != logins {
		t.Errorf("Stored tokens should be reused, login called %d more times", got-logins)
	}
}
