// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-order/apiclient"
	"github.com/danielhkuo/quickly-order/auth"
	"github.com/danielhkuo/quickly-order/models"
	"github.com/danielhkuo/quickly-order/testutil"
)

type staffClient struct {
	client  *apiclient.Client
	tokens  *auth.TokenStore
	logouts *atomic.Int32
}

func newStaffClient(t *testing.T, fake *testutil.FakeAPI, username, password string) staffClient {
	t.Helper()
	ctx := context.Background()

	tokens := auth.NewTokenStore(testutil.SetupTestStore(t))
	logouts := new(atomic.Int32)
	client := apiclient.New(fake.URL,
		apiclient.WithTokens(tokens),
		apiclient.WithLogoutHandler(func() { logouts.Add(1) }),
	)

	resp, err := client.Auth().Login(ctx, username, password)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := tokens.SetTokens(ctx, resp.Tokens.Access, resp.Tokens.Refresh); err != nil {
		t.Fatalf("Failed to store tokens: %v", err)
	}

	return staffClient{client: client, tokens: tokens, logouts: logouts}
}

func TestClient_AttachesBearerToken(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	sc := newStaffClient(t, fake, testutil.KitchenUsername, testutil.KitchenPassword)

	user, err := sc.client.Auth().Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if user.Username != testutil.KitchenUsername {
		t.Errorf("Expected %s, got %s", testutil.KitchenUsername, user.Username)
	}
	if got := fake.Calls("POST", "/auth/refresh/"); got != 0 {
		t.Errorf("Valid token should not refresh, got %d refresh calls", got)
	}
}

func TestClient_RefreshesOnceAndRetries(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeAPI(t)
	sc := newStaffClient(t, fake, testutil.KitchenUsername, testutil.KitchenPassword)

	oldAccess, _ := sc.tokens.AccessToken(ctx)
	fake.ExpireAccessTokens()

	if _, err := sc.client.Kitchen().OrdersByStatus(ctx); err != nil {
		t.Fatalf("Expected retried request to succeed, got %v", err)
	}

	if got := fake.Calls("POST", "/auth/refresh/"); got != 1 {
		t.Errorf("Expected exactly 1 refresh call, got %d", got)
	}
	if got := fake.Calls("GET", "/kitchen/orders/by_status/"); got != 2 {
		t.Errorf("Expected original request plus 1 retry, got %d", got)
	}

	newAccess, _ := sc.tokens.AccessToken(ctx)
	if newAccess == "" || newAccess == oldAccess {
		t.Error("Refreshed access token should be persisted")
	}
	if sc.logouts.Load() != 0 {
		t.Error("Successful refresh must not log out")
	}
}

func TestClient_SecondUnauthorizedIsSurfaced(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeAPI(t)
	sc := newStaffClient(t, fake, testutil.KitchenUsername, testutil.KitchenPassword)

	fake.DenyAll(true)

	_, err := sc.client.Kitchen().Orders(ctx)
	if !apiclient.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("Expected 401 APIError, got %v", err)
	}

	if got := fake.Calls("POST", "/auth/refresh/"); got != 1 {
		t.Errorf("Expected exactly 1 refresh call, got %d", got)
	}
	if got := fake.Calls("GET", "/kitchen/orders/"); got != 2 {
		t.Errorf("Expected exactly 2 attempts, got %d", got)
	}
}

func TestClient_RefreshFailureClearsSession(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeAPI(t)
	sc := newStaffClient(t, fake, testutil.ManagerUsername, testutil.ManagerPassword)

	fake.ExpireAccessTokens()
	fake.FailRefresh(true)

	_, err := sc.client.Manager().Orders(ctx, "")
	if !errors.Is(err, apiclient.ErrSessionExpired) {
		t.Fatalf("Expected ErrSessionExpired, got %v", err)
	}

	access, _ := sc.tokens.AccessToken(ctx)
	refresh, _ := sc.tokens.RefreshToken(ctx)
	if access != "" || refresh != "" {
		t.Error("Both tokens should be cleared after refresh failure")
	}
	if sc.logouts.Load() != 1 {
		t.Errorf("Expected logout hook once, got %d", sc.logouts.Load())
	}
	if got := fake.Calls("GET", "/manager/orders/"); got != 1 {
		t.Errorf("Failed refresh must not retry, got %d attempts", got)
	}
}

func TestClient_CancelledRefreshKeepsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh/" {
			select {
			case <-time.After(300 * time.Millisecond):
			case <-r.Context().Done():
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access":"access-new"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
	}))
	defer server.Close()

	tokens := auth.NewTokenStore(testutil.SetupTestStore(t))
	if err := tokens.SetTokens(context.Background(), "access-old", "refresh-ok"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	var logouts atomic.Int32
	client := apiclient.New(server.URL,
		apiclient.WithTokens(tokens),
		apiclient.WithLogoutHandler(func() { logouts.Add(1) }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Auth().Me(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
	if errors.Is(err, apiclient.ErrSessionExpired) {
		t.Error("A cancelled refresh must not expire the session")
	}
	if logouts.Load() != 0 {
		t.Errorf("Logout hook should not run, ran %d times", logouts.Load())
	}

	refresh, _ := tokens.RefreshToken(context.Background())
	access, _ := tokens.AccessToken(context.Background())
	if refresh != "refresh-ok" || access != "access-old" {
		t.Errorf("Tokens should be kept, got access=%q refresh=%q", access, refresh)
	}
}

func TestClient_ConcurrentRefresh(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeAPI(t)
	sc := newStaffClient(t, fake, testutil.KitchenUsername, testutil.KitchenPassword)

	fake.ExpireAccessTokens()

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sc.client.Kitchen().Orders(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Concurrent request failed: %v", err)
		}
	}
	if got := fake.Calls("POST", "/auth/refresh/"); got < 1 || got > 5 {
		t.Errorf("Expected between 1 and 5 refresh calls, got %d", got)
	}
}

func TestClient_LoginFailureIsNotRetried(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	tokens := auth.NewTokenStore(testutil.SetupTestStore(t))
	client := apiclient.New(fake.URL, apiclient.WithTokens(tokens))

	_, err := client.Auth().Login(context.Background(), "chef", "wrong")
	if !apiclient.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("Expected 401, got %v", err)
	}
	if got := apiclient.Message(err, "Login failed"); got != "Invalid credentials" {
		t.Errorf("Expected server detail, got %q", got)
	}
	if got := fake.Calls("POST", "/auth/refresh/"); got != 0 {
		t.Errorf("Login 401 must not refresh, got %d", got)
	}
}

func TestCustomerAPI_OrderFlow(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeAPI(t)
	customer := apiclient.New(fake.URL).Customer()

	restaurants, err := customer.Restaurants(ctx)
	if err != nil {
		t.Fatalf("Restaurants failed: %v", err)
	}
	if len(restaurants) != 1 || restaurants[0].Slug != testutil.RestaurantSlug {
		t.Fatalf("Expected paginated restaurant list, got %+v", restaurants)
	}

	qr, err := customer.ResolveQR(ctx, testutil.TableQRCode)
	if err != nil {
		t.Fatalf("ResolveQR failed: %v", err)
	}
	if qr.TableID == nil || *qr.TableID != 1 {
		t.Errorf("Expected table 1, got %+v", qr)
	}

	r, err := customer.Restaurant(ctx, testutil.RestaurantSlug)
	if err != nil {
		t.Fatalf("Restaurant failed: %v", err)
	}
	if len(r.MenuItems()) != 3 {
		t.Errorf("Expected 3 menu items, got %d", len(r.MenuItems()))
	}

	created, err := customer.CreateOrder(ctx, models.CreateOrderRequest{
		Restaurant:    testutil.RestaurantSlug,
		TableID:       qr.TableID,
		CustomerName:  "Asha",
		CustomerPhone: "9800000000",
		Items: []models.OrderItemRequest{
			{MenuItemID: 1, Quantity: 2},
			{MenuItemID: 2, Quantity: 1, SpecialInstructions: "extra spicy"},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if created.TotalAmount != "25.50" {
		t.Errorf("Expected total 25.50, got %s", created.TotalAmount)
	}
	if created.Status != models.StatusPending {
		t.Errorf("Expected PENDING, got %s", created.Status)
	}

	fetched, err := customer.Order(ctx, created.OrderNumber)
	if err != nil {
		t.Fatalf("Order failed: %v", err)
	}
	if fetched.ID != created.ID || fetched.TableNumber != "T1" {
		t.Errorf("Expected order %d at T1, got %d at %q", created.ID, fetched.ID, fetched.TableNumber)
	}
}

func TestCustomerAPI_Errors(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeAPI(t)
	customer := apiclient.New(fake.URL).Customer()

	_, err := customer.ResolveQR(ctx, "bogus")
	if got := apiclient.Message(err, "fallback"); got != "Invalid QR code" {
		t.Errorf("Expected error key as detail, got %q", got)
	}

	_, err = customer.CreateOrder(ctx, models.CreateOrderRequest{
		Restaurant: testutil.RestaurantSlug,
		Items:      []models.OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", apiErr.StatusCode)
	}
	if len(apiErr.Fields["customer_name"]) != 1 {
		t.Errorf("Expected customer_name field error, got %v", apiErr.Fields)
	}
}

func TestMessage(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{"detail", &apiclient.APIError{StatusCode: 400, Detail: "Table is not active"}, "Table is not active"},
		{"fields", &apiclient.APIError{StatusCode: 400, Fields: map[string][]string{
			"items":         {"Required."},
			"customer_name": {"This field is required."},
		}}, "customer_name: This field is required."},
		{"bare status", &apiclient.APIError{StatusCode: 500}, "Failed to create order. Please try again."},
		{"transport", errors.New("connection refused"), "Failed to create order. Please try again."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := apiclient.Message(tc.err, "Failed to create order. Please try again.")
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
