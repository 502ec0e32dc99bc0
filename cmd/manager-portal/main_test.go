// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-order/appenv"
	"github.com/danielhkuo/quickly-order/models"
	"github.com/danielhkuo/quickly-order/testutil"
)

type harness struct {
	t     *testing.T
	fake  *testutil.FakeAPI
	dbURL string
	user  string
	pass  string
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:     t,
		fake:  testutil.NewFakeAPI(t),
		dbURL: "file:" + filepath.Join(t.TempDir(), "manager.db"),
		user:  testutil.ManagerUsername,
		pass:  testutil.ManagerPassword,
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	flags := []string{
		"-api", h.fake.URL, "-t", "sqlite", "-d", h.dbURL,
		"-user", h.user, "-password", h.pass, "-currency", "NRS",
	}
	env, err := appenv.Setup("manager-portal", append(flags, args...), io.Discard, nil)
	if err != nil {
		h.t.Fatalf("Setup failed: %v", err)
	}
	defer env.Close()

	var out bytes.Buffer
	err = run(context.Background(), env, &out)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("%v failed: %v", args, err)
	}
	return out
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestLoginRequired(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run("orders"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("Expected errNotLoggedIn, got %v", err)
	}
	if h.fake.TotalCalls() != 0 {
		t.Errorf("Expected no server calls before login, got %d", h.fake.TotalCalls())
	}
}

func TestLogin_KitchenStaffRejected(t *testing.T) {
	h := newHarness(t)
	h.user, h.pass = testutil.KitchenUsername, testutil.KitchenPassword

	if _, err := h.run("login"); !errors.Is(err, errNotManager) {
		t.Fatalf("Expected errNotManager, got %v", err)
	}
	if _, err := h.run("whoami"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("Rejected login must not leave a session, got %v", err)
	}
}

func TestLogin_BadPassword(t *testing.T) {
	h := newHarness(t)
	h.pass = "wrong"

	_, err := h.run("login")
	if err == nil {
		t.Fatal("Expected login failure")
	}
	if strings.Contains(err.Error(), "refresh") {
		t.Errorf("Login failure must not mention refresh: %v", err)
	}
}

func TestSessionCommands(t *testing.T) {
	h := newHarness(t)

	assertContains(t, h.mustRun("login"), "Logged in as manager")
	assertContains(t, h.mustRun("whoami"), "manager (RESTAURANT_MANAGER)", "Restaurant: Test Bistro", "Session:    ends", "from now")
	assertContains(t, h.mustRun("profile", "-first", "Sita", "-email", "sita@example.com"),
		"Profile updated", "Name:       Sita", "Email:      sita@example.com")

	assertContains(t, h.mustRun("logout"), "Logged out")
	if got := len(h.fake.LoggedOut()); got != 1 {
		t.Errorf("Expected refresh token sent to logout once, got %d", got)
	}
	if _, err := h.run("orders"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("Expected errNotLoggedIn after logout, got %v", err)
	}
}

func TestSessionExpired(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login")

	h.fake.ExpireAccessTokens()
	h.fake.FailRefresh(true)

	_, err := h.run("orders")
	if !errors.Is(err, errExpired) {
		t.Fatalf("Expected errExpired, got %v", err)
	}
	if _, err := h.run("orders"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("Expired session should be cleared, got %v", err)
	}
}

func TestOrdersAndAdvance(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login")

	pending := h.fake.AddOrder(testutil.TestOrder(0, models.StatusPending, 2*time.Minute))
	served := h.fake.AddOrder(testutil.TestOrder(0, models.StatusServed, time.Hour))

	assertContains(t, h.mustRun("orders"), pending.OrderNumber, served.OrderNumber, "Confirm (CONFIRMED)")

	out := h.mustRun("orders", "-status", "served")
	if strings.Contains(out, pending.OrderNumber) {
		t.Errorf("Status filter leaked pending order:\n%s", out)
	}

	assertContains(t, h.mustRun("advance", fmt.Sprint(pending.ID)), "is now CONFIRMED")
	if o, _ := h.fake.Order(pending.OrderNumber); o.Status != models.StatusConfirmed {
		t.Errorf("Expected CONFIRMED on server, got %s", o.Status)
	}

	_, err := h.run("advance", fmt.Sprint(served.ID))
	if err == nil || !strings.Contains(err.Error(), "cannot be advanced") {
		t.Errorf("Expected served order to be final, got %v", err)
	}
	if _, err := h.run("advance", "9999"); err == nil {
		t.Error("Expected error for unknown order")
	}

	assertContains(t, h.mustRun("board"), "CONFIRMED (1)", "NEW ORDER (0)")
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login")

	assertContains(t, h.mustRun("stats"), "Dashboard (All time)", "Total orders")
	assertContains(t, h.mustRun("stats", "-from", "2025-01-01", "-to", "2025-01-31"), "2025-01-01 to 2025-01-31")

	if _, err := h.run("stats", "-from", "yesterday"); err == nil {
		t.Error("Expected invalid date error")
	}
}

func TestMenuCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login")

	assertContains(t, h.mustRun("menu", "add", "-name", "Mango Lassi", "-price", "3.50", "-prep", "5"),
		"Created menu item", "Mango Lassi", "NRS 3.50")

	if _, err := h.run("menu", "add", "-name", "Nothing"); err == nil {
		t.Error("Expected error without price")
	}
	if _, err := h.run("menu", "add", "-name", "Bad", "-price", "abc"); err == nil {
		t.Error("Expected error for invalid price")
	}

	assertContains(t, h.mustRun("menu", "edit", "2", "-price", "6.00"), "Veg Chowmein", "NRS 6.00")
	h.mustRun("menu", "available", "3", "on")
	h.mustRun("menu", "special", "1", "off")
	h.mustRun("menu", "delete", "2")

	out := h.mustRun("menu", "list")
	assertContains(t, out, "Mango Lassi", "Thukpa")
	if strings.Contains(out, "Veg Chowmein") {
		t.Errorf("Deleted item still listed:\n%s", out)
	}

	assertContains(t, h.mustRun("categories"), "Mains")

	if _, err := h.run("menu", "special", "1", "maybe"); !errors.Is(err, errUsage) {
		t.Errorf("Expected usage error, got %v", err)
	}
}

func TestRestaurantCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login")

	assertContains(t, h.mustRun("restaurant"), "Test Bistro (test-bistro)")
	assertContains(t, h.mustRun("restaurant", "update", "-name", "New Bistro", "-phone", "01-555"),
		"Restaurant updated", "New Bistro (test-bistro)", "01-555")
}

func TestTableCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login")

	assertContains(t, h.mustRun("tables", "add", "T2", "-capacity", "6"), "Created table T2")
	assertContains(t, h.mustRun("tables", "list"), "T1", "T2", "http://localhost:5173/qr/"+testutil.TableQRCode)

	out := h.mustRun("tables", "edit", "1", "-active=false")
	assertContains(t, out, "T1", "no")

	out = h.mustRun("tables", "regen", "1")
	if strings.Contains(out, testutil.TableQRCode) {
		t.Errorf("Expected a new QR code:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "t1.png")
	assertContains(t, h.mustRun("tables", "qr", "1", "-o", path), "Saved QR code")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(data, testutil.FakeQRImage) {
		t.Errorf("Saved image mismatch: %q", data)
	}

	h.mustRun("tables", "delete", "1")
	if strings.Contains(h.mustRun("tables", "list"), "T1") {
		t.Error("Deleted table still listed")
	}
}

func TestUsage(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run(); !errors.Is(err, errUsage) {
		t.Errorf("Expected usage error with no command, got %v", err)
	}
	h.mustRun("login")
	for _, args := range [][]string{{"bogus"}, {"menu"}, {"tables", "qr", "1"}, {"advance", "x"}} {
		if _, err := h.run(args...); !errors.Is(err, errUsage) {
			t.Errorf("%v: expected usage error, got %v", args, err)
		}
	}
}
