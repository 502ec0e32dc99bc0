// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/quickly-order/db"
	"github.com/danielhkuo/quickly-order/models"
)

// SetupTestStore opens a fresh SQLite state database in a temp dir
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, "file:"+filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return db.NewStore(conn)
}

// TestMenuItem builds an available menu item
func TestMenuItem(id int64, name, price string, prepMinutes int) models.MenuItem {
	return models.MenuItem{
		ID:              id,
		Name:            name,
		Price:           price,
		IsAvailable:     true,
		PreparationTime: prepMinutes,
	}
}

// TestOrder builds an order created age ago. A zero id leaves ID and
// order number for FakeAPI.AddOrder to assign.
func TestOrder(id int64, status string, age time.Duration, lines ...models.OrderItem) models.Order {
	o := models.Order{
		ID:          id,
		Restaurant:  1,
		Status:      status,
		TotalAmount: "0.00",
		Items:       lines,
		CreatedAt:   time.Now().Add(-age),
	}
	if id != 0 {
		o.OrderNumber = "ORD-TEST-" + strconv.FormatInt(id, 10)
	}
	return o
}

// TestLine builds an order line with the given prep minutes and quantity
func TestLine(name string, prepMinutes, qty int) models.OrderItem {
	return models.OrderItem{
		MenuItemSnapshot: models.ItemSnapshot{Name: name, Price: "1.00", PreparationTime: prepMinutes},
		Quantity:         qty,
		UnitPrice:        "1.00",
		Subtotal:         "1.00",
	}
}

// AssertJSONEqual compares two values by their JSON encoding
func AssertJSONEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	g, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Failed to encode got: %v", err)
	}
	w, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Failed to encode want: %v", err)
	}
	if string(g) != string(w) {
		t.Errorf("JSON mismatch:\n got: %s\nwant: %s", g, w)
	}
}

func jsonNumber(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
