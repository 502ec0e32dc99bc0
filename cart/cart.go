// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/quickly-order/db"
	"github.com/danielhkuo/quickly-order/models"
)

// StorageKey is the key the cart snapshot is persisted under.
const StorageKey = "customer-cart-storage"

const persistTimeout = 5 * time.Second

// Storage persists the cart snapshot. *db.Store satisfies it.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// snapshot is the persisted form of the cart.
type snapshot struct {
	State struct {
		Items          []models.CartItem `json:"items"`
		RestaurantSlug *string           `json:"restaurantSlug"`
		TableID        *int64            `json:"tableId"`
	} `json:"state"`
	Version int `json:"version"`
}

// Cart holds the customer's selection before checkout.
//
// Entries are unique per menu item and every entry has quantity >= 1.
// The snapshot is written to storage after every mutation.
type Cart struct {
	mu             sync.Mutex
	items          []models.CartItem
	restaurantSlug *string
	tableID        *int64
	storage        Storage
}

// New returns an empty cart. A nil storage keeps the cart in memory only.
func New(storage Storage) *Cart {
	return &Cart{storage: storage}
}

// Load restores the cart persisted in storage, or returns an empty cart.
// A nil storage yields an in-memory cart.
func Load(ctx context.Context, storage Storage) (*Cart, error) {
	c := New(storage)
	if storage == nil {
		return c, nil
	}

	raw, err := storage.Get(ctx, StorageKey)
	if errors.Is(err, db.ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		slog.Warn("discarding unreadable cart snapshot", "error", err)
		return c, nil
	}

	for _, item := range snap.State.Items {
		if item.Quantity < 1 || c.indexOf(item.MenuItem.ID) >= 0 {
			continue
		}
		c.items = append(c.items, item)
	}
	c.restaurantSlug = snap.State.RestaurantSlug
	c.tableID = snap.State.TableID

	return c, nil
}

func (c *Cart) indexOf(menuItemID int64) int {
	for i, item := range c.items {
		if item.MenuItem.ID == menuItemID {
			return i
		}
	}
	return -1
}

// persist writes the snapshot. Callers hold c.mu.
func (c *Cart) persist() {
	if c.storage == nil {
		return
	}

	var snap snapshot
	snap.State.Items = c.items
	if snap.State.Items == nil {
		snap.State.Items = []models.CartItem{}
	}
	snap.State.RestaurantSlug = c.restaurantSlug
	snap.State.TableID = c.tableID

	data, err := json.Marshal(snap)
	if err != nil {
		slog.Error("failed to encode cart", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.storage.Set(ctx, StorageKey, string(data)); err != nil {
		slog.Error("failed to persist cart", "error", err)
	}
}

// AddItem adds qty of a menu item, merging with an existing entry.
// A qty below 1 adds one.
func (c *Cart) AddItem(item models.MenuItem, qty int) {
	if qty < 1 {
		qty = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(item.ID); i >= 0 {
		c.items[i].Quantity += qty
	} else {
		c.items = append(c.items, models.CartItem{MenuItem: item, Quantity: qty})
	}
	c.persist()
}

// RemoveItem deletes an entry. Missing entries are ignored.
func (c *Cart) RemoveItem(menuItemID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(menuItemID)
	c.persist()
}

func (c *Cart) removeLocked(menuItemID int64) {
	if i := c.indexOf(menuItemID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// UpdateQuantity overwrites an entry's quantity; qty <= 0 removes it.
func (c *Cart) UpdateQuantity(menuItemID int64, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if qty <= 0 {
		c.removeLocked(menuItemID)
	} else if i := c.indexOf(menuItemID); i >= 0 {
		c.items[i].Quantity = qty
	}
	c.persist()
}

// UpdateSpecialInstructions overwrites an entry's note. Missing entries are ignored.
func (c *Cart) UpdateSpecialInstructions(menuItemID int64, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(menuItemID); i >= 0 {
		c.items[i].SpecialInstructions = text
	}
	c.persist()
}

// Clear empties the cart and forgets the restaurant and table.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.restaurantSlug = nil
	c.tableID = nil
	c.persist()
}

func (c *Cart) SetRestaurant(slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.restaurantSlug = &slug
	c.persist()
}

func (c *Cart) SetTable(tableID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tableID = &tableID
	c.persist()
}

// Restaurant returns the restaurant the cart is for.
func (c *Cart) Restaurant() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.restaurantSlug == nil {
		return "", false
	}
	return *c.restaurantSlug, true
}

// Table returns the table the cart is for.
func (c *Cart) Table() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tableID == nil {
		return 0, false
	}
	return *c.tableID, true
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Item looks up the entry for a menu item.
func (c *Cart) Item(menuItemID int64) (models.CartItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(menuItemID); i >= 0 {
		return c.items[i], true
	}
	return models.CartItem{}, false
}

// TotalItems is the sum of quantities.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums unit price × quantity, parsing each price string on every
// call. Unparseable prices count as zero.
func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, item := range c.items {
		price, err := decimal.NewFromString(item.MenuItem.Price)
		if err != nil {
			slog.Warn("unparseable menu price", "menu_item", item.MenuItem.ID, "price", item.MenuItem.Price)
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
