// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cart is the customer's in-progress order.

# Lifecycle

	c, err := cart.Load(ctx, store) // restore on app start
	c.SetRestaurant("7")
	c.AddItem(item, 2)
	c.UpdateQuantity(item.ID, 0)    // same as RemoveItem
	c.Clear()                       // after a successful checkout

Every mutation writes a JSON snapshot under StorageKey, so a restart restores
the cart. Persistence failures are logged; mutations themselves never fail.

# Invariants

  - one entry per menu item
  - every entry has quantity >= 1

# Totals

TotalItems sums quantities. TotalPrice parses each price string with
shopspring/decimal on every call, so "10.00"×2 + "5.50"×1 is exactly 25.50.
*/
package cart
