// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the wire types shared by the customer, kitchen and
manager clients.

# Menu Types

  - Restaurant: restaurant profile with the nested menu tree
  - MenuGroup, MenuCategory: menu tree levels
  - MenuItem: price as a decimal string, prep time, dietary tags, allergens
  - Table, QRResolution: table records and scanned-code lookups

# Order Types

  - Order: status, totals, customer fields, item snapshots and one nullable
    timestamp per status transition
  - OrderItem, ItemSnapshot: frozen copy of the menu item at order time
  - OrdersByStatus: kitchen kanban payload
  - OrderStats: manager dashboard counters

# Request Types

  - CreateOrderRequest, OrderItemRequest: checkout submission
  - UpdateStatusRequest: kitchen/manager status advance
  - LoginRequest, RefreshRequest, LogoutRequest: auth flow
  - MenuItemInput, TableInput, RestaurantInput, ProfileInput: manager edits

# Lists

List endpoints answer either a bare array or a paginated envelope:

	var items models.List[models.MenuItem]
	json.Unmarshal(body, &items) // [...] or {"results": [...]}

# Constants

Order status values:

	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusPreparing = "PREPARING"
	StatusReady     = "READY"
	StatusServed    = "SERVED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
*/
package models
