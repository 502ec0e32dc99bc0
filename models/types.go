// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Order status constants
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusPreparing = "PREPARING"
	StatusReady     = "READY"
	StatusServed    = "SERVED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// User role constants
const (
	RoleSuperAdmin        = "SUPER_ADMIN"
	RoleRestaurantManager = "RESTAURANT_MANAGER"
	RoleKitchenStaff      = "KITCHEN_STAFF"
)

// Menu types

type MenuItem struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Price           string   `json:"price"`
	Order           int      `json:"order"`
	Description     string   `json:"description"`
	Image           *string  `json:"image"`
	Category        *int64   `json:"category,omitempty"`
	IsAvailable     bool     `json:"is_available"`
	IsSpecialOfDay  bool     `json:"is_special_of_day"`
	PreparationTime int      `json:"preparation_time"`
	DietaryTags     []string `json:"dietary_tags,omitempty"`
	Allergens       []string `json:"allergens,omitempty"`
}

type MenuCategory struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Order int        `json:"order"`
	Image *string    `json:"image"`
	Items []MenuItem `json:"items"`
}

type MenuGroup struct {
	ID         int64          `json:"id"`
	Type       string         `json:"type"`
	Order      int            `json:"order"`
	Categories []MenuCategory `json:"categories"`
}

type Restaurant struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Slug       string      `json:"slug"`
	Address    string      `json:"address"`
	Phone      string      `json:"phone"`
	Logo       *string     `json:"logo"`
	MenuGroups []MenuGroup `json:"menu_groups,omitempty"`
}

// MenuItems flattens the nested menu tree in display order.
func (r Restaurant) MenuItems() []MenuItem {
	var items []MenuItem
	for _, g := range r.MenuGroups {
		for _, c := range g.Categories {
			items = append(items, c.Items...)
		}
	}
	return items
}

// FindMenuItem looks up a menu item anywhere in the menu tree.
func (r Restaurant) FindMenuItem(id int64) (MenuItem, bool) {
	for _, item := range r.MenuItems() {
		if item.ID == id {
			return item, true
		}
	}
	return MenuItem{}, false
}

type Table struct {
	ID          int64   `json:"id"`
	Restaurant  int64   `json:"restaurant"`
	TableNumber string  `json:"table_number"`
	Capacity    int     `json:"capacity"`
	IsActive    bool    `json:"is_active"`
	QRCode      string  `json:"qr_code"`
	QRCodeImage *string `json:"qr_code_image,omitempty"`
}

// QRResolution is the answer to a scanned table code.
type QRResolution struct {
	RestaurantID int64  `json:"restaurant_id"`
	TableID      *int64 `json:"table_id,omitempty"`
}

// Cart types

type CartItem struct {
	MenuItem            MenuItem `json:"menuItem"`
	Quantity            int      `json:"quantity"`
	SpecialInstructions string   `json:"specialInstructions"`
}

// Order types

type ItemSnapshot struct {
	Name            string  `json:"name"`
	Price           string  `json:"price"`
	PreparationTime int     `json:"preparation_time"`
	Image           *string `json:"image,omitempty"`
}

type OrderItem struct {
	ID                  int64        `json:"id"`
	MenuItem            int64        `json:"menu_item"`
	MenuItemSnapshot    ItemSnapshot `json:"menu_item_snapshot"`
	Quantity            int          `json:"quantity"`
	UnitPrice           string       `json:"unit_price"`
	Subtotal            string       `json:"subtotal"`
	SpecialInstructions string       `json:"special_instructions"`
}

type Order struct {
	ID                  int64       `json:"id"`
	OrderNumber         string      `json:"order_number"`
	Restaurant          int64       `json:"restaurant"`
	Table               *int64      `json:"table"`
	TableNumber         string      `json:"table_number,omitempty"`
	Status              string      `json:"status"`
	TotalAmount         string      `json:"total_amount"`
	CustomerName        string      `json:"customer_name"`
	CustomerPhone       string      `json:"customer_phone"`
	SpecialInstructions string      `json:"special_instructions"`
	Items               []OrderItem `json:"items"`
	CreatedAt           time.Time   `json:"created_at"`
	ConfirmedAt         *time.Time  `json:"confirmed_at"`
	PreparedAt          *time.Time  `json:"prepared_at"`
	ReadyAt             *time.Time  `json:"ready_at"`
	ServedAt            *time.Time  `json:"served_at"`
	CompletedAt         *time.Time  `json:"completed_at"`
}

// OrdersByStatus is the kitchen kanban payload.
type OrdersByStatus struct {
	Pending   []Order `json:"PENDING"`
	Confirmed []Order `json:"CONFIRMED"`
	Preparing []Order `json:"PREPARING"`
	Ready     []Order `json:"READY"`
}

// All returns every order in the payload, column by column.
func (o OrdersByStatus) All() []Order {
	all := make([]Order, 0, len(o.Pending)+len(o.Confirmed)+len(o.Preparing)+len(o.Ready))
	all = append(all, o.Pending...)
	all = append(all, o.Confirmed...)
	all = append(all, o.Preparing...)
	all = append(all, o.Ready...)
	return all
}

type OrderStats struct {
	TotalOrders       int         `json:"total_orders"`
	PendingOrders     int         `json:"pending_orders"`
	ConfirmedOrders   int         `json:"confirmed_orders"`
	PreparingOrders   int         `json:"preparing_orders"`
	ReadyOrders       int         `json:"ready_orders"`
	ServedOrders      int         `json:"served_orders"`
	CompletedOrders   int         `json:"completed_orders"`
	CancelledOrders   int         `json:"cancelled_orders"`
	TotalRevenue      json.Number `json:"total_revenue"`
	AverageOrderValue json.Number `json:"average_order_value"`
	DateFrom          *string     `json:"date_from"`
	DateTo            *string     `json:"date_to"`
}

// Request types

type OrderItemRequest struct {
	MenuItemID          int64  `json:"menu_item_id"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

type CreateOrderRequest struct {
	Restaurant          string             `json:"restaurant"`
	TableID             *int64             `json:"table_id,omitempty"`
	Items               []OrderItemRequest `json:"items"`
	CustomerName        string             `json:"customer_name"`
	CustomerPhone       string             `json:"customer_phone"`
	SpecialInstructions string             `json:"special_instructions"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type MarkSpecialRequest struct {
	IsSpecial bool `json:"is_special"`
}

type ToggleAvailabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

// MenuItemInput is the manager create/update body. Nil fields are left untouched on update.
type MenuItemInput struct {
	Name            *string  `json:"name,omitempty"`
	Price           *string  `json:"price,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Category        *int64   `json:"category,omitempty"`
	IsAvailable     *bool    `json:"is_available,omitempty"`
	PreparationTime *int     `json:"preparation_time,omitempty"`
	DietaryTags     []string `json:"dietary_tags,omitempty"`
	Allergens       []string `json:"allergens,omitempty"`
}

type TableInput struct {
	TableNumber string `json:"table_number"`
	Capacity    int    `json:"capacity"`
	IsActive    bool   `json:"is_active"`
}

type RestaurantInput struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

type ProfileInput struct {
	Email       *string `json:"email,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// Response types

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type LoginResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

type RestaurantRef struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Slug string  `json:"slug"`
	Logo *string `json:"logo,omitempty"`
}

type User struct {
	ID          int64          `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name,omitempty"`
	LastName    string         `json:"last_name,omitempty"`
	Role        string         `json:"role"`
	PhoneNumber string         `json:"phone_number,omitempty"`
	Restaurant  *RestaurantRef `json:"restaurant"`
}

// List decodes a list endpoint answering either a bare array or a
// paginated {"results": [...]} envelope.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return err
		}
		*l = page.Results
		return nil
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// Error response

type ErrorResponse struct {
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}
