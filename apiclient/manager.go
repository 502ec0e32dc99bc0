// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/danielhkuo/quickly-order/models"
)

// ManagerAPI covers the restaurant manager endpoints.
type ManagerAPI struct {
	c *Client
}

func (c *Client) Manager() ManagerAPI {
	return ManagerAPI{c: c}
}

// Orders

// Orders lists the restaurant's orders, optionally filtered by status.
func (a ManagerAPI) Orders(ctx context.Context, status string) ([]models.Order, error) {
	path := "/manager/orders/"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}

	var list models.List[models.Order]
	if err := a.c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Stats fetches dashboard counters. Empty dates leave the range open.
func (a ManagerAPI) Stats(ctx context.Context, dateFrom, dateTo string) (models.OrderStats, error) {
	query := url.Values{}
	if dateFrom != "" {
		query.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		query.Set("date_to", dateTo)
	}
	path := "/manager/orders/stats/"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var stats models.OrderStats
	err := a.c.do(ctx, http.MethodGet, path, nil, &stats)
	return stats, err
}

func (a ManagerAPI) UpdateOrderStatus(ctx context.Context, id int64, status string) (models.Order, error) {
	var order models.Order
	err := a.c.do(ctx, http.MethodPatch, fmt.Sprintf("/manager/orders/%d/update_status/", id),
		models.UpdateStatusRequest{Status: status}, &order)
	return order, err
}

// Menu

func (a ManagerAPI) MenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var list models.List[models.MenuItem]
	if err := a.c.do(ctx, http.MethodGet, "/manager/menu-items/", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (a ManagerAPI) CreateMenuItem(ctx context.Context, in models.MenuItemInput) (models.MenuItem, error) {
	var item models.MenuItem
	err := a.c.do(ctx, http.MethodPost, "/manager/menu-items/", in, &item)
	return item, err
}

func (a ManagerAPI) UpdateMenuItem(ctx context.Context, id int64, in models.MenuItemInput) (models.MenuItem, error) {
	var item models.MenuItem
	err := a.c.do(ctx, http.MethodPatch, fmt.Sprintf("/manager/menu-items/%d/", id), in, &item)
	return item, err
}

func (a ManagerAPI) DeleteMenuItem(ctx context.Context, id int64) error {
	return a.c.do(ctx, http.MethodDelete, fmt.Sprintf("/manager/menu-items/%d/", id), nil, nil)
}

// MarkSpecial sets or clears the special-of-the-day flag.
func (a ManagerAPI) MarkSpecial(ctx context.Context, id int64, special bool) (models.MenuItem, error) {
	var item models.MenuItem
	err := a.c.do(ctx, http.MethodPatch, fmt.Sprintf("/manager/menu-items/%d/mark_special/", id),
		models.MarkSpecialRequest{IsSpecial: special}, &item)
	return item, err
}

func (a ManagerAPI) ToggleAvailability(ctx context.Context, id int64, available bool) (models.MenuItem, error) {
	var item models.MenuItem
	err := a.c.do(ctx, http.MethodPatch, fmt.Sprintf("/manager/menu-items/%d/toggle_availability/", id),
		models.ToggleAvailabilityRequest{IsAvailable: available}, &item)
	return item, err
}

func (a ManagerAPI) Categories(ctx context.Context) ([]models.MenuCategory, error) {
	var list models.List[models.MenuCategory]
	if err := a.c.do(ctx, http.MethodGet, "/manager/categories/", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Restaurant

// Restaurant fetches the manager's restaurant. The endpoint answers either
// the object itself or a one-element list.
func (a ManagerAPI) Restaurant(ctx context.Context) (models.Restaurant, error) {
	var raw json.RawMessage
	if err := a.c.do(ctx, http.MethodGet, "/manager/restaurant/", nil, &raw); err != nil {
		return models.Restaurant{}, err
	}

	var list models.List[models.Restaurant]
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], nil
	}

	var r models.Restaurant
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.Restaurant{}, fmt.Errorf("failed to decode restaurant: %w", err)
	}
	return r, nil
}

func (a ManagerAPI) UpdateRestaurant(ctx context.Context, id int64, in models.RestaurantInput) (models.Restaurant, error) {
	var r models.Restaurant
	err := a.c.do(ctx, http.MethodPatch, fmt.Sprintf("/manager/restaurant/%d/", id), in, &r)
	return r, err
}

// Tables

func (a ManagerAPI) Tables(ctx context.Context) ([]models.Table, error) {
	var list models.List[models.Table]
	if err := a.c.do(ctx, http.MethodGet, "/manager/tables/", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (a ManagerAPI) CreateTable(ctx context.Context, in models.TableInput) (models.Table, error) {
	var t models.Table
	err := a.c.do(ctx, http.MethodPost, "/manager/tables/", in, &t)
	return t, err
}

func (a ManagerAPI) UpdateTable(ctx context.Context, id int64, in models.TableInput) (models.Table, error) {
	var t models.Table
	err := a.c.do(ctx, http.MethodPatch, fmt.Sprintf("/manager/tables/%d/", id), in, &t)
	return t, err
}

func (a ManagerAPI) DeleteTable(ctx context.Context, id int64) error {
	return a.c.do(ctx, http.MethodDelete, fmt.Sprintf("/manager/tables/%d/", id), nil, nil)
}

// RegenerateQR issues a new code for the table; the old code stops resolving.
func (a ManagerAPI) RegenerateQR(ctx context.Context, id int64) (models.Table, error) {
	var t models.Table
	err := a.c.do(ctx, http.MethodPost, fmt.Sprintf("/manager/tables/%d/regenerate_qr/", id), nil, &t)
	return t, err
}

// DownloadQR returns the table's QR code image bytes.
func (a ManagerAPI) DownloadQR(ctx context.Context, id int64) ([]byte, error) {
	var img []byte
	err := a.c.do(ctx, http.MethodGet, fmt.Sprintf("/manager/tables/%d/qr_code_download/", id), nil, &img)
	return img, err
}

// QRLandingURL is the customer-facing link encoded in a table's QR code.
func QRLandingURL(origin, code string) string {
	return fmt.Sprintf("%s/qr/%s", origin, url.PathEscape(code))
}
