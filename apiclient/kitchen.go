// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielhkuo/quickly-order/models"
)

// KitchenAPI covers the kitchen staff endpoints.
type KitchenAPI struct {
	c *Client
}

func (c *Client) Kitchen() KitchenAPI {
	return KitchenAPI{c: c}
}

// Orders lists the kitchen's active orders.
func (a KitchenAPI) Orders(ctx context.Context) ([]models.Order, error) {
	var list models.List[models.Order]
	if err := a.c.do(ctx, http.MethodGet, "/kitchen/orders/", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// OrdersByStatus fetches active orders grouped by status.
func (a KitchenAPI) OrdersByStatus(ctx context.Context) (models.OrdersByStatus, error) {
	var grouped models.OrdersByStatus
	err := a.c.do(ctx, http.MethodGet, "/kitchen/orders/by_status/", nil, &grouped)
	return grouped, err
}

func (a KitchenAPI) Order(ctx context.Context, id int64) (models.Order, error) {
	var order models.Order
	err := a.c.do(ctx, http.MethodGet, fmt.Sprintf("/kitchen/orders/%d/", id), nil, &order)
	return order, err
}

func (a KitchenAPI) UpdateOrderStatus(ctx context.Context, id int64, status string) (models.Order, error) {
	var order models.Order
	err := a.c.do(ctx, http.MethodPatch, fmt.Sprintf("/kitchen/orders/%d/update_status/", id),
		models.UpdateStatusRequest{Status: status}, &order)
	return order, err
}
