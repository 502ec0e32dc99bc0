// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/danielhkuo/quickly-order/models"
)

// CustomerAPI covers the public menu and ordering endpoints.
type CustomerAPI struct {
	c *Client
}

func (c *Client) Customer() CustomerAPI {
	return CustomerAPI{c: c}
}

func (a CustomerAPI) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	var list models.List[models.Restaurant]
	if err := a.c.do(ctx, http.MethodGet, "/restaurants/", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Restaurant fetches a restaurant with its full menu tree. idOrSlug is
// whatever the QR landing or the cart recorded.
func (a CustomerAPI) Restaurant(ctx context.Context, idOrSlug string) (models.Restaurant, error) {
	var r models.Restaurant
	err := a.c.do(ctx, http.MethodGet, "/restaurants/"+url.PathEscape(idOrSlug)+"/", nil, &r)
	return r, err
}

// ResolveQR maps a scanned table code to its restaurant and table.
func (a CustomerAPI) ResolveQR(ctx context.Context, code string) (models.QRResolution, error) {
	var res models.QRResolution
	err := a.c.do(ctx, http.MethodGet, "/qr/"+url.PathEscape(code)+"/", nil, &res)
	return res, err
}

func (a CustomerAPI) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error) {
	var order models.Order
	err := a.c.do(ctx, http.MethodPost, "/orders/", req, &order)
	return order, err
}

// Order fetches an order by its public order number.
func (a CustomerAPI) Order(ctx context.Context, orderNumber string) (models.Order, error) {
	var order models.Order
	err := a.c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderNumber)+"/", nil, &order)
	return order, err
}
