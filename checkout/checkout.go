// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/quickly-order/apiclient"
	"github.com/danielhkuo/quickly-order/cart"
	"github.com/danielhkuo/quickly-order/models"
)

// FailedMessage is the banner shown when the server gives no detail.
const FailedMessage = "Failed to create order. Please try again."

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMissingRestaurant = errors.New("restaurant information is missing")
)

var validate = validator.New()

// Form is the customer details step of checkout.
type Form struct {
	CustomerName        string `validate:"required"`
	CustomerPhone       string `validate:"required"`
	SpecialInstructions string
}

var fieldMessages = map[string]string{
	"CustomerName":  "Name is required",
	"CustomerPhone": "Phone number is required",
}

// ValidationError holds one inline message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// Trimmed returns the form with surrounding whitespace removed.
func (f Form) Trimmed() Form {
	return Form{
		CustomerName:        strings.TrimSpace(f.CustomerName),
		CustomerPhone:       strings.TrimSpace(f.CustomerPhone),
		SpecialInstructions: strings.TrimSpace(f.SpecialInstructions),
	}
}

// Validate checks the trimmed form and returns a *ValidationError.
func (f Form) Validate() error {
	err := validate.Struct(f.Trimmed())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}

// BuildRequest turns the cart and form into an order submission. It never
// touches the network.
func BuildRequest(c *cart.Cart, form Form) (models.CreateOrderRequest, error) {
	if err := form.Validate(); err != nil {
		return models.CreateOrderRequest{}, err
	}

	items := c.Items()
	if len(items) == 0 {
		return models.CreateOrderRequest{}, ErrEmptyCart
	}

	restaurant, ok := c.Restaurant()
	if !ok {
		return models.CreateOrderRequest{}, ErrMissingRestaurant
	}

	form = form.Trimmed()
	req := models.CreateOrderRequest{
		Restaurant:          restaurant,
		CustomerName:        form.CustomerName,
		CustomerPhone:       form.CustomerPhone,
		SpecialInstructions: form.SpecialInstructions,
		Items:               make([]models.OrderItemRequest, 0, len(items)),
	}
	if table, ok := c.Table(); ok {
		req.TableID = &table
	}
	for _, item := range items {
		req.Items = append(req.Items, models.OrderItemRequest{
			MenuItemID:          item.MenuItem.ID,
			Quantity:            item.Quantity,
			SpecialInstructions: item.SpecialInstructions,
		})
	}
	return req, nil
}

// OrderCreator submits orders. apiclient.CustomerAPI satisfies it.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error)
}

// Submit validates locally, places the order and clears the cart on success.
// On failure the cart is left as it was.
func Submit(ctx context.Context, api OrderCreator, c *cart.Cart, form Form) (models.Order, error) {
	req, err := BuildRequest(c, form)
	if err != nil {
		return models.Order{}, err
	}

	order, err := api.CreateOrder(ctx, req)
	if err != nil {
		slog.Warn("order submission failed", "restaurant", req.Restaurant, "error", err)
		return models.Order{}, err
	}

	c.Clear()
	slog.Info("order placed", "order_number", order.OrderNumber, "items", len(req.Items), "total", order.TotalAmount)
	return order, nil
}

// Message is the banner text for a Submit error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "Your cart is empty"
	case errors.Is(err, ErrMissingRestaurant):
		return "Restaurant information is missing"
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return apiclient.Message(err, FailedMessage)
}
