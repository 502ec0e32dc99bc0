// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kanban

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/quickly-order/models"
	"github.com/danielhkuo/quickly-order/status"
)

var (
	ErrNoNextStatus      = errors.New("order has no next status")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Columns are the board columns in display order.
var Columns = []string{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
}

// Board holds the active orders bucketed by status.
type Board struct {
	columns map[string][]models.Order
}

// Partition buckets orders by their own status field. Orders that are
// SERVED, COMPLETED, CANCELLED or unrecognised appear in no column.
func Partition(orders []models.Order) Board {
	b := Board{columns: make(map[string][]models.Order, len(Columns))}
	for _, col := range Columns {
		b.columns[col] = []models.Order{}
	}
	for _, o := range orders {
		if _, ok := b.columns[o.Status]; !ok {
			continue
		}
		b.columns[o.Status] = append(b.columns[o.Status], o)
	}
	return b
}

// FromGrouped re-buckets the server's by_status payload. The status field
// of each order wins over the key it was listed under.
func FromGrouped(g models.OrdersByStatus) Board {
	return Partition(g.All())
}

// Column returns the orders in one column.
func (b Board) Column(status string) []models.Order {
	return b.columns[status]
}

// Count returns the number of orders in one column.
func (b Board) Count(status string) int {
	return len(b.columns[status])
}

// Total returns the number of orders across all columns.
func (b Board) Total() int {
	total := 0
	for _, orders := range b.columns {
		total += len(orders)
	}
	return total
}

// Find locates an order on the board by ID.
func (b Board) Find(orderID int64) (models.Order, bool) {
	for _, col := range Columns {
		for _, o := range b.columns[col] {
			if o.ID == orderID {
				return o, true
			}
		}
	}
	return models.Order{}, false
}

// CheckTransition allows only the single next step in the progression.
func CheckTransition(from, to string) error {
	next, ok := status.Next(from)
	if !ok {
		return fmt.Errorf("%w: %s is final", ErrNoNextStatus, from)
	}
	if to != next {
		return fmt.Errorf("%w: %s → %s (expected %s)", ErrIllegalTransition, from, to, next)
	}
	return nil
}

// StatusUpdater is the server call behind a status advance.
type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (models.Order, error)
}

// Advance moves an order exactly one step forward.
func Advance(ctx context.Context, u StatusUpdater, o models.Order) (models.Order, error) {
	next, ok := status.Next(o.Status)
	if !ok {
		return models.Order{}, fmt.Errorf("%w: order %s is %s", ErrNoNextStatus, o.OrderNumber, o.Status)
	}

	updated, err := u.UpdateOrderStatus(ctx, o.ID, next)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to advance order %s: %w", o.OrderNumber, err)
	}

	slog.Info("order advanced", "order", o.OrderNumber, "from", o.Status, "to", next)
	return updated, nil
}

// NewOrderDetector decides when the new-order bell should ring.
//
// It compares only the PENDING count between observations, so one order
// leaving PENDING while another arrives in the same interval goes unnoticed.
type NewOrderDetector struct {
	previous int
	seen     bool
}

// Observe records the board and reports whether the PENDING count grew.
// The first observation never alerts.
func (d *NewOrderDetector) Observe(b Board) bool {
	current := b.Count(models.StatusPending)
	alert := d.seen && current > d.previous
	d.previous = current
	d.seen = true
	return alert
}
