// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-order/kanban"
	"github.com/danielhkuo/quickly-order/models"
	"github.com/danielhkuo/quickly-order/status"
)

// BoardOptions control the kitchen board header.
type BoardOptions struct {
	SoundEnabled bool
	Color        bool
}

// ActiveOrders is the board subtitle, e.g. "3 active orders".
func ActiveOrders(n int) string {
	return plural(n, "active order", "active orders")
}

// NewOrdersBanner is the alert shown while orders wait in PENDING. It is
// empty when there are none.
func NewOrdersBanner(pending int) string {
	if pending == 0 {
		return ""
	}
	return plural(pending, "new order", "new orders") + "!"
}

// KitchenBoard renders the four columns one after another.
func KitchenBoard(w io.Writer, b kanban.Board, now time.Time, opts BoardOptions) {
	sound := "Sound Off"
	if opts.SoundEnabled {
		sound = "Sound On"
	}
	fmt.Fprintf(w, "Kitchen Display  %s  [%s]  Live\n", ActiveOrders(b.Total()), sound)
	if banner := NewOrdersBanner(b.Count(models.StatusPending)); banner != "" {
		fmt.Fprintf(w, "*** %s ***\n", banner)
	}

	for _, col := range kanban.Columns {
		orders := b.Column(col)
		header := fmt.Sprintf("%s (%d)", strings.ToUpper(status.KitchenLabel(col)), len(orders))

		fmt.Fprintln(w)
		fmt.Fprintln(w, Paint(status.ToneOf(col), header, opts.Color))
		fmt.Fprintln(w, strings.Repeat("-", len(header)))

		if len(orders) == 0 {
			fmt.Fprintln(w, "  No orders")
			continue
		}
		for _, o := range orders {
			KitchenCard(w, o, now)
		}
	}
}

// KitchenCard renders a single order card.
func KitchenCard(w io.Writer, o models.Order, now time.Time) {
	urgent := status.IsUrgent(o, now)

	fmt.Fprintf(w, "  #%s", ShortOrderNumber(o.OrderNumber))
	if o.TableNumber != "" {
		fmt.Fprintf(w, "  %s", o.TableNumber)
	}
	fmt.Fprintf(w, "  %s  %s\n", Clock(o.CreatedAt), status.Elapsed(o.CreatedAt, now))

	for _, item := range o.Items {
		fmt.Fprintf(w, "    %dx %s (%dm)\n", item.Quantity, item.MenuItemSnapshot.Name, item.MenuItemSnapshot.PreparationTime)
		if item.SpecialInstructions != "" {
			fmt.Fprintf(w, "       ! %s\n", item.SpecialInstructions)
		}
	}

	if o.SpecialInstructions != "" {
		fmt.Fprintf(w, "    Note: %s\n", o.SpecialInstructions)
	}

	var who []string
	if o.CustomerName != "" {
		who = append(who, o.CustomerName)
	}
	if o.CustomerPhone != "" {
		who = append(who, o.CustomerPhone)
	}
	if len(who) > 0 {
		fmt.Fprintf(w, "    %s\n", strings.Join(who, " / "))
	}

	if next, ok := status.Next(o.Status); ok {
		fmt.Fprintf(w, "    [a %d] %s -> %s\n", o.ID, status.ActionLabel(o.Status), next)
	}
	if urgent {
		fmt.Fprintln(w, "    !! Taking longer than expected!")
	}
}
