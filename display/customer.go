// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/quickly-order/models"
	"github.com/danielhkuo/quickly-order/status"
)

// OrderStatus renders the customer tracking page.
func OrderStatus(w io.Writer, o models.Order, currency string) {
	fmt.Fprintf(w, "Order %s\n", o.OrderNumber)
	if o.TableNumber != "" {
		fmt.Fprintf(w, "Table %s\n", o.TableNumber)
	}
	fmt.Fprintf(w, "Status: %s\n\n", status.CustomerLabel(o.Status))

	p := status.ProgressOf(o)
	switch {
	case p.Cancelled:
		fmt.Fprintln(w, "This order has been cancelled.")
		fmt.Fprintln(w, "Please contact the staff if you have any questions.")
	default:
		for _, stage := range p.Stages {
			mark := "[ ]"
			if stage.Reached {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s %s", mark, stage.Label)
			if stage.Reached && stage.At != nil {
				line += "  " + Clock(*stage.At)
			}
			fmt.Fprintln(w, line)
		}
		if p.Completed {
			fmt.Fprintln(w, "\nEnjoy your meal!")
		}
	}

	fmt.Fprintln(w)
	for _, item := range o.Items {
		fmt.Fprintf(w, "  %dx %-24s %s\n", item.Quantity, item.MenuItemSnapshot.Name, FormatPrice(currency, item.Subtotal))
		if item.SpecialInstructions != "" {
			fmt.Fprintf(w, "     Note: %s\n", item.SpecialInstructions)
		}
	}
	fmt.Fprintf(w, "  Total: %s\n", FormatPrice(currency, o.TotalAmount))
}

// Menu renders a restaurant menu with the day's specials first.
func Menu(w io.Writer, r models.Restaurant, currency string) {
	fmt.Fprintln(w, r.Name)
	if r.Address != "" {
		fmt.Fprintln(w, r.Address)
	}

	var specials []models.MenuItem
	for _, item := range r.MenuItems() {
		if item.IsSpecialOfDay && item.IsAvailable {
			specials = append(specials, item)
		}
	}
	if len(specials) > 0 {
		fmt.Fprintln(w, "\n== Today's Specials ==")
		for _, item := range specials {
			menuLine(w, item, currency)
		}
	}

	for _, g := range r.MenuGroups {
		fmt.Fprintf(w, "\n== %s ==\n", titleCase(g.Type))
		for _, c := range g.Categories {
			fmt.Fprintf(w, "-- %s --\n", c.Name)
			for _, item := range c.Items {
				menuLine(w, item, currency)
			}
		}
	}
}

func menuLine(w io.Writer, item models.MenuItem, currency string) {
	line := fmt.Sprintf("  [%d] %-28s %s", item.ID, item.Name, FormatPrice(currency, item.Price))
	if item.PreparationTime > 0 {
		line += fmt.Sprintf("  ~%d min", item.PreparationTime)
	}
	if len(item.DietaryTags) > 0 {
		line += "  (" + strings.Join(item.DietaryTags, ", ") + ")"
	}
	if !item.IsAvailable {
		line += "  (unavailable)"
	}
	fmt.Fprintln(w, line)
}

// Cart renders the cart contents and total.
func Cart(w io.Writer, items []models.CartItem, total decimal.Decimal, currency string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}

	count := 0
	for _, item := range items {
		count += item.Quantity
		line := decimal.Zero
		if price, err := decimal.NewFromString(item.MenuItem.Price); err == nil {
			line = price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		fmt.Fprintf(w, "  [%d] %dx %-24s %s\n", item.MenuItem.ID, item.Quantity, item.MenuItem.Name, FormatAmount(currency, line))
		if item.SpecialInstructions != "" {
			fmt.Fprintf(w, "       Note: %s\n", item.SpecialInstructions)
		}
	}
	fmt.Fprintf(w, "%s, total %s\n", plural(count, "item", "items"), FormatAmount(currency, total))
}

func titleCase(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
