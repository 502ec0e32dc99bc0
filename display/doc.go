// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package display renders views as plain text for the terminal apps.

Kitchen:

	display.KitchenBoard(os.Stdout, board, time.Now(), display.BoardOptions{SoundEnabled: true})

Customer:

	display.Menu(w, restaurant, "NRS")
	display.Cart(w, c.Items(), c.TotalPrice(), "NRS")
	display.OrderStatus(w, order, "NRS")

Manager:

	display.ManagerOrders(w, orders, time.Now(), "NRS")
	display.Stats(w, stats, "NRS")
	display.MenuItems(w, items, "NRS")
	display.Tables(w, tables, origin)

Prices are decimal strings and are shown with thousands separators and two
decimals ("NRS 1,250.00").
*/
package display
