// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package checkout turns a cart into a placed order.

Submit checks everything it can locally before any request is sent: the
customer form (name and phone required, whitespace trimmed), a non-empty
cart and a known restaurant. A successful submission clears the cart and
returns the created order, whose OrderNumber is used for tracking.

	order, err := checkout.Submit(ctx, client.Customer(), c, form)
	if err != nil {
		fmt.Println(checkout.Message(err))
	}
*/
package checkout
