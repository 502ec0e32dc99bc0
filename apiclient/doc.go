// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apiclient is the REST client shared by the customer, kitchen and
manager apps.

# Client

	tokens := auth.NewTokenStore(store)
	client := apiclient.New(cfg.APIURL,
		apiclient.WithTokens(tokens),
		apiclient.WithLogoutHandler(showLogin),
	)

Endpoints are grouped by audience:

	client.Customer()  restaurants, QR resolve, create/track orders
	client.Kitchen()   active orders, by_status, update_status
	client.Manager()   orders, stats, menu items, categories, restaurant, tables
	client.Auth()      login, me, profile, logout

# Token Refresh

With a token store configured every request carries the stored access
token. A 401 triggers one POST /auth/refresh/ and exactly one retry of the
original request. If the retry is also rejected the 401 is returned as an
*APIError. If the refresh itself fails, both tokens are cleared, the logout
handler runs and ErrSessionExpired is returned. Concurrent refreshes share
a single call.

Login and refresh are sent without a bearer token and are never retried.

# Errors

Non-2xx answers become *APIError with the server's detail and per-field
messages. Message picks the text for an error banner:

	apiclient.Message(err, "Failed to create order. Please try again.")
*/
package apiclient
