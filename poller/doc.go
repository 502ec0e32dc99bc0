// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poller keeps view data fresh.

A Query holds the last fetched value of one view. Each resolved fetch
replaces the value outright; there is no merging and no sequence numbering,
so the most recently resolved fetch wins. A failed fetch keeps the previous
value and records the error. Identical concurrent refreshes share one fetch.

Drivers feed a query:

	q := poller.NewQuery("kitchen-orders", client.Kitchen().OrdersByStatus)
	unsubscribe := q.Subscribe(render)
	loop := poller.Poll(ctx, q, poller.KitchenOrdersInterval)
	defer loop.Stop()

	q.Refresh(ctx) // manual refresh, timer keeps its schedule

Stream is the push-based driver: it reads full values off a websocket and
feeds the same query.
*/
package poller
