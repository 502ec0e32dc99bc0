// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package status derives display state from raw order status strings.

Nothing here mutates an order; every function is a pure mapping from server
data to something a view can show.

# Progression

	PENDING → CONFIRMED → PREPARING → READY → SERVED

Step returns the 1-based position. COMPLETED is treated as fully progressed,
CANCELLED as outside the progression (ProgressOf returns a cancelled view with
no stages). Next and ActionLabel give the one legal forward move.

# Labels and Tones

CustomerLabel and KitchenLabel return wording for each audience; ToneOf
returns a color class. Unknown statuses fall back to the raw string and
ToneNeutral.

# Urgency

	prep := status.PrepTime(order)        // max(prep × qty) over item lines
	urgent := status.IsUrgent(order, now) // age > 1.5 × prep, not yet READY
*/
package status
