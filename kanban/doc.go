// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package kanban buckets active orders into board columns and guards status
advances.

# Bucketing

	board := kanban.Partition(orders)
	board.Column(models.StatusPending)

Columns are PENDING, CONFIRMED, PREPARING and READY. Each order lands in the
column matching its own status; SERVED, COMPLETED and CANCELLED orders are
dropped. A board is rebuilt from scratch on every poll.

# Advancing

	updated, err := kanban.Advance(ctx, client, order)

Advance sends exactly the next status in the progression. CheckTransition
rejects skips, backward moves and moves out of a final status.

# New-Order Bell

NewOrderDetector.Observe returns true when the PENDING count grew since the
previous poll, never on the first poll.
*/
package kanban
