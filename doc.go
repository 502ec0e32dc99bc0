// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package quicklyorder holds the terminal clients for the Quickly Order
restaurant ordering service.

Diners scan a table QR code, build a cart and place an order. The kitchen
watches a live board and advances orders one step at a time. Managers run
menus, tables, the restaurant profile and the dashboard. All three talk to
the same REST backend.

# Binaries

	go run ./cmd/customer-app qr <code>
	go run ./cmd/kitchen-display -user chef -password ...
	go run ./cmd/manager-portal login

# Configuration

Every binary reads the same flags, falling back to the environment and a
.env file in the working directory:

  - API_URL (-api): backend base URL (default: http://localhost:8000/api)
  - DATABASE_TYPE (-t): local state store, sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): local state store URL (default: file:<app>.db)
  - KITCHEN_USERNAME / KITCHEN_PASSWORD (-user / -password): staff login
  - SOUND_ENABLED (-sound): ring the terminal bell on new orders
  - CURRENCY (-currency): price prefix (default: NRS)
  - CUSTOMER_ORIGIN (-origin): customer app origin used in QR links
  - ORDERS_STREAM_URL (-stream): websocket feed replacing kitchen polling

# Architecture

  - models: wire types
  - status: order lifecycle, labels and urgency
  - kanban: kitchen board, single-step advance, new-order detection
  - cart: persisted customer cart
  - checkout: form validation and order submission
  - apiclient: REST client with token refresh
  - auth, session: token storage and login state
  - poller: cached queries refreshed on an interval or by a stream
  - display: terminal rendering
  - middleware: HTTP transport wrappers and JSON helpers
  - db: local key/value store on SQLite or PostgreSQL
  - cliparse, appenv: configuration and process setup
  - testutil: fake backend and fixtures

See package documentation for each component.
*/
package quicklyorder
