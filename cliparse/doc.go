// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration
for the three terminal apps.

# Configuration

ParseFlags returns the Config and the remaining positional args:

	cliparse.LoadDotEnv()
	cfg, args, err := cliparse.ParseFlags("kitchen-display", os.Args[1:])

# Config Fields

  - APIURL: REST API root (default: http://localhost:8000/api)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - DatabaseURL: state database; sqlite defaults to file:<app>.db
  - Username, Password: staff login for the kitchen and manager apps
  - SoundEnabled: bell on new kitchen orders (default: true)
  - Currency: price prefix (default: NRS)
  - Origin: customer app origin used in table QR links
  - StreamURL: websocket pushing live kitchen orders; polling when empty

# CLI Flags

	-api       API base URL
	-d         Database URL
	-t         Database type (sqlite or postgres)
	-user      Staff username
	-password  Staff password
	-sound     New-order bell
	-currency  Price prefix
	-origin    Customer app origin
	-stream    Live order websocket
	-v         Verbose logging

# Environment Variables

Flags fall back to environment variables:

	API_URL          → -api
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	KITCHEN_USERNAME → -user
	KITCHEN_PASSWORD → -password
	SOUND_ENABLED    → -sound
	CURRENCY         → -currency
	CUSTOMER_ORIGIN  → -origin
	ORDERS_STREAM_URL → -stream

CLI flags take precedence over environment variables, and environment
variables take precedence over a .env file.

# Validation

ParseFlags returns an error if:

  - DATABASE_TYPE is neither sqlite nor postgres
  - postgres is selected without a DATABASE_URL
  - SOUND_ENABLED is not a boolean
*/
package cliparse
