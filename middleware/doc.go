// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP client middleware and JSON helpers.

# Transport Middleware

Wrap the API client's transport:

	transport := middleware.Chain(http.DefaultTransport,
		middleware.WithRequestID,
		middleware.WithLogging,
	)

WithRequestID stamps each request with a UUID X-Request-ID. WithLogging logs
method, path, status and duration_ms; failures and 4xx/5xx are logged at warn
level, everything else at debug so the polling loops stay quiet.

# JSON Helpers

Encode request bodies and decode responses:

	body, err := middleware.JSONBody(req)
	err = middleware.ParseJSONBody(resp, &order)

Pull the server's message out of an error response:

	detail, fields := middleware.ParseErrorBody(data)

Both {"detail": "..."} and per-field {"name": ["..."]} shapes are handled.
*/
package middleware
