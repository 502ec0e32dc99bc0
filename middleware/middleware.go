// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request trace ID.
const RequestIDHeader = "X-Request-ID"

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain wraps base with each middleware, first one outermost.
func Chain(base http.RoundTripper, wrappers ...func(http.RoundTripper) http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(wrappers) - 1; i >= 0; i-- {
		base = wrappers[i](base)
	}
	return base
}

// WithLogging wraps a transport with request logging
func WithLogging(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()

		slog.Debug("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get(RequestIDHeader),
		)

		resp, err := next.RoundTrip(r)

		duration := time.Since(start)
		if err != nil {
			slog.Warn("request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", duration.Milliseconds(),
				"error", err,
			)
			return nil, err
		}

		level := slog.LevelDebug
		if resp.StatusCode >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", resp.StatusCode,
			"duration_ms", duration.Milliseconds(),
		)
		return resp, nil
	})
}

// WithRequestID stamps every request with a fresh X-Request-ID unless one is set
func WithRequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(r)
		}
		// RoundTrippers must not modify the caller's request
		r = r.Clone(r.Context())
		r.Header.Set(RequestIDHeader, uuid.New().String())
		return next.RoundTrip(r)
	})
}

// JSONBody encodes v as a request body
func JSONBody(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// ParseJSONBody decodes a response body into v and closes it.
// An empty body leaves v untouched.
func ParseJSONBody(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if v == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// ParseErrorBody extracts the server's detail message and per-field errors
// from an error response. Both DRF shapes are accepted:
//
//	{"detail": "Not found."}
//	{"customer_name": ["This field is required."]}
func ParseErrorBody(data []byte) (detail string, fields map[string][]string) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", nil
	}

	for key, value := range raw {
		var s string
		if json.Unmarshal(value, &s) == nil {
			if key == "detail" || key == "error" || key == "message" {
				if detail == "" || key == "detail" {
					detail = s
				}
				continue
			}
			addField(&fields, key, s)
			continue
		}

		var list []string
		if json.Unmarshal(value, &list) == nil {
			for _, msg := range list {
				addField(&fields, key, msg)
			}
		}
	}
	return detail, fields
}

func addField(fields *map[string][]string, key, msg string) {
	if *fields == nil {
		*fields = make(map[string][]string)
	}
	(*fields)[key] = append((*fields)[key], msg)
}
