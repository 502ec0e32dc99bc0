// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/quickly-order/auth"
	"github.com/danielhkuo/quickly-order/middleware"
	"github.com/danielhkuo/quickly-order/models"
)

const (
	refreshPath  = "/auth/refresh/"
	clearTimeout = 5 * time.Second
)

var (
	ErrSessionExpired = errors.New("session expired")
	ErrNoRefreshToken = errors.New("no refresh token")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Detail     string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, firstFieldError(e.Fields))
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Message turns err into banner text: the server's detail when it sent one,
// else the first field error, else fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if len(apiErr.Fields) > 0 {
			return firstFieldError(apiErr.Fields)
		}
	}
	return fallback
}

func firstFieldError(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(fields[k]) > 0 {
			return k + ": " + fields[k][0]
		}
	}
	return ""
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. Its transport is used as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTokens enables bearer auth and 401 refresh-and-retry.
func WithTokens(tokens *auth.TokenStore) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogoutHandler sets the hook run after an unrecoverable auth failure.
func WithLogoutHandler(fn func()) Option {
	return func(c *Client) {
		c.onLogout = fn
	}
}

// Client talks to the ordering REST API.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   *auth.TokenStore
	onLogout func()
	refresh  singleflight.Group
}

// New creates a client for baseURL, e.g. http://localhost:8000/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: middleware.Chain(http.DefaultTransport,
				middleware.WithRequestID,
				middleware.WithLogging,
			),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one API call. With a token store configured, a 401 triggers one
// refresh and one retry; a second 401 is returned as an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := middleware.JSONBody(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.send(ctx, method, path, payload, c.tokens != nil)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		resp.Body.Close()

		if err := c.refreshAccessToken(ctx); err != nil {
			return err
		}

		resp, err = c.send(ctx, method, path, payload, true)
		if err != nil {
			return err
		}
	}

	return decode(resp, out)
}

// doAnonymous sends a call without bearer auth or refresh handling.
func (c *Client) doAnonymous(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := middleware.JSONBody(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.send(ctx, method, path, payload, false)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, bearer bool) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if bearer {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// refreshAccessToken exchanges the refresh token for a new access token.
// Concurrent callers share one refresh call. On failure the session is
// cleared and the logout hook runs.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	exchange := func() (interface{}, error) {
		refresh, err := c.tokens.RefreshToken(ctx)
		if err != nil {
			return nil, err
		}
		if refresh == "" {
			return nil, c.expire(ctx, ErrNoRefreshToken)
		}

		var resp models.RefreshResponse
		err = c.doAnonymous(ctx, http.MethodPost, refreshPath, models.RefreshRequest{Refresh: refresh}, &resp)
		if ctx.Err() != nil {
			// Cancelled by the caller, not rejected by the server
			return nil, ctx.Err()
		}
		if err != nil {
			return nil, c.expire(ctx, err)
		}
		if resp.Access == "" {
			return nil, c.expire(ctx, errors.New("refresh response missing access token"))
		}

		if err := c.tokens.SetAccessToken(ctx, resp.Access); err != nil {
			return nil, fmt.Errorf("failed to store access token: %w", err)
		}

		slog.Info("access token refreshed")
		return nil, nil
	}

	_, err, _ := c.refresh.Do("refresh", exchange)
	// A joined refresh may have died with its starter's context
	if err != nil && ctx.Err() == nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		_, err, _ = c.refresh.Do("refresh", exchange)
	}
	return err
}

func (c *Client) expire(ctx context.Context, cause error) error {
	slog.Warn("token refresh failed, signing out", "error", cause)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clearTimeout)
	defer cancel()
	if err := c.tokens.Clear(ctx); err != nil {
		slog.Error("failed to clear tokens", "error", err)
	}
	if c.onLogout != nil {
		c.onLogout()
	}
	return fmt.Errorf("%w: %v", ErrSessionExpired, cause)
}

func decode(resp *http.Response, out interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		detail, fields := middleware.ParseErrorBody(data)
		return &APIError{StatusCode: resp.StatusCode, Detail: detail, Fields: fields}
	}

	if raw, ok := out.(*[]byte); ok {
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		*raw = data
		return nil
	}

	if err := middleware.ParseJSONBody(resp, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
