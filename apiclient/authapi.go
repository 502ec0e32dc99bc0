// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"net/http"

	"github.com/danielhkuo/quickly-order/models"
)

// AuthAPI covers login, profile and logout.
type AuthAPI struct {
	c *Client
}

func (c *Client) Auth() AuthAPI {
	return AuthAPI{c: c}
}

// Login exchanges credentials for a token pair. A 401 here means bad
// credentials and is never retried.
func (a AuthAPI) Login(ctx context.Context, username, password string) (models.LoginResponse, error) {
	var resp models.LoginResponse
	err := a.c.doAnonymous(ctx, http.MethodPost, "/auth/login/",
		models.LoginRequest{Username: username, Password: password}, &resp)
	return resp, err
}

func (a AuthAPI) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := a.c.do(ctx, http.MethodGet, "/auth/me/", nil, &u)
	return u, err
}

func (a AuthAPI) UpdateProfile(ctx context.Context, in models.ProfileInput) (models.User, error) {
	var u models.User
	err := a.c.do(ctx, http.MethodPatch, "/auth/me/", in, &u)
	return u, err
}

// Logout tells the server to blacklist the refresh token.
func (a AuthAPI) Logout(ctx context.Context, refreshToken string) error {
	return a.c.do(ctx, http.MethodPost, "/auth/logout/", models.LogoutRequest{RefreshToken: refreshToken}, nil)
}
