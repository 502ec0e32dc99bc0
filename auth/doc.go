// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth stores and inspects staff credentials.

# Token Storage

The access and refresh tokens are persisted under separate keys:

	tokens := auth.NewTokenStore(store)
	err := tokens.SetTokens(ctx, pair.Access, pair.Refresh) // after login
	err = tokens.SetAccessToken(ctx, access)                // after refresh
	err = tokens.Clear(ctx)                                 // logout or failed refresh

A missing token reads as the empty string.

# Claims

	claims, err := auth.ParseClaims(accessToken)
	if claims.Expired(time.Now()) { ... }

ParseClaims does not verify the signature. The server is the only authority
on token validity; the client uses the claims for display.
*/
package auth
