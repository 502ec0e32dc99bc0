// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package session tracks the signed-in kitchen or manager user on top of
// the persisted token pair.
package session
