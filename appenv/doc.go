// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package appenv wires configuration, logging, the state database and the
// API client together for the cmd/ entry points.
package appenv
