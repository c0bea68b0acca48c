// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package firstrun stores one-time flags for the voter client, such as
// whether the intro was already shown. Store persists them in a bbolt file;
// MemoryFlag is the in-process stand-in used in tests and with --no-state.
package firstrun
