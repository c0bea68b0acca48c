// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential and identifier generation.

# Admin Keys

Each assembly has an HMAC-SHA256 admin key derived from its ID:

	adminKey := auth.GenerateAdminKey(assemblyID, salt)
	err := auth.ValidateAdminKey(assemblyID, adminKey, salt)

Keys are deterministic, so nothing is stored in the database.

# Vote Tokens

Every attendee receives a random 32-byte token, URL-safe base64 without
padding, embedded in the e-mail link:

	token, err := auth.GenerateVoteToken()
	err = auth.CheckVoteTokenFormat(token)

The token is opaque to clients; only the server can tell whether it is valid.

# Kiosk Slugs

Open assemblies get a short base62 slug for the lobby display:

	slug := auth.GenerateKioskSlug(assemblyID, salt)

# IDs and IP Hashing

	id := auth.NewID()                 // UUID string
	hash := auth.HashIP(ip, salt)      // 16 hex chars
*/
package auth
