// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string or SQLite file (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for assembly admin key HMAC (required)
  - KioskSlugSalt: Secret for kiosk slug generation (required)
  - PublicBaseURL: Prefix for vote links handed to attendees

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	--base-url    Public base URL
	--admin-salt  Admin key salt
	--kiosk-salt  Kiosk slug salt

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	PUBLIC_BASE_URL → --base-url
	ADMIN_KEY_SALT  → --admin-salt
	KIOSK_SLUG_SALT → --kiosk-salt

A .env file in the working directory is read before the environment is
consulted. CLI flags take precedence over environment variables.
*/
package cliparse
