// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the condo-vote API server.

condo-vote runs general assemblies of apartment buildings. The building
manager sets up an agenda and the list of apartments, each apartment
receives a personal vote-by-email link, and the final tally is weighted
by each apartment's mills.

# Starting the Server

With SQLite (the default), only a file path is needed:

	DATABASE_URL=condo.db go run .

Or against PostgreSQL with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded before flags and the
environment are read.

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string or SQLite file path
  - ADMIN_KEY_SALT (-admin-salt): secret for admin key HMAC
  - KIOSK_SLUG_SALT (-kiosk-salt): secret for kiosk slug generation

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PUBLIC_BASE_URL (-base-url): prefix for vote and kiosk links

# Architecture

  - handlers: HTTP request handlers (assemblies, attendees, vote by e-mail, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Token generation and validation
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing
  - votingapi: Go client for the vote-by-email endpoints
  - wizard: Voter-side ballot session (selection, review, consent, submit)
  - firstrun: Persisted first-launch flag for the voter client
  - cmd/voter: Terminal voting client built on wizard

See package documentation for each component.
*/
package main
