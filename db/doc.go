// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open picks the driver from the configured database type:

	conn, err := db.Open("postgres", "postgres://...")  // github.com/lib/pq
	conn, err := db.Open("sqlite", "file:condo.db")     // modernc.org/sqlite

Queries throughout the module use $N placeholders, which both drivers accept.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - assembly: Assembly metadata, quorum threshold and lifecycle state
  - agenda_item: Ordered agenda topics, voting or informational
  - attendee: Apartments invited to vote, with mills and vote token
  - vote: One choice per attendee per agenda item
  - terms_acceptance: Consent records attached to e-mail votes
  - result_snapshot: Final tally stored on close

# Relationships

	assembly 1──* agenda_item
	assembly 1──* attendee
	attendee 1──* vote *──1 agenda_item
	attendee 1──* terms_acceptance
	assembly 1──* result_snapshot

# Errors

IsUniqueViolation recognises duplicate-key errors from both drivers.
*/
package db
