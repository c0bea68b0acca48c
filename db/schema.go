// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL is the common subset of PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Assemblies (general meetings of a building)
CREATE TABLE IF NOT EXISTS assembly (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    scheduled_at TIMESTAMP,
    quorum_percent INTEGER NOT NULL DEFAULT 50 CHECK (quorum_percent > 0 AND quorum_percent <= 100),
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'open', 'closed')),
    kiosk_slug TEXT UNIQUE,
    closed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_assembly_status ON assembly(status);

-- Agenda items
CREATE TABLE IF NOT EXISTS agenda_item (
    id TEXT PRIMARY KEY,
    assembly_id TEXT NOT NULL REFERENCES assembly(id) ON DELETE CASCADE,
    item_order INTEGER NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    item_type TEXT NOT NULL DEFAULT 'voting' CHECK (item_type IN ('voting', 'informational')),
    voting_type TEXT NOT NULL DEFAULT 'simple_majority',
    UNIQUE (assembly_id, item_order)
);

CREATE INDEX IF NOT EXISTS idx_agenda_item_assembly_id ON agenda_item(assembly_id);

-- Attendees (one per apartment, each with its own vote token)
CREATE TABLE IF NOT EXISTS attendee (
    id TEXT PRIMARY KEY,
    assembly_id TEXT NOT NULL REFERENCES assembly(id) ON DELETE CASCADE,
    apartment TEXT NOT NULL,
    owner_name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    mills INTEGER NOT NULL CHECK (mills > 0),
    vote_token TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (assembly_id, apartment)
);

CREATE INDEX IF NOT EXISTS idx_attendee_assembly_id ON attendee(assembly_id);

-- Votes, one row per attendee per agenda item
CREATE TABLE IF NOT EXISTS vote (
    attendee_id TEXT NOT NULL REFERENCES attendee(id) ON DELETE CASCADE,
    agenda_item_id TEXT NOT NULL REFERENCES agenda_item(id) ON DELETE CASCADE,
    vote TEXT NOT NULL CHECK (vote IN ('approve', 'reject', 'abstain')),
    voted_via TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (attendee_id, agenda_item_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_agenda_item_id ON vote(agenda_item_id);

-- Terms acceptance audit trail
CREATE TABLE IF NOT EXISTS terms_acceptance (
    id TEXT PRIMARY KEY,
    attendee_id TEXT NOT NULL REFERENCES attendee(id) ON DELETE CASCADE,
    terms_version TEXT NOT NULL,
    accepted_via TEXT NOT NULL,
    accepted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    ip_hash TEXT,
    user_agent TEXT
);

CREATE INDEX IF NOT EXISTS idx_terms_acceptance_attendee_id ON terms_acceptance(attendee_id);

-- Final tallies, written once when an assembly closes
CREATE TABLE IF NOT EXISTS result_snapshot (
    id TEXT PRIMARY KEY,
    assembly_id TEXT NOT NULL REFERENCES assembly(id) ON DELETE CASCADE,
    computed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_result_snapshot_assembly_id ON result_snapshot(assembly_id);
`
