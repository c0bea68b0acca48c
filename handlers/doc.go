// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the condo-vote API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AssemblyHandler: Assembly lifecycle and agenda
  - AttendeeHandler: Apartment registration and vote links
  - VoteByEmailHandler: Ballot retrieval and vote submission by token
  - ResultsHandler: Tallies and the public kiosk view

Handlers are created via constructor functions that accept *sql.DB and Config:

	assemblyHandler := handlers.NewAssemblyHandler(db, cfg)

# Assembly Lifecycle

Assemblies progress through three states: draft → open → closed

	POST /assemblies             → CreateAssembly (returns admin_key)
	POST /assemblies/{id}/items  → AddAgendaItem (draft only)
	POST /assemblies/{id}/open   → OpenAssembly (issues kiosk_slug)
	POST /assemblies/{id}/close  → CloseAssembly (stores result snapshot)

Admin operations require the X-Admin-Key header.

# Vote by E-mail

Every apartment gets a personal token, delivered as a link:

	GET  /api/vote-by-email/{token} → GetBallot
	POST /api/vote-by-email/{token} → SubmitVotes

A submission must carry terms_accepted and terms_version. Votes are
upserted per agenda item, so a later submission replaces earlier choices
for the items it names and leaves the others untouched. Error messages on
these two routes are in Greek and meant to be shown to the voter as-is.

# Tally

Votes are weighted by the apartment's mills (thousandths of the building):

	tally, err := ComputeTally(db, assemblyID)

Quorum is reached when voted mills reach quorum_percent of all registered
mills. Without quorum every item is no_quorum. Otherwise:

  - simple_majority: approve mills > reject mills
  - qualified_majority: approve mills ≥ 2/3 of voted mills, abstentions included
  - unanimous: at least one approve and no reject
*/
package handlers
