// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the condo-vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Assembly management (admin, requires X-Admin-Key):

	POST /assemblies                 - Create assembly
	GET  /assemblies/{id}/admin      - Assembly, agenda and attendees
	POST /assemblies/{id}/items      - Add agenda item (draft only)
	POST /assemblies/{id}/open       - Open for voting
	POST /assemblies/{id}/close      - Close and store the final tally
	POST /assemblies/{id}/attendees  - Register apartment, issue vote link
	GET  /assemblies/{id}/attendees  - List apartments
	GET  /assemblies/{id}/results    - Live or final tally

Vote by e-mail (public, token in path):

	GET  /api/vote-by-email/{token} - Ballot for the token holder
	POST /api/vote-by-email/{token} - Submit or change votes

Lobby display (public):

	GET /kiosk/{slug} - Participation figures only
*/
package router
