// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared by the
server handlers and the votingapi client.

# Vote by E-mail

	GET  /api/vote-by-email/{token} → BallotResponse
	POST /api/vote-by-email/{token} ← SubmitVotesRequest → SubmitVotesResponse

VoteChoice is one of approve, reject or abstain; ParseVoteChoice rejects
anything else. Optional server fields are pointers (ScheduledAt,
CurrentVote) so an absent value is distinguishable from a zero value.

# Admin Types

  - CreateAssemblyRequest / CreateAssemblyResponse
  - AddAgendaItemRequest / AddAgendaItemResponse
  - AddAttendeeRequest / AddAttendeeResponse
  - OpenAssemblyResponse, CloseAssemblyResponse
  - AssemblyAdminView

# Tally

Tally and ItemTally carry mills-weighted counts, decisions and quorum.

# Errors

Every non-2xx response body is an ErrorResponse: {"error": "..."}.
*/
package models
