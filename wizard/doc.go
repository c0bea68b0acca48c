// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package wizard runs one voter through a vote-by-email ballot.

# Flow

	s, err := wizard.Resolve(ctx, client, token, wizard.WithTimeout(15*time.Second))
	s.Select(itemID, models.VoteApprove)   // selection step
	s.Continue()                           // → review, needs one selection
	s.SetConsent(true)
	n, err := s.Submit(ctx)                // → submitted, n from the server

Resolve makes the only GET of the session. Back returns from review to
selection with every choice kept. Submitted is terminal: every mutating
call afterwards returns ErrAlreadySubmitted.

# Concurrency

A Session is safe for concurrent use. Its state is guarded by one mutex and
requests run outside it. While a submission is in flight Submit, Select,
Continue and Back return ErrSubmitPending and CanSubmit is false; the
pending flag is cleared on every exit path, panics included.

# Errors

Every error returned by a Session is a *Error whose Kind is one of
KindValidation, KindTokenInvalid, KindSubmissionRejected or
KindNetworkFailure. Validation errors wrap one of the Err* sentinels and
never involve a request. UserMessage turns any of them into Greek text for
the voter, passing the server's own message through when it sent one.
*/
package wizard
