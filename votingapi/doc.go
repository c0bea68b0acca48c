// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package votingapi is a small HTTP client for the vote-by-email endpoints.

	c := votingapi.New("https://condo.example.gr", 15*time.Second)
	ballot, err := c.GetBallot(ctx, token)

Every request is bounded by Client.Timeout (DefaultTimeout when zero).

# Errors

Failures come back as one of two types:

  - *APIError: the server answered with a non-2xx status. Message holds the
    "error" field of the JSON body when there is one.
  - *NetworkError: the request never completed or the response could not
    be read or decoded. Timeouts unwrap to context.DeadlineExceeded.

A blank token returns ErrEmptyToken and sends nothing.
*/
package votingapi
