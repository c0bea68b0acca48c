// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/condo-vote/votingapi"
)

// Kind classifies every error a Session returns
type Kind int

const (
	KindValidation Kind = iota + 1
	KindTokenInvalid
	KindSubmissionRejected
	KindNetworkFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTokenInvalid:
		return "token_invalid"
	case KindSubmissionRejected:
		return "submission_rejected"
	case KindNetworkFailure:
		return "network_failure"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Local validation failures. Session methods return them wrapped in *Error.
var (
	ErrEmptyToken       = errors.New("empty vote token")
	ErrInvalidBallot    = errors.New("server returned an invalid ballot")
	ErrUnknownItem      = errors.New("agenda item is not on this ballot")
	ErrInvalidChoice    = errors.New("invalid vote choice")
	ErrNoSelection      = errors.New("no item selected")
	ErrConsentRequired  = errors.New("terms not accepted")
	ErrWrongStep        = errors.New("action not available in this step")
	ErrAlreadySubmitted = errors.New("votes already submitted")
	ErrSubmitPending    = errors.New("submission already in progress")
)

// Error carries the kind and, for server answers, the server's message
type Error struct {
	Kind          Kind
	ServerMessage string
	Err           error
}

func (e *Error) Error() string {
	if e.ServerMessage != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.ServerMessage)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func validation(err error) error {
	return &Error{Kind: KindValidation, Err: err}
}

// classify turns an API error into a wizard error. A non-2xx answer gets
// rejectedKind; anything else is a network failure.
func classify(err error, rejectedKind Kind) error {
	var apiErr *votingapi.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: rejectedKind, ServerMessage: apiErr.Message, Err: err}
	}
	if errors.Is(err, votingapi.ErrEmptyToken) {
		return &Error{Kind: KindTokenInvalid, Err: ErrEmptyToken}
	}
	return &Error{Kind: KindNetworkFailure, Err: err}
}

// KindOf returns the kind of err, or 0 when err is nil or foreign
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Greek text shown to voters
const (
	msgInvalidLink      = "Ο σύνδεσμος ψηφοφορίας δεν είναι έγκυρος ή έχει λήξει"
	msgUnknownItem      = "Το θέμα δεν ανήκει σε αυτή την ψηφοφορία"
	msgInvalidChoice    = "Μη έγκυρη επιλογή ψήφου"
	msgNoSelection      = "Επιλέξτε ψήφο για τουλάχιστον ένα θέμα"
	msgConsentRequired  = "Πρέπει να αποδεχθείτε τους όρους χρήσης για να ψηφίσετε"
	msgWrongStep        = "Η ενέργεια δεν είναι διαθέσιμη σε αυτό το βήμα"
	msgAlreadySubmitted = "Η ψήφος σας έχει ήδη καταχωρηθεί"
	msgSubmitPending    = "Η ψήφος σας αποστέλλεται. Παρακαλώ περιμένετε"
	msgSubmitFailed     = "Η καταχώρηση της ψήφου απέτυχε. Δοκιμάστε ξανά"
	msgNetworkFailure   = "Δεν ήταν δυνατή η σύνδεση με τον διακομιστή. Ελέγξτε τη σύνδεσή σας και δοκιμάστε ξανά"
	msgTimeout          = "Ο διακομιστής δεν απάντησε εγκαίρως. Δοκιμάστε ξανά"
	msgUnexpected       = "Παρουσιάστηκε απρόσμενο σφάλμα"
)

var sentinelMessages = []struct {
	err error
	msg string
}{
	{ErrEmptyToken, msgInvalidLink},
	{ErrInvalidBallot, msgInvalidLink},
	{ErrUnknownItem, msgUnknownItem},
	{ErrInvalidChoice, msgInvalidChoice},
	{ErrNoSelection, msgNoSelection},
	{ErrConsentRequired, msgConsentRequired},
	{ErrWrongStep, msgWrongStep},
	{ErrAlreadySubmitted, msgAlreadySubmitted},
	{ErrSubmitPending, msgSubmitPending},
}

// UserMessage returns the Greek text to show for err. Server messages are
// passed through verbatim; raw Go errors are never returned.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	var e *Error
	if !errors.As(err, &e) {
		return msgUnexpected
	}
	if e.ServerMessage != "" {
		return e.ServerMessage
	}

	switch e.Kind {
	case KindTokenInvalid:
		return msgInvalidLink
	case KindSubmissionRejected:
		return msgSubmitFailed
	case KindNetworkFailure:
		if errors.Is(err, context.DeadlineExceeded) {
			return msgTimeout
		}
		return msgNetworkFailure
	}
	return msgUnexpected
}
