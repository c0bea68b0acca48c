// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import "github.com/danielhkuo/condo-vote/models"

// TermsVersion identifies the terms of use the voter accepts.
// Release builds set it with -ldflags "-X .../wizard.TermsVersion=...".
var TermsVersion = "1.0"

// Consent is the voter's acceptance of the terms, sent with the votes
type Consent struct {
	Accepted bool
	Version  string
	Channel  string
}

// NewConsent returns an unaccepted consent for the current terms version
func NewConsent() Consent {
	return Consent{
		Version: TermsVersion,
		Channel: models.ChannelEmailVote,
	}
}
