// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"time"
)

// Assembly status constants
const (
	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Agenda item kinds
const (
	ItemTypeVoting        = "voting"
	ItemTypeInformational = "informational"
)

// Voting type constants, used by the tally to pick a decision rule
const (
	VotingSimpleMajority    = "simple_majority"
	VotingQualifiedMajority = "qualified_majority"
	VotingUnanimous         = "unanimous"
)

// Decision outcomes
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
	DecisionNoQuorum = "no_quorum"
)

// Channel tags recorded with terms acceptance
const (
	ChannelEmailVote = "email_vote"
)

// VoteChoice is one attendee's answer to one agenda item
type VoteChoice string

const (
	VoteApprove VoteChoice = "approve"
	VoteReject  VoteChoice = "reject"
	VoteAbstain VoteChoice = "abstain"
)

// Valid reports whether c is one of the three accepted choices
func (c VoteChoice) Valid() bool {
	switch c {
	case VoteApprove, VoteReject, VoteAbstain:
		return true
	}
	return false
}

// ParseVoteChoice converts wire or user input into a VoteChoice
func ParseVoteChoice(s string) (VoteChoice, error) {
	c := VoteChoice(s)
	if !c.Valid() {
		return "", fmt.Errorf("invalid vote choice %q", s)
	}
	return c, nil
}

// IsValidVotingType reports whether t has a decision rule
func IsValidVotingType(t string) bool {
	switch t {
	case VotingSimpleMajority, VotingQualifiedMajority, VotingUnanimous:
		return true
	}
	return false
}

// Admin request types

type CreateAssemblyRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	QuorumPercent int        `json:"quorum_percent"`
}

type AddAgendaItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ItemType    string `json:"item_type"`
	VotingType  string `json:"voting_type"`
}

type AddAttendeeRequest struct {
	Apartment string `json:"apartment"`
	OwnerName string `json:"owner_name"`
	Email     string `json:"email"`
	Mills     int    `json:"mills"`
}

// Admin response types

type CreateAssemblyResponse struct {
	AssemblyID string `json:"assembly_id"`
	AdminKey   string `json:"admin_key"`
}

type AddAgendaItemResponse struct {
	AgendaItemID string `json:"agenda_item_id"`
	Order        int    `json:"order"`
}

type AddAttendeeResponse struct {
	AttendeeID string `json:"attendee_id"`
	VoteToken  string `json:"vote_token"`
	VoteURL    string `json:"vote_url"`
}

type OpenAssemblyResponse struct {
	KioskSlug string `json:"kiosk_slug"`
	KioskURL  string `json:"kiosk_url"`
}

type CloseAssemblyResponse struct {
	ClosedAt time.Time `json:"closed_at"`
	Tally    Tally     `json:"tally"`
}

// Domain types

type Assembly struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	QuorumPercent int        `json:"quorum_percent"`
	Status        string     `json:"status"`
	KioskSlug     *string    `json:"kiosk_slug,omitempty"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type AgendaItem struct {
	ID          string `json:"id"`
	AssemblyID  string `json:"assembly_id"`
	Order       int    `json:"order"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ItemType    string `json:"item_type"`
	VotingType  string `json:"voting_type"`
}

type Attendee struct {
	ID         string    `json:"id"`
	AssemblyID string    `json:"assembly_id"`
	Apartment  string    `json:"apartment"`
	OwnerName  string    `json:"owner_name"`
	Email      string    `json:"email"`
	Mills      int       `json:"mills"`
	VoteToken  string    `json:"-"` // Never expose in JSON
	HasVoted   bool      `json:"has_voted"`
	CreatedAt  time.Time `json:"created_at"`
}

type AssemblyAdminView struct {
	Assembly    Assembly     `json:"assembly"`
	AgendaItems []AgendaItem `json:"agenda_items"`
	Attendees   []Attendee   `json:"attendees"`
}

// Vote-by-email wire types

// BallotAssembly is the assembly descriptor shown to a voter
type BallotAssembly struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Status      string     `json:"status"`
}

// BallotAttendee identifies the apartment the token belongs to
type BallotAttendee struct {
	Apartment string `json:"apartment"`
	OwnerName string `json:"owner_name"`
	Mills     int    `json:"mills"`
}

// VotingItem is one agenda item open for ballot.
// CurrentVote is absent when HasVoted is false.
type VotingItem struct {
	ID          string      `json:"id"`
	Order       int         `json:"order"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	VotingType  string      `json:"voting_type"`
	HasVoted    bool        `json:"has_voted"`
	CurrentVote *VoteChoice `json:"current_vote,omitempty"`
}

type BallotResponse struct {
	Valid       bool           `json:"valid"`
	Assembly    BallotAssembly `json:"assembly"`
	Attendee    BallotAttendee `json:"attendee"`
	VotingItems []VotingItem   `json:"voting_items"`
	AllVoted    bool           `json:"all_voted"`
}

type VoteEntry struct {
	AgendaItemID string     `json:"agenda_item_id"`
	Vote         VoteChoice `json:"vote"`
}

type SubmitVotesRequest struct {
	Votes            []VoteEntry `json:"votes"`
	TermsAccepted    bool        `json:"terms_accepted"`
	TermsVersion     string      `json:"terms_version"`
	TermsAcceptedVia string      `json:"terms_accepted_via"`
}

type SubmitVotesResponse struct {
	VotesRecorded int `json:"votes_recorded"`
}

// Tally types

type ItemTally struct {
	AgendaItemID string `json:"agenda_item_id"`
	Order        int    `json:"order"`
	Title        string `json:"title"`
	VotingType   string `json:"voting_type"`
	Approve      int    `json:"approve"`
	Reject       int    `json:"reject"`
	Abstain      int    `json:"abstain"`
	ApproveMills int    `json:"approve_mills"`
	RejectMills  int    `json:"reject_mills"`
	AbstainMills int    `json:"abstain_mills"`
	Decision     string `json:"decision"`
}

type Tally struct {
	AssemblyID           string      `json:"assembly_id"`
	ComputedAt           time.Time   `json:"computed_at"`
	TotalMills           int         `json:"total_mills"`
	VotedMills           int         `json:"voted_mills"`
	ParticipationPercent float64     `json:"participation_percent"`
	QuorumPercent        int         `json:"quorum_percent"`
	QuorumReached        bool        `json:"quorum_reached"`
	Items                []ItemTally `json:"items"`
}

// KioskView is the public lobby display of an assembly
type KioskView struct {
	Title                string     `json:"title"`
	Status               string     `json:"status"`
	ScheduledAt          *time.Time `json:"scheduled_at,omitempty"`
	VotedAttendees       int        `json:"voted_attendees"`
	TotalAttendees       int        `json:"total_attendees"`
	ParticipationPercent float64    `json:"participation_percent"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
