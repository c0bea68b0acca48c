// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/condo-vote/models"
)

// API is the part of the voting server a Session needs.
// *votingapi.Client implements it.
type API interface {
	GetBallot(ctx context.Context, token string) (models.BallotResponse, error)
	SubmitVotes(ctx context.Context, token string, req models.SubmitVotesRequest) (models.SubmitVotesResponse, error)
}

type Step int

const (
	StepSelection Step = iota
	StepReview
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepSelection:
		return "selection"
	case StepReview:
		return "review"
	case StepSubmitted:
		return "submitted"
	}
	return "unknown"
}

type Option func(*options)

type options struct {
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout bounds each request made by Resolve and Submit
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Session is one voter's pass through the ballot. All state sits behind mu;
// requests run outside the lock while pending is set.
type Session struct {
	api    API
	token  string
	ballot models.BallotResponse
	order  map[string]int
	opts   options

	mu        sync.Mutex
	step      Step
	selection Selection
	consent   Consent
	pending   bool
	recorded  int
	lastErr   error
}

// Resolve fetches the ballot for token with a single request and starts a
// session on it. A session never refetches; resolve again for a fresh one.
func Resolve(ctx context.Context, api API, token string, opts ...Option) (*Session, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &Error{Kind: KindTokenInvalid, Err: ErrEmptyToken}
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	ballot, err := api.GetBallot(ctx, token)
	if err != nil {
		o.logger.Debug("ballot fetch failed", "error", err)
		return nil, classify(err, KindTokenInvalid)
	}
	if !ballot.Valid {
		return nil, &Error{Kind: KindTokenInvalid, Err: ErrInvalidBallot}
	}

	order := make(map[string]int, len(ballot.VotingItems))
	ids := make([]string, 0, len(ballot.VotingItems))
	for _, it := range ballot.VotingItems {
		order[it.ID] = it.Order
		ids = append(ids, it.ID)
	}

	o.logger.Debug("ballot resolved",
		"assembly_id", ballot.Assembly.ID,
		"apartment", ballot.Attendee.Apartment,
		"items", len(ids),
		"all_voted", ballot.AllVoted,
	)

	return &Session{
		api:       api,
		token:     token,
		ballot:    ballot,
		order:     order,
		opts:      o,
		step:      StepSelection,
		selection: NewSelection(ids),
		consent:   NewConsent(),
	}, nil
}

// Ballot returns the ballot the session was resolved with
func (s *Session) Ballot() models.BallotResponse {
	return s.ballot
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Select records a choice. Only allowed in the selection step.
func (s *Session) Select(itemID string, choice models.VoteChoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stepErrLocked(StepSelection); err != nil {
		return err
	}
	if err := s.selection.Select(itemID, choice); err != nil {
		return validation(err)
	}
	return nil
}

// Choice returns the current choice for itemID
func (s *Session) Choice(itemID string) (models.VoteChoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Get(itemID)
}

// Choices returns a copy of the selection
func (s *Session) Choices() map[string]models.VoteChoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Snapshot()
}

func (s *Session) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Count()
}

// CanContinue reports whether the continue control is enabled
func (s *Session) CanContinue() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step == StepSelection && s.selection.Count() > 0
}

// Continue moves from selection to review. With nothing selected the step
// does not change and ErrNoSelection is returned.
func (s *Session) Continue() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stepErrLocked(StepSelection); err != nil {
		return err
	}
	if s.selection.Count() == 0 {
		s.lastErr = validation(ErrNoSelection)
		return s.lastErr
	}
	s.step = StepReview
	s.lastErr = nil
	return nil
}

// Back returns from review to selection, keeping every choice
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == StepSelection {
		return nil
	}
	if err := s.stepErrLocked(StepReview); err != nil {
		return err
	}
	s.step = StepSelection
	s.lastErr = nil
	return nil
}

// SetConsent sets the consent flag. Accepting clears a pending
// consent error.
func (s *Session) SetConsent(accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == StepSubmitted {
		return validation(ErrAlreadySubmitted)
	}
	s.consent.Accepted = accepted
	if accepted && errors.Is(s.lastErr, ErrConsentRequired) {
		s.lastErr = nil
	}
	return nil
}

func (s *Session) Consent() Consent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consent
}

// CanSubmit reports whether the submit control is enabled
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step == StepReview && !s.pending &&
		s.consent.Accepted && s.selection.Count() > 0
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// VotesRecorded is the server's count from the successful submission
func (s *Session) VotesRecorded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorded
}

// LastError is the error currently shown to the voter, if any
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Submit sends the selection and consent in one request.
// Local checks fail without a request. On failure the session stays in
// review with the selection untouched; on success it is submitted for good.
func (s *Session) Submit(ctx context.Context) (int, error) {
	s.mu.Lock()
	req, err := s.beginSubmitLocked()
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	if s.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.timeout)
		defer cancel()
	}

	completed := false
	var resp models.SubmitVotesResponse
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pending = false
		if !completed {
			return
		}
		if err != nil {
			s.lastErr = err
			return
		}
		s.step = StepSubmitted
		s.recorded = resp.VotesRecorded
		s.lastErr = nil
	}()

	resp, err = s.api.SubmitVotes(ctx, s.token, req)
	completed = true
	if err != nil {
		err = classify(err, KindSubmissionRejected)
		s.opts.logger.Debug("vote submission failed", "error", err, "kind", KindOf(err))
		return 0, err
	}

	s.opts.logger.Debug("votes submitted",
		"assembly_id", s.ballot.Assembly.ID,
		"sent", len(req.Votes),
		"recorded", resp.VotesRecorded,
	)
	return resp.VotesRecorded, nil
}

// beginSubmitLocked runs the local checks, builds the payload and marks
// the session pending
func (s *Session) beginSubmitLocked() (models.SubmitVotesRequest, error) {
	if s.pending {
		return models.SubmitVotesRequest{}, validation(ErrSubmitPending)
	}
	if err := s.stepErrLocked(StepReview); err != nil {
		return models.SubmitVotesRequest{}, err
	}
	if s.selection.Count() == 0 {
		s.lastErr = validation(ErrNoSelection)
		return models.SubmitVotesRequest{}, s.lastErr
	}
	if !s.consent.Accepted {
		s.lastErr = validation(ErrConsentRequired)
		return models.SubmitVotesRequest{}, s.lastErr
	}

	s.pending = true
	s.lastErr = nil
	return s.payloadLocked(), nil
}

// payloadLocked flattens the selection in agenda order
func (s *Session) payloadLocked() models.SubmitVotesRequest {
	votes := make([]models.VoteEntry, 0, s.selection.Count())
	for id, choice := range s.selection.choices {
		votes = append(votes, models.VoteEntry{AgendaItemID: id, Vote: choice})
	}
	sort.Slice(votes, func(i, j int) bool {
		oi, oj := s.order[votes[i].AgendaItemID], s.order[votes[j].AgendaItemID]
		if oi != oj {
			return oi < oj
		}
		return votes[i].AgendaItemID < votes[j].AgendaItemID
	})

	return models.SubmitVotesRequest{
		Votes:            votes,
		TermsAccepted:    true,
		TermsVersion:     s.consent.Version,
		TermsAcceptedVia: s.consent.Channel,
	}
}

// stepErrLocked returns the error for acting in a step other than want
func (s *Session) stepErrLocked(want Step) error {
	switch {
	case s.step == StepSubmitted:
		return validation(ErrAlreadySubmitted)
	case s.pending:
		return validation(ErrSubmitPending)
	case s.step != want:
		return validation(ErrWrongStep)
	}
	return nil
}
