// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danielhkuo/condo-vote/models"
	"github.com/danielhkuo/condo-vote/wizard"
)

// errAborted means the voter quit before submitting
var errAborted = errors.New("aborted")

// parseChoice accepts the wire names, their first letters and the Greek
// initials shown in the prompt (υ/κ/λ)
func parseChoice(s string) (models.VoteChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "a", "υ", "υπέρ", "υπερ":
		return models.VoteApprove, nil
	case "reject", "r", "κ", "κατά", "κατα":
		return models.VoteReject, nil
	case "abstain", "x", "λ", "λευκό", "λευκο":
		return models.VoteAbstain, nil
	}
	return "", fmt.Errorf("unknown choice %q", s)
}

// itemID resolves an agenda order number or an item ID to the item ID
func itemID(b models.BallotResponse, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		for _, item := range b.VotingItems {
			if item.Order == n {
				return item.ID, true
			}
		}
		return "", false
	}
	for _, item := range b.VotingItems {
		if item.ID == ref {
			return item.ID, true
		}
	}
	return "", false
}

// runScripted applies --vote flags and submits in one go
func runScripted(ctx context.Context, s *wizard.Session, votes []string, acceptTerms bool) error {
	for _, v := range votes {
		ref, raw, ok := strings.Cut(v, "=")
		if !ok {
			return fmt.Errorf("%w: %q is not <item>=<choice>", wizard.ErrInvalidChoice, v)
		}
		id, ok := itemID(s.Ballot(), ref)
		if !ok {
			return wizard.ErrUnknownItem
		}
		choice, err := parseChoice(raw)
		if err != nil {
			return wizard.ErrInvalidChoice
		}
		if err := s.Select(id, choice); err != nil {
			return err
		}
	}

	if err := s.Continue(); err != nil {
		return err
	}
	if err := s.SetConsent(acceptTerms); err != nil {
		return err
	}
	_, err := s.Submit(ctx)
	return err
}

const (
	selectionHelp = "Εντολές: <αρ. θέματος> <υ|κ|λ> για Υπέρ/Κατά/Λευκό, c συνέχεια, q έξοδος"
	reviewHelp    = "Εντολές: t όροι χρήσης, s υποβολή, b πίσω, q έξοδος"
)

// runInteractive drives the session from line-based terminal input until
// the votes are submitted or the voter quits
func runInteractive(ctx context.Context, s *wizard.Session, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)

	prompt := func() {
		if s.Step() == wizard.StepReview {
			printReview(out, s)
			fmt.Fprintln(out, reviewHelp)
		} else {
			printSelection(out, s)
			fmt.Fprintln(out, selectionHelp)
		}
		fmt.Fprint(out, "> ")
	}

	prompt()
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return errAborted
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			fmt.Fprint(out, "> ")
			continue
		}

		var err error
		switch cmd := strings.ToLower(fields[0]); {
		case cmd == "q":
			return errAborted
		case s.Step() == wizard.StepSelection && cmd == "c":
			err = s.Continue()
		case s.Step() == wizard.StepSelection && len(fields) == 2:
			err = selectFromInput(s, fields[0], fields[1])
		case s.Step() == wizard.StepReview && cmd == "t":
			err = s.SetConsent(!s.Consent().Accepted)
		case s.Step() == wizard.StepReview && cmd == "b":
			err = s.Back()
		case s.Step() == wizard.StepReview && cmd == "s":
			fmt.Fprintln(out, "Αποστολή...")
			if _, err = s.Submit(ctx); err == nil {
				return nil
			}
			if wizard.KindOf(err) == wizard.KindTokenInvalid {
				return err
			}
		default:
			fmt.Fprintln(out, "Άγνωστη εντολή.")
		}
		if err != nil {
			fmt.Fprintln(out, wizard.UserMessage(err))
		}
		prompt()
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return errAborted
}

func selectFromInput(s *wizard.Session, ref, raw string) error {
	id, ok := itemID(s.Ballot(), ref)
	if !ok {
		return wizard.ErrUnknownItem
	}
	choice, err := parseChoice(raw)
	if err != nil {
		return wizard.ErrInvalidChoice
	}
	return s.Select(id, choice)
}
