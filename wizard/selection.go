// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import "github.com/danielhkuo/condo-vote/models"

// Selection maps agenda item IDs to the voter's current choice.
// A missing key means nothing was chosen yet, never an abstention.
// The zero value accepts no items; use NewSelection.
type Selection struct {
	allowed map[string]struct{}
	choices map[string]models.VoteChoice
}

// NewSelection returns an empty selection limited to itemIDs
func NewSelection(itemIDs []string) Selection {
	allowed := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		allowed[id] = struct{}{}
	}
	return Selection{
		allowed: allowed,
		choices: make(map[string]models.VoteChoice),
	}
}

// Select sets or replaces the choice for itemID.
// On error the selection is left unchanged.
func (s *Selection) Select(itemID string, choice models.VoteChoice) error {
	if _, ok := s.allowed[itemID]; !ok {
		return ErrUnknownItem
	}
	if !choice.Valid() {
		return ErrInvalidChoice
	}
	if s.choices == nil {
		s.choices = make(map[string]models.VoteChoice)
	}
	s.choices[itemID] = choice
	return nil
}

// Get returns the choice for itemID, if any
func (s Selection) Get(itemID string) (models.VoteChoice, bool) {
	c, ok := s.choices[itemID]
	return c, ok
}

func (s Selection) Count() int {
	return len(s.choices)
}

// Snapshot returns a copy of the current choices
func (s Selection) Snapshot() map[string]models.VoteChoice {
	out := make(map[string]models.VoteChoice, len(s.choices))
	for k, v := range s.choices {
		out[k] = v
	}
	return out
}
