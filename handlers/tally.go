// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"math"
	"time"

	"github.com/danielhkuo/condo-vote/models"
)

// ComputeTally aggregates the votes of an assembly weighted by mills.
// q may be a transaction so the tally matches the state being closed.
func ComputeTally(q queryer, assemblyID string) (models.Tally, error) {
	tally := models.Tally{
		AssemblyID: assemblyID,
		ComputedAt: time.Now().UTC(),
	}

	err := q.QueryRow(`
		SELECT quorum_percent FROM assembly WHERE id = $1
	`, assemblyID).Scan(&tally.QuorumPercent)
	if err != nil {
		return models.Tally{}, fmt.Errorf("failed to get quorum: %w", err)
	}

	err = q.QueryRow(`
		SELECT COALESCE(SUM(mills), 0) FROM attendee WHERE assembly_id = $1
	`, assemblyID).Scan(&tally.TotalMills)
	if err != nil {
		return models.Tally{}, fmt.Errorf("failed to sum mills: %w", err)
	}

	// An apartment counts towards participation once it voted on any item
	err = q.QueryRow(`
		SELECT COALESCE(SUM(a.mills), 0)
		FROM attendee a
		WHERE a.assembly_id = $1
		  AND EXISTS(SELECT 1 FROM vote v WHERE v.attendee_id = a.id)
	`, assemblyID).Scan(&tally.VotedMills)
	if err != nil {
		return models.Tally{}, fmt.Errorf("failed to sum voted mills: %w", err)
	}

	tally.ParticipationPercent = percentOf(tally.VotedMills, tally.TotalMills)
	tally.QuorumReached = tally.TotalMills > 0 &&
		tally.VotedMills*100 >= tally.QuorumPercent*tally.TotalMills

	items, err := getItemTallies(q, assemblyID)
	if err != nil {
		return models.Tally{}, fmt.Errorf("failed to aggregate votes: %w", err)
	}

	for i := range items {
		items[i].Decision = decide(items[i], tally.QuorumReached)
	}
	tally.Items = items

	return tally, nil
}

// getItemTallies returns one zeroed ItemTally per voting item in agenda
// order, filled from the grouped vote rows
func getItemTallies(q queryer, assemblyID string) ([]models.ItemTally, error) {
	rows, err := q.Query(`
		SELECT id, item_order, title, voting_type
		FROM agenda_item
		WHERE assembly_id = $1 AND item_type = $2
		ORDER BY item_order
	`, assemblyID, models.ItemTypeVoting)
	if err != nil {
		return nil, err
	}

	var items []models.ItemTally
	index := make(map[string]int)
	for rows.Next() {
		var it models.ItemTally
		if err := rows.Scan(&it.AgendaItemID, &it.Order, &it.Title, &it.VotingType); err != nil {
			rows.Close()
			return nil, err
		}
		index[it.AgendaItemID] = len(items)
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = q.Query(`
		SELECT v.agenda_item_id, v.vote, COUNT(*), COALESCE(SUM(a.mills), 0)
		FROM vote v
		JOIN attendee a ON a.id = v.attendee_id
		WHERE a.assembly_id = $1
		GROUP BY v.agenda_item_id, v.vote
	`, assemblyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var itemID, vote string
		var count, mills int
		if err := rows.Scan(&itemID, &vote, &count, &mills); err != nil {
			return nil, err
		}
		i, ok := index[itemID]
		if !ok {
			// Item was switched to informational after votes were cast
			continue
		}
		switch models.VoteChoice(vote) {
		case models.VoteApprove:
			items[i].Approve, items[i].ApproveMills = count, mills
		case models.VoteReject:
			items[i].Reject, items[i].RejectMills = count, mills
		case models.VoteAbstain:
			items[i].Abstain, items[i].AbstainMills = count, mills
		}
	}

	return items, rows.Err()
}

// decide applies the decision rule of the item's voting type
func decide(it models.ItemTally, quorumReached bool) string {
	if !quorumReached {
		return models.DecisionNoQuorum
	}

	approved := false
	switch it.VotingType {
	case models.VotingQualifiedMajority:
		// Two thirds of the mills that took part, abstentions included
		voted := it.ApproveMills + it.RejectMills + it.AbstainMills
		approved = voted > 0 && it.ApproveMills*3 >= voted*2
	case models.VotingUnanimous:
		approved = it.Approve > 0 && it.Reject == 0
	default:
		approved = it.ApproveMills > it.RejectMills
	}

	if approved {
		return models.DecisionApproved
	}
	return models.DecisionRejected
}

// percentOf returns part/total as a percentage rounded to two decimals
func percentOf(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}
