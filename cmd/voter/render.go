// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/condo-vote/models"
	"github.com/danielhkuo/condo-vote/wizard"
)

var choiceLabels = map[models.VoteChoice]string{
	models.VoteApprove: "Υπέρ",
	models.VoteReject:  "Κατά",
	models.VoteAbstain: "Λευκό",
}

var votingTypeLabels = map[string]string{
	models.VotingSimpleMajority:    "απλή πλειοψηφία",
	models.VotingQualifiedMajority: "αυξημένη πλειοψηφία",
	models.VotingUnanimous:         "ομοφωνία",
}

func choiceLabel(c models.VoteChoice) string {
	if l, ok := choiceLabels[c]; ok {
		return l
	}
	return string(c)
}

func printIntro(out io.Writer) {
	fmt.Fprintln(out, "Καλώς ήρθατε στην ηλεκτρονική ψηφοφορία της γενικής συνέλευσης.")
	fmt.Fprintln(out, "Επιλέξτε ψήφο για όσα θέματα θέλετε, ελέγξτε τις επιλογές σας,")
	fmt.Fprintln(out, "αποδεχτείτε τους όρους χρήσης και υποβάλετε. Μπορείτε να ψηφίσετε ξανά")
	fmt.Fprintln(out, "με τον ίδιο σύνδεσμο όσο η συνέλευση είναι ανοιχτή.")
	fmt.Fprintln(out)
}

func printBallot(out io.Writer, b models.BallotResponse) {
	fmt.Fprintln(out, b.Assembly.Title)
	fmt.Fprintln(out, strings.Repeat("=", len([]rune(b.Assembly.Title))))
	if b.Assembly.Location != "" {
		fmt.Fprintf(out, "Τόπος: %s\n", b.Assembly.Location)
	}
	if b.Assembly.ScheduledAt != nil {
		fmt.Fprintf(out, "Ημερομηνία: %s (%s)\n",
			b.Assembly.ScheduledAt.Local().Format("02/01/2006 15:04"),
			humanize.Time(*b.Assembly.ScheduledAt))
	}
	fmt.Fprintf(out, "Διαμέρισμα %s, %s, %s χιλιοστά\n\n",
		b.Attendee.Apartment, b.Attendee.OwnerName, humanize.Comma(int64(b.Attendee.Mills)))

	for _, item := range b.VotingItems {
		fmt.Fprintf(out, "%2d. %s", item.Order, item.Title)
		if l, ok := votingTypeLabels[item.VotingType]; ok {
			fmt.Fprintf(out, " [%s]", l)
		}
		fmt.Fprintln(out)
		if item.Description != "" {
			fmt.Fprintf(out, "    %s\n", item.Description)
		}
		if item.HasVoted && item.CurrentVote != nil {
			fmt.Fprintf(out, "    Καταχωρημένη ψήφος: %s\n", choiceLabel(*item.CurrentVote))
		}
	}
	if b.AllVoted {
		fmt.Fprintln(out, "\nΈχετε ήδη ψηφίσει σε όλα τα θέματα. Μια νέα υποβολή αντικαθιστά τις ψήφους σας.")
	}
	fmt.Fprintln(out)
}

// printSelection lists every item with the choice currently picked for it
func printSelection(out io.Writer, s *wizard.Session) {
	for _, item := range s.Ballot().VotingItems {
		mark := "-"
		if c, ok := s.Choice(item.ID); ok {
			mark = choiceLabel(c)
		}
		fmt.Fprintf(out, "%2d. %-40s %s\n", item.Order, item.Title, mark)
	}
}

func printReview(out io.Writer, s *wizard.Session) {
	fmt.Fprintln(out, "Έλεγχος επιλογών:")
	for _, item := range s.Ballot().VotingItems {
		if c, ok := s.Choice(item.ID); ok {
			fmt.Fprintf(out, "%2d. %-40s %s\n", item.Order, item.Title, choiceLabel(c))
		}
	}
	mark := " "
	if s.Consent().Accepted {
		mark = "x"
	}
	fmt.Fprintf(out, "[%s] Αποδέχομαι τους όρους χρήσης (έκδοση %s)\n", mark, s.Consent().Version)
}

func printReceipt(out io.Writer, recorded int) {
	if recorded == 1 {
		fmt.Fprintln(out, "Η ψήφος σας καταχωρήθηκε.")
		return
	}
	fmt.Fprintf(out, "Καταχωρήθηκαν %d ψήφοι.\n", recorded)
}
