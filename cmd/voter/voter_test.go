// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/condo-vote/models"
	"github.com/danielhkuo/condo-vote/router"
	"github.com/danielhkuo/condo-vote/testutil"
)

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in      string
		want    models.VoteChoice
		wantErr bool
	}{
		{"approve", models.VoteApprove, false},
		{"A", models.VoteApprove, false},
		{"υ", models.VoteApprove, false},
		{"reject", models.VoteReject, false},
		{"κ", models.VoteReject, false},
		{" abstain ", models.VoteAbstain, false},
		{"λ", models.VoteAbstain, false},
		{"yes", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := parseChoice(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseChoice(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseChoice(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenFromArg(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    string
		wantErr bool
	}{
		{"bare token", "abc123", "abc123", false},
		{"padded token", "  abc123\n", "abc123", false},
		{"public link", "https://condo.example.gr/vote-by-email/abc123", "abc123", false},
		{"api link", "http://localhost:3318/api/vote-by-email/abc123/", "abc123", false},
		{"empty", "   ", "", true},
		{"other link", "https://condo.example.gr/kiosk/abc123", "", true},
		{"link without token", "https://condo.example.gr/vote-by-email/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tokenFromArg(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

type voterFixture struct {
	db         *sql.DB
	srv        *httptest.Server
	attendeeID string
	token      string
	items      []string
}

func newVoterFixture(t *testing.T) *voterFixture {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	assemblyID, _ := testutil.CreateTestAssembly(t, conn, cfg, models.StatusOpen)
	items := []string{
		testutil.AddTestItem(t, conn, assemblyID, 1, "Έγκριση απολογισμού", models.VotingSimpleMajority),
		testutil.AddTestItem(t, conn, assemblyID, 2, "Βάψιμο κλιμακοστασίου", models.VotingSimpleMajority),
	}
	testutil.AddTestInfoItem(t, conn, assemblyID, 3, "Ενημέρωση")
	attendeeID, token := testutil.AddTestAttendee(t, conn, assemblyID, "Α1", 120)

	srv := httptest.NewServer(router.NewRouter(conn, cfg))
	t.Cleanup(srv.Close)

	return &voterFixture{db: conn, srv: srv, attendeeID: attendeeID, token: token, items: items}
}

func (f *voterFixture) vote(t *testing.T, itemID string) (models.VoteChoice, bool) {
	t.Helper()
	var v string
	err := f.db.QueryRow(`SELECT vote FROM vote WHERE attendee_id = $1 AND agenda_item_id = $2`,
		f.attendeeID, itemID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		t.Fatalf("Failed to read vote: %v", err)
	}
	return models.VoteChoice(v), true
}

func runCmd(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func fakeTerminal(t *testing.T) {
	orig := stdinIsTerminal
	stdinIsTerminal = func(io.Reader) bool { return true }
	t.Cleanup(func() { stdinIsTerminal = orig })
}

func TestScriptedVote(t *testing.T) {
	f := newVoterFixture(t)

	out, errOut, err := runCmd(t, "",
		f.srv.URL+"/vote-by-email/"+f.token,
		"--api", f.srv.URL, "--no-state",
		"--vote", "1=approve", "--vote", f.items[1]+"=κ",
		"--accept-terms",
	)
	if err != nil {
		t.Fatalf("Execute failed: %v (stderr %q)", err, errOut)
	}

	if !strings.Contains(out, "Καταχωρήθηκαν 2 ψήφοι") {
		t.Errorf("Expected receipt for 2 votes, got:\n%s", out)
	}
	if !strings.Contains(out, "Έγκριση απολογισμού") {
		t.Error("Expected ballot to be printed")
	}
	if strings.Contains(out, "Ενημέρωση") {
		t.Error("Informational item should not be on the ballot")
	}

	if v, ok := f.vote(t, f.items[0]); !ok || v != models.VoteApprove {
		t.Errorf("Item 1 vote = %q (%v), want approve", v, ok)
	}
	if v, ok := f.vote(t, f.items[1]); !ok || v != models.VoteReject {
		t.Errorf("Item 2 vote = %q (%v), want reject", v, ok)
	}
}

func TestScriptedVote_TermsNotAccepted(t *testing.T) {
	f := newVoterFixture(t)

	_, errOut, err := runCmd(t, "", f.token, "--api", f.srv.URL, "--no-state", "--vote", "1=approve")
	if !errors.Is(err, errReported) {
		t.Fatalf("Expected errReported, got %v", err)
	}
	if !strings.Contains(errOut, "όρους χρήσης") {
		t.Errorf("Expected consent message, got %q", errOut)
	}
	if _, ok := f.vote(t, f.items[0]); ok {
		t.Error("No vote may be stored without accepted terms")
	}
}

func TestScriptedVote_BadInput(t *testing.T) {
	f := newVoterFixture(t)

	tests := []struct {
		name string
		vote string
	}{
		{"unknown order", "9=approve"},
		{"bad choice", "1=maybe"},
		{"missing separator", "1approve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, err := runCmd(t, "", f.token, "--api", f.srv.URL, "--no-state", "--vote", tt.vote, "--accept-terms")
			if !errors.Is(err, errReported) {
				t.Fatalf("Expected errReported, got %v", err)
			}
			if errOut == "" {
				t.Error("Expected a message on stderr")
			}
		})
	}

	if _, ok := f.vote(t, f.items[0]); ok {
		t.Error("Bad input must not store votes")
	}
}

func TestInvalidToken(t *testing.T) {
	f := newVoterFixture(t)

	_, errOut, err := runCmd(t, "", "not-a-token", "--api", f.srv.URL, "--no-state", "--vote", "1=approve", "--accept-terms")
	if !errors.Is(err, errReported) {
		t.Fatalf("Expected errReported, got %v", err)
	}
	if errOut == "" {
		t.Error("Expected a message on stderr")
	}
}

func TestInteractiveNeedsTerminal(t *testing.T) {
	f := newVoterFixture(t)

	_, _, err := runCmd(t, "1 υ\n", f.token, "--api", f.srv.URL, "--no-state")
	if err == nil || errors.Is(err, errReported) {
		t.Fatalf("Expected a terminal error, got %v", err)
	}
	if _, ok := f.vote(t, f.items[0]); ok {
		t.Error("No vote expected")
	}
}

func TestInteractiveVote(t *testing.T) {
	fakeTerminal(t)
	f := newVoterFixture(t)

	// submit without terms is refused, then accepted after toggling
	input := strings.Join([]string{"1 υ", "2 λ", "c", "s", "t", "s"}, "\n") + "\n"
	out, errOut, err := runCmd(t, input, f.token, "--api", f.srv.URL, "--no-state")
	if err != nil {
		t.Fatalf("Execute failed: %v (stderr %q)", err, errOut)
	}

	if !strings.Contains(out, "Πρέπει να αποδεχθείτε") {
		t.Errorf("Expected consent prompt after first submit, got:\n%s", out)
	}
	if !strings.Contains(out, "Καταχωρήθηκαν 2 ψήφοι") {
		t.Errorf("Expected receipt, got:\n%s", out)
	}
	if v, _ := f.vote(t, f.items[1]); v != models.VoteAbstain {
		t.Errorf("Item 2 vote = %q, want abstain", v)
	}
}

func TestInteractiveQuit(t *testing.T) {
	fakeTerminal(t)
	f := newVoterFixture(t)

	out, _, err := runCmd(t, "1 υ\nq\n", f.token, "--api", f.srv.URL, "--no-state")
	if !errors.Is(err, errReported) {
		t.Fatalf("Expected errReported, got %v", err)
	}
	if !strings.Contains(out, "διακόπηκε") {
		t.Errorf("Expected abort notice, got:\n%s", out)
	}
	if _, ok := f.vote(t, f.items[0]); ok {
		t.Error("Quit must not store votes")
	}
}

func TestInteractiveEOF(t *testing.T) {
	fakeTerminal(t)
	f := newVoterFixture(t)

	_, _, err := runCmd(t, "1 υ\nc\n", f.token, "--api", f.srv.URL, "--no-state")
	if !errors.Is(err, errReported) {
		t.Fatalf("Expected errReported on EOF, got %v", err)
	}
	if _, ok := f.vote(t, f.items[0]); ok {
		t.Error("EOF must not store votes")
	}
}

func TestIntroShownOnce(t *testing.T) {
	f := newVoterFixture(t)
	stateDir := t.TempDir()

	args := []string{f.token, "--api", f.srv.URL, "--state-dir", stateDir, "--vote", "1=approve", "--accept-terms"}

	out, _, err := runCmd(t, "", args...)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if !strings.Contains(out, "Καλώς ήρθατε") {
		t.Error("Expected intro on first run")
	}

	// Re-voting is allowed while the assembly is open
	args[6] = "1=reject"
	out, _, err = runCmd(t, "", args...)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if strings.Contains(out, "Καλώς ήρθατε") {
		t.Error("Intro should not repeat")
	}
	if !strings.Contains(out, "Καταχωρημένη ψήφος: Υπέρ") {
		t.Error("Expected the prior vote on the ballot")
	}
	if !strings.Contains(out, "Η ψήφος σας καταχωρήθηκε") {
		t.Errorf("Expected single-vote receipt, got:\n%s", out)
	}
	if v, _ := f.vote(t, f.items[0]); v != models.VoteReject {
		t.Errorf("Vote = %q, want reject after re-vote", v)
	}
}
