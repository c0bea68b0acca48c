// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/condo-vote/auth"
	"github.com/danielhkuo/condo-vote/models"
	"github.com/danielhkuo/condo-vote/testutil"
)

func TestGetResults_Live(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	assemblyID, adminKey := testutil.CreateTestAssembly(t, db, cfg, models.StatusOpen)
	item := testutil.AddTestItem(t, db, assemblyID, 1, "Θέμα", models.VotingSimpleMajority)
	a1, _ := testutil.AddTestAttendee(t, db, assemblyID, "Α1", 600)
	testutil.AddTestAttendee(t, db, assemblyID, "Α2", 400)
	testutil.CastTestVote(t, db, a1, item, models.VoteApprove)

	req := adminRequest("GET", "/assemblies/"+assemblyID+"/results", assemblyID, adminKey, nil)
	w := httptest.NewRecorder()

	handler.GetResults(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var tally models.Tally
	testutil.AssertJSON(t, w, &tally)

	if tally.AssemblyID != assemblyID {
		t.Errorf("Expected assembly %s, got %s", assemblyID, tally.AssemblyID)
	}
	if tally.VotedMills != 600 {
		t.Errorf("Expected 600 voted mills, got %d", tally.VotedMills)
	}
	if len(tally.Items) != 1 || tally.Items[0].Decision != models.DecisionApproved {
		t.Errorf("Unexpected items: %+v", tally.Items)
	}
}

func TestGetResults_ClosedUsesSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	assemblies := NewAssemblyHandler(db, cfg)
	handler := NewResultsHandler(db, cfg)

	assemblyID, adminKey := testutil.CreateTestAssembly(t, db, cfg, models.StatusOpen)
	item := testutil.AddTestItem(t, db, assemblyID, 1, "Θέμα", models.VotingSimpleMajority)
	a1, _ := testutil.AddTestAttendee(t, db, assemblyID, "Α1", 600)
	a2, _ := testutil.AddTestAttendee(t, db, assemblyID, "Α2", 400)
	testutil.CastTestVote(t, db, a1, item, models.VoteApprove)

	req := adminRequest("POST", "/assemblies/"+assemblyID+"/close", assemblyID, adminKey, nil)
	w := httptest.NewRecorder()
	assemblies.CloseAssembly(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	// A vote slipped in after closing must not change the published result
	testutil.CastTestVote(t, db, a2, item, models.VoteReject)

	req = adminRequest("GET", "/assemblies/"+assemblyID+"/results", assemblyID, adminKey, nil)
	w = httptest.NewRecorder()
	handler.GetResults(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var tally models.Tally
	testutil.AssertJSON(t, w, &tally)

	if tally.VotedMills != 600 {
		t.Errorf("Expected snapshot voted mills 600, got %d", tally.VotedMills)
	}
	if tally.Items[0].Reject != 0 {
		t.Errorf("Snapshot should not include late votes, got %d rejects", tally.Items[0].Reject)
	}
}

func TestGetResults_Unauthorized(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	assemblyID, _ := testutil.CreateTestAssembly(t, db, cfg, models.StatusOpen)

	req := adminRequest("GET", "/assemblies/"+assemblyID+"/results", assemblyID, "nope", nil)
	w := httptest.NewRecorder()

	handler.GetResults(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestGetKiosk(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	assemblyID, _ := testutil.CreateTestAssembly(t, db, cfg, models.StatusOpen)
	item1 := testutil.AddTestItem(t, db, assemblyID, 1, "Θέμα 1", models.VotingSimpleMajority)
	item2 := testutil.AddTestItem(t, db, assemblyID, 2, "Θέμα 2", models.VotingSimpleMajority)
	a1, _ := testutil.AddTestAttendee(t, db, assemblyID, "Α1", 250)
	testutil.AddTestAttendee(t, db, assemblyID, "Α2", 500)
	testutil.AddTestAttendee(t, db, assemblyID, "Α3", 250)
	testutil.CastTestVote(t, db, a1, item1, models.VoteApprove)
	testutil.CastTestVote(t, db, a1, item2, models.VoteReject)

	slug := auth.GenerateKioskSlug(assemblyID, cfg.KioskSlugSalt)

	tests := []struct {
		name           string
		slug           string
		expectedStatus int
	}{
		{"known slug", slug, http.StatusOK},
		{"unknown slug", "zzzzzzzzzzzz", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/kiosk/"+tt.slug, nil, nil)
			req.SetPathValue("slug", tt.slug)
			w := httptest.NewRecorder()

			handler.GetKiosk(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus != http.StatusOK {
				return
			}

			var view models.KioskView
			testutil.AssertJSON(t, w, &view)

			if view.Status != models.StatusOpen {
				t.Errorf("Expected open status, got %s", view.Status)
			}
			if view.TotalAttendees != 3 || view.VotedAttendees != 1 {
				t.Errorf("Expected 1/3 voted, got %d/%d", view.VotedAttendees, view.TotalAttendees)
			}
			if view.ParticipationPercent != 25 {
				t.Errorf("Expected 25%% participation, got %v", view.ParticipationPercent)
			}
		})
	}
}
