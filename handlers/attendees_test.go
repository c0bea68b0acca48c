// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/condo-vote/auth"
	"github.com/danielhkuo/condo-vote/models"
	"github.com/danielhkuo/condo-vote/testutil"
)

func TestAddAttendee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAttendeeHandler(db, cfg)

	assemblyID, adminKey := testutil.CreateTestAssembly(t, db, cfg, models.StatusDraft)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "valid attendee",
			body:           models.AddAttendeeRequest{Apartment: "Α1", OwnerName: "Μαρία Παπαδοπούλου", Email: "maria@example.gr", Mills: 120},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate apartment",
			body:           models.AddAttendeeRequest{Apartment: "Α1", OwnerName: "Άλλος", Mills: 10},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing apartment",
			body:           models.AddAttendeeRequest{OwnerName: "Γιώργος", Mills: 10},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing owner",
			body:           models.AddAttendeeRequest{Apartment: "Β1", Mills: 10},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero mills",
			body:           models.AddAttendeeRequest{Apartment: "Β2", OwnerName: "Νίκος"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			body:           "invalid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := adminRequest("POST", "/assemblies/"+assemblyID+"/attendees", assemblyID, adminKey, tt.body)
			w := httptest.NewRecorder()

			handler.AddAttendee(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.AddAttendeeResponse
			testutil.AssertJSON(t, w, &resp)

			if err := auth.CheckVoteTokenFormat(resp.VoteToken); err != nil {
				t.Errorf("Issued token has bad format: %v", err)
			}
			if !strings.HasSuffix(resp.VoteURL, "/vote-by-email/"+resp.VoteToken) {
				t.Errorf("Vote URL %s does not end with token", resp.VoteURL)
			}
			if !strings.HasPrefix(resp.VoteURL, cfg.PublicBaseURL) {
				t.Errorf("Vote URL %s does not use the public base URL", resp.VoteURL)
			}
		})
	}
}

func TestAddAttendee_ClosedAssembly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAttendeeHandler(db, cfg)

	assemblyID, adminKey := testutil.CreateTestAssembly(t, db, cfg, models.StatusClosed)

	req := adminRequest("POST", "/assemblies/"+assemblyID+"/attendees", assemblyID, adminKey,
		models.AddAttendeeRequest{Apartment: "Α1", OwnerName: "Ελένη", Mills: 50})
	w := httptest.NewRecorder()

	handler.AddAttendee(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestListAttendees(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAttendeeHandler(db, cfg)

	assemblyID, adminKey := testutil.CreateTestAssembly(t, db, cfg, models.StatusOpen)
	item := testutil.AddTestItem(t, db, assemblyID, 1, "Θέμα", models.VotingSimpleMajority)
	testutil.AddTestAttendee(t, db, assemblyID, "Β1", 80)
	voter, _ := testutil.AddTestAttendee(t, db, assemblyID, "Α1", 120)
	testutil.CastTestVote(t, db, voter, item, models.VoteAbstain)

	req := adminRequest("GET", "/assemblies/"+assemblyID+"/attendees", assemblyID, adminKey, nil)
	w := httptest.NewRecorder()

	handler.ListAttendees(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var attendees []models.Attendee
	testutil.AssertJSON(t, w, &attendees)

	if len(attendees) != 2 {
		t.Fatalf("Expected 2 attendees, got %d", len(attendees))
	}
	if attendees[0].Apartment != "Α1" || attendees[1].Apartment != "Β1" {
		t.Errorf("Attendees not ordered by apartment: %s, %s", attendees[0].Apartment, attendees[1].Apartment)
	}
	if !attendees[0].HasVoted || attendees[1].HasVoted {
		t.Error("has_voted flags are wrong")
	}
	if attendees[0].VoteToken != "" {
		t.Error("Vote token must not be exposed in listings")
	}
}

func TestListAttendees_Unauthorized(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAttendeeHandler(db, cfg)

	assemblyID, _ := testutil.CreateTestAssembly(t, db, cfg, models.StatusOpen)

	req := adminRequest("GET", "/assemblies/"+assemblyID+"/attendees", assemblyID, "", nil)
	w := httptest.NewRecorder()

	handler.ListAttendees(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}
