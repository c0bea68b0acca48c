// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/condo-vote/auth"
	"github.com/danielhkuo/condo-vote/cliparse"
	"github.com/danielhkuo/condo-vote/db"
	"github.com/danielhkuo/condo-vote/models"
)

// SetupTestDB opens a fresh in-memory SQLite database with the full schema.
// Each call gets its own database; it is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.DatabaseSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  cliparse.DatabaseSQLite,
		AdminKeySalt:  "test-admin-salt",
		KioskSlugSalt: "test-kiosk-salt",
		PublicBaseURL: "http://localhost:3318",
	}
}

// CreateTestAssembly inserts an assembly with the given status and returns
// its ID and admin key. Open and closed assemblies get a kiosk slug.
func CreateTestAssembly(t *testing.T, conn *sql.DB, cfg cliparse.Config, status string) (assemblyID, adminKey string) {
	t.Helper()

	assemblyID = auth.NewID()
	adminKey = auth.GenerateAdminKey(assemblyID, cfg.AdminKeySalt)

	var slug *string
	if status == models.StatusOpen || status == models.StatusClosed {
		s := auth.GenerateKioskSlug(assemblyID, cfg.KioskSlugSalt)
		slug = &s
	}

	var closedAt *time.Time
	if status == models.StatusClosed {
		now := time.Now().UTC()
		closedAt = &now
	}

	_, err := conn.Exec(`
		INSERT INTO assembly (id, title, description, location, quorum_percent, status, kiosk_slug, closed_at, created_at)
		VALUES ($1, 'Τακτική Γενική Συνέλευση', 'Ετήσια συνέλευση', 'Πυλωτή', 50, $2, $3, $4, $5)
	`, assemblyID, status, slug, closedAt, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test assembly: %v", err)
	}

	return assemblyID, adminKey
}

// AddTestItem adds a voting agenda item and returns its ID
func AddTestItem(t *testing.T, conn *sql.DB, assemblyID string, order int, title, votingType string) string {
	t.Helper()

	itemID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO agenda_item (id, assembly_id, item_order, title, description, item_type, voting_type)
		VALUES ($1, $2, $3, $4, '', $5, $6)
	`, itemID, assemblyID, order, title, models.ItemTypeVoting, votingType)
	if err != nil {
		t.Fatalf("Failed to create test agenda item: %v", err)
	}

	return itemID
}

// AddTestInfoItem adds an informational (non-voting) agenda item
func AddTestInfoItem(t *testing.T, conn *sql.DB, assemblyID string, order int, title string) string {
	t.Helper()

	itemID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO agenda_item (id, assembly_id, item_order, title, description, item_type, voting_type)
		VALUES ($1, $2, $3, $4, '', $5, '')
	`, itemID, assemblyID, order, title, models.ItemTypeInformational)
	if err != nil {
		t.Fatalf("Failed to create test info item: %v", err)
	}

	return itemID
}

// AddTestAttendee registers an apartment and returns its ID and vote token
func AddTestAttendee(t *testing.T, conn *sql.DB, assemblyID, apartment string, mills int) (attendeeID, voteToken string) {
	t.Helper()

	attendeeID = auth.NewID()
	voteToken, err := auth.GenerateVoteToken()
	if err != nil {
		t.Fatalf("Failed to generate vote token: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO attendee (id, assembly_id, apartment, owner_name, email, mills, vote_token, created_at)
		VALUES ($1, $2, $3, 'Ιδιοκτήτης', 'owner@example.gr', $4, $5, $6)
	`, attendeeID, assemblyID, apartment, mills, voteToken, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test attendee: %v", err)
	}

	return attendeeID, voteToken
}

// CastTestVote stores a vote directly, bypassing the API
func CastTestVote(t *testing.T, conn *sql.DB, attendeeID, itemID string, choice models.VoteChoice) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO vote (attendee_id, agenda_item_id, vote, voted_via, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, attendeeID, itemID, string(choice), models.ChannelEmailVote, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
