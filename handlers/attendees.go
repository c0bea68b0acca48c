// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/condo-vote/auth"
	"github.com/danielhkuo/condo-vote/cliparse"
	"github.com/danielhkuo/condo-vote/db"
	"github.com/danielhkuo/condo-vote/middleware"
	"github.com/danielhkuo/condo-vote/models"
)

type AttendeeHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAttendeeHandler(db *sql.DB, cfg cliparse.Config) *AttendeeHandler {
	return &AttendeeHandler{db: db, cfg: cfg}
}

// AddAttendee handles POST /assemblies/{id}/attendees
// Registers an apartment and issues the vote token for its e-mail link
func (h *AttendeeHandler) AddAttendee(w http.ResponseWriter, r *http.Request) {
	assemblyID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.AddAttendeeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Apartment = strings.TrimSpace(req.Apartment)
	req.OwnerName = strings.TrimSpace(req.OwnerName)
	if req.Apartment == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "apartment is required")
		return
	}
	if req.OwnerName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "owner_name is required")
		return
	}
	if req.Mills <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mills must be positive")
		return
	}

	status, ok := assemblyStatus(w, h.db, assemblyID)
	if !ok {
		return
	}
	if status == models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusConflict, "Assembly is closed")
		return
	}

	voteToken, err := auth.GenerateVoteToken()
	if err != nil {
		slog.Error("failed to generate vote token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add attendee")
		return
	}

	attendeeID := auth.NewID()
	_, err = h.db.Exec(`
		INSERT INTO attendee (id, assembly_id, apartment, owner_name, email, mills, vote_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, attendeeID, assemblyID, req.Apartment, req.OwnerName, strings.TrimSpace(req.Email),
		req.Mills, voteToken, time.Now().UTC())

	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Apartment already registered for this assembly")
			return
		}
		slog.Error("failed to insert attendee", "error", err, "assembly_id", assemblyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add attendee")
		return
	}

	slog.Info("attendee added", "assembly_id", assemblyID, "attendee_id", attendeeID, "mills", req.Mills)

	middleware.JSONResponse(w, http.StatusCreated, models.AddAttendeeResponse{
		AttendeeID: attendeeID,
		VoteToken:  voteToken,
		VoteURL:    h.cfg.PublicBaseURL + "/vote-by-email/" + voteToken,
	})
}

// ListAttendees handles GET /assemblies/{id}/attendees
func (h *AttendeeHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	assemblyID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	if _, ok := assemblyStatus(w, h.db, assemblyID); !ok {
		return
	}

	attendees, err := loadAttendees(h.db, assemblyID)
	if err != nil {
		slog.Error("failed to query attendees", "error", err, "assembly_id", assemblyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, attendees)
}

// loadAttendees lists attendees ordered by apartment, with has_voted set
// when at least one vote row exists
func loadAttendees(q queryer, assemblyID string) ([]models.Attendee, error) {
	rows, err := q.Query(`
		SELECT a.id, a.assembly_id, a.apartment, a.owner_name, a.email, a.mills, a.created_at,
		       EXISTS(SELECT 1 FROM vote v WHERE v.attendee_id = a.id)
		FROM attendee a
		WHERE a.assembly_id = $1
		ORDER BY a.apartment
	`, assemblyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attendees := []models.Attendee{}
	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.ID, &a.AssemblyID, &a.Apartment, &a.OwnerName,
			&a.Email, &a.Mills, &a.CreatedAt, &a.HasVoted); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}
