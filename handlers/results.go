// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/condo-vote/cliparse"
	"github.com/danielhkuo/condo-vote/middleware"
	"github.com/danielhkuo/condo-vote/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetResults handles GET /assemblies/{id}/results
// Closed assemblies return the stored snapshot; open ones a live tally
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	assemblyID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	status, ok := assemblyStatus(w, h.db, assemblyID)
	if !ok {
		return
	}

	if status == models.StatusClosed {
		var payload string
		err := h.db.QueryRow(`
			SELECT payload FROM result_snapshot
			WHERE assembly_id = $1
			ORDER BY computed_at DESC
			LIMIT 1
		`, assemblyID).Scan(&payload)
		if err == nil {
			var tally models.Tally
			if err := json.Unmarshal([]byte(payload), &tally); err != nil {
				slog.Error("failed to decode result snapshot", "error", err, "assembly_id", assemblyID)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Corrupt result snapshot")
				return
			}
			middleware.JSONResponse(w, http.StatusOK, tally)
			return
		}
		if err != sql.ErrNoRows {
			slog.Error("failed to query result snapshot", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		slog.Warn("closed assembly without snapshot, computing live", "assembly_id", assemblyID)
	}

	tally, err := ComputeTally(h.db, assemblyID)
	if err != nil {
		slog.Error("failed to compute tally", "error", err, "assembly_id", assemblyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, tally)
}

// GetKiosk handles GET /kiosk/{slug}
// Public lobby display: participation only, never per-item results
func (h *ResultsHandler) GetKiosk(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	var assemblyID string
	var view models.KioskView
	err := h.db.QueryRow(`
		SELECT id, title, status, scheduled_at FROM assembly WHERE kiosk_slug = $1
	`, slug).Scan(&assemblyID, &view.Title, &view.Status, &view.ScheduledAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Assembly not found")
		return
	}
	if err != nil {
		slog.Error("failed to query assembly by kiosk slug", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var totalMills, votedMills int
	err = h.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN EXISTS(SELECT 1 FROM vote v WHERE v.attendee_id = a.id) THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(a.mills), 0),
		       COALESCE(SUM(CASE WHEN EXISTS(SELECT 1 FROM vote v WHERE v.attendee_id = a.id) THEN a.mills ELSE 0 END), 0)
		FROM attendee a
		WHERE a.assembly_id = $1
	`, assemblyID).Scan(&view.TotalAttendees, &view.VotedAttendees, &totalMills, &votedMills)
	if err != nil {
		slog.Error("failed to count participation", "error", err, "assembly_id", assemblyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	view.ParticipationPercent = percentOf(votedMills, totalMills)

	middleware.JSONResponse(w, http.StatusOK, view)
}
