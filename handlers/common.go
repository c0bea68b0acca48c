// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/condo-vote/auth"
	"github.com/danielhkuo/condo-vote/cliparse"
	"github.com/danielhkuo/condo-vote/middleware"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// requireAdmin validates X-Admin-Key against the {id} path value and
// writes the error response itself when it fails
func requireAdmin(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) (string, bool) {
	assemblyID := r.PathValue("id")
	if assemblyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "assembly_id is required")
		return "", false
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(assemblyID, adminKey, cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return "", false
	}

	return assemblyID, true
}

// assemblyStatus returns the status of an assembly, writing 404/500 on failure
func assemblyStatus(w http.ResponseWriter, q queryer, assemblyID string) (string, bool) {
	var status string
	err := q.QueryRow(`SELECT status FROM assembly WHERE id = $1`, assemblyID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Assembly not found")
		return "", false
	}
	if err != nil {
		slog.Error("failed to query assembly", "error", err, "assembly_id", assemblyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", false
	}
	return status, true
}
