// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
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

const defaultQuorumPercent = 50

type AssemblyHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAssemblyHandler(db *sql.DB, cfg cliparse.Config) *AssemblyHandler {
	return &AssemblyHandler{db: db, cfg: cfg}
}

// CreateAssembly handles POST /assemblies
func (h *AssemblyHandler) CreateAssembly(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssemblyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.QuorumPercent == 0 {
		req.QuorumPercent = defaultQuorumPercent
	}
	if req.QuorumPercent < 1 || req.QuorumPercent > 100 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "quorum_percent must be between 1 and 100")
		return
	}

	assemblyID := auth.NewID()
	adminKey := auth.GenerateAdminKey(assemblyID, h.cfg.AdminKeySalt)

	_, err := h.db.Exec(`
		INSERT INTO assembly (id, title, description, location, scheduled_at, quorum_percent, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, assemblyID, req.Title, req.Description, req.Location, req.ScheduledAt,
		req.QuorumPercent, models.StatusDraft, time.Now().UTC())

	if err != nil {
		slog.Error("failed to insert assembly", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create assembly")
		return
	}

	slog.Info("assembly created", "assembly_id", assemblyID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateAssemblyResponse{
		AssemblyID: assemblyID,
		AdminKey:   adminKey,
	})
}

// GetAssemblyAdmin handles GET /assemblies/{id}/admin
func (h *AssemblyHandler) GetAssemblyAdmin(w http.ResponseWriter, r *http.Request) {
	assemblyID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	assembly, err := loadAssembly(h.db, assemblyID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Assembly not found")
		return
	}
	if err != nil {
		slog.Error("failed to query assembly", "error", err, "assembly_id", assemblyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	items, err := loadAgendaItems(h.db, assemblyID)
	if err != nil {
		slog.Error("failed to query agenda items", "error", err, "assembly_id", assemblyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	attendees, err := loadAttendees(h.db, assemblyID)
	if err != nil {
		slog.Error("failed to query attendees", "error", err, "assembly_id", assemblyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AssemblyAdminView{
		Assembly:    assembly,
		AgendaItems: items,
		Attendees:   attendees,
	})
}

// AddAgendaItem handles POST /assemblies/{id}/items
func (h *AssemblyHandler) AddAgendaItem(w http.ResponseWriter, r *http.Request) {
	assemblyID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.AddAgendaItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.ItemType == "" {
		req.ItemType = models.ItemTypeVoting
	}
	switch req.ItemType {
	case models.ItemTypeVoting:
		if req.VotingType == "" {
			req.VotingType = models.VotingSimpleMajority
		}
		if !models.IsValidVotingType(req.VotingType) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "voting_type must be one of: simple_majority, qualified_majority, unanimous")
			return
		}
	case models.ItemTypeInformational:
		req.VotingType = ""
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "item_type must be voting or informational")
		return
	}

	status, ok := assemblyStatus(w, h.db, assemblyID)
	if !ok {
		return
	}
	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot add agenda items to a non-draft assembly")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var order int
	err = tx.QueryRow(`
		SELECT COALESCE(MAX(item_order), 0) + 1 FROM agenda_item WHERE assembly_id = $1
	`, assemblyID).Scan(&order)
	if err != nil {
		slog.Error("failed to compute agenda order", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	itemID := auth.NewID()
	_, err = tx.Exec(`
		INSERT INTO agenda_item (id, assembly_id, item_order, title, description, item_type, voting_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, itemID, assemblyID, order, req.Title, req.Description, req.ItemType, req.VotingType)

	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Concurrent agenda change, retry")
			return
		}
		slog.Error("failed to insert agenda item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create agenda item")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create agenda item")
		return
	}

	slog.Info("agenda item added", "assembly_id", assemblyID, "agenda_item_id", itemID, "order", order)

	middleware.JSONResponse(w, http.StatusCreated, models.AddAgendaItemResponse{
		AgendaItemID: itemID,
		Order:        order,
	})
}

// OpenAssembly handles POST /assemblies/{id}/open
// Moves a draft assembly to open and hands out its kiosk slug
func (h *AssemblyHandler) OpenAssembly(w http.ResponseWriter, r *http.Request) {
	assemblyID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	status, ok := assemblyStatus(w, h.db, assemblyID)
	if !ok {
		return
	}
	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Assembly is not in draft status")
		return
	}

	var votingItems int
	err := h.db.QueryRow(`
		SELECT COUNT(*) FROM agenda_item WHERE assembly_id = $1 AND item_type = $2
	`, assemblyID, models.ItemTypeVoting).Scan(&votingItems)
	if err != nil {
		slog.Error("failed to count voting items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if votingItems == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Assembly needs at least one voting item")
		return
	}

	slug := auth.GenerateKioskSlug(assemblyID, h.cfg.KioskSlugSalt)

	// Status guard in WHERE makes a concurrent open a no-op
	res, err := h.db.Exec(`
		UPDATE assembly SET status = $1, kiosk_slug = $2 WHERE id = $3 AND status = $4
	`, models.StatusOpen, slug, assemblyID, models.StatusDraft)
	if err != nil {
		slog.Error("failed to open assembly", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to open assembly")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Assembly is not in draft status")
		return
	}

	slog.Info("assembly opened", "assembly_id", assemblyID)

	middleware.JSONResponse(w, http.StatusOK, models.OpenAssemblyResponse{
		KioskSlug: slug,
		KioskURL:  h.cfg.PublicBaseURL + "/kiosk/" + slug,
	})
}

// CloseAssembly handles POST /assemblies/{id}/close
// Stops voting and stores the final tally
func (h *AssemblyHandler) CloseAssembly(w http.ResponseWriter, r *http.Request) {
	assemblyID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	status, ok := assemblyStatus(w, h.db, assemblyID)
	if !ok {
		return
	}
	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Assembly is not open")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	closedAt := time.Now().UTC()
	res, err := tx.Exec(`
		UPDATE assembly SET status = $1, closed_at = $2 WHERE id = $3 AND status = $4
	`, models.StatusClosed, closedAt, assemblyID, models.StatusOpen)
	if err != nil {
		slog.Error("failed to close assembly", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close assembly")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Assembly is not open")
		return
	}

	tally, err := ComputeTally(tx, assemblyID)
	if err != nil {
		slog.Error("failed to compute tally", "error", err, "assembly_id", assemblyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
		return
	}

	payload, err := json.Marshal(tally)
	if err != nil {
		slog.Error("failed to marshal tally", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO result_snapshot (id, assembly_id, computed_at, payload)
		VALUES ($1, $2, $3, $4)
	`, auth.NewID(), assemblyID, tally.ComputedAt, string(payload))
	if err != nil {
		slog.Error("failed to store result snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store results")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close assembly")
		return
	}

	slog.Info("assembly closed", "assembly_id", assemblyID, "quorum_reached", tally.QuorumReached)

	middleware.JSONResponse(w, http.StatusOK, models.CloseAssemblyResponse{
		ClosedAt: closedAt,
		Tally:    tally,
	})
}

func loadAssembly(q queryer, assemblyID string) (models.Assembly, error) {
	var a models.Assembly
	err := q.QueryRow(`
		SELECT id, title, description, location, scheduled_at, quorum_percent,
		       status, kiosk_slug, closed_at, created_at
		FROM assembly
		WHERE id = $1
	`, assemblyID).Scan(
		&a.ID, &a.Title, &a.Description, &a.Location, &a.ScheduledAt, &a.QuorumPercent,
		&a.Status, &a.KioskSlug, &a.ClosedAt, &a.CreatedAt,
	)
	return a, err
}

func loadAgendaItems(q queryer, assemblyID string) ([]models.AgendaItem, error) {
	rows, err := q.Query(`
		SELECT id, assembly_id, item_order, title, description, item_type, voting_type
		FROM agenda_item
		WHERE assembly_id = $1
		ORDER BY item_order
	`, assemblyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.AgendaItem{}
	for rows.Next() {
		var it models.AgendaItem
		if err := rows.Scan(&it.ID, &it.AssemblyID, &it.Order, &it.Title,
			&it.Description, &it.ItemType, &it.VotingType); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
