// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/condo-vote/auth"
	"github.com/danielhkuo/condo-vote/cliparse"
	"github.com/danielhkuo/condo-vote/middleware"
	"github.com/danielhkuo/condo-vote/models"
)

// Voter-facing messages. These are rendered verbatim by clients.
const (
	msgInvalidLink      = "Ο σύνδεσμος ψηφοφορίας δεν είναι έγκυρος"
	msgVotingNotOpen    = "Η ψηφοφορία δεν έχει ξεκινήσει ακόμη"
	msgVotingClosed     = "Η ψηφοφορία έχει ολοκληρωθεί"
	msgInvalidRequest   = "Μη έγκυρο αίτημα"
	msgTermsRequired    = "Πρέπει να αποδεχθείτε τους όρους χρήσης για να ψηφίσετε"
	msgNoVotes          = "Δεν έχετε επιλέξει ψήφο για κανένα θέμα"
	msgInvalidChoice    = "Μη έγκυρη επιλογή ψήφου"
	msgUnknownItem      = "Το θέμα δεν ανήκει σε αυτή την ψηφοφορία"
	msgServerError      = "Παρουσιάστηκε σφάλμα. Δοκιμάστε ξανά αργότερα"
	msgVoteSubmitFailed = "Η καταχώρηση της ψήφου απέτυχε. Δοκιμάστε ξανά"
)

type VoteByEmailHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoteByEmailHandler(db *sql.DB, cfg cliparse.Config) *VoteByEmailHandler {
	return &VoteByEmailHandler{db: db, cfg: cfg}
}

// tokenHolder is the attendee and assembly state behind a vote token
type tokenHolder struct {
	attendeeID string
	attendee   models.BallotAttendee
	assembly   models.BallotAssembly
}

// resolveToken looks up the attendee for the {token} path value and writes
// the voter-facing error itself when the token cannot be used for voting
func (h *VoteByEmailHandler) resolveToken(w http.ResponseWriter, r *http.Request) (tokenHolder, bool) {
	token := r.PathValue("token")
	if err := auth.CheckVoteTokenFormat(token); err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, msgInvalidLink)
		return tokenHolder{}, false
	}

	var th tokenHolder
	err := h.db.QueryRow(`
		SELECT a.id, a.apartment, a.owner_name, a.mills,
		       s.id, s.title, s.description, s.location, s.scheduled_at, s.status
		FROM attendee a
		JOIN assembly s ON s.id = a.assembly_id
		WHERE a.vote_token = $1
	`, token).Scan(
		&th.attendeeID, &th.attendee.Apartment, &th.attendee.OwnerName, &th.attendee.Mills,
		&th.assembly.ID, &th.assembly.Title, &th.assembly.Description, &th.assembly.Location,
		&th.assembly.ScheduledAt, &th.assembly.Status,
	)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, msgInvalidLink)
		return tokenHolder{}, false
	}
	if err != nil {
		slog.Error("failed to resolve vote token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgServerError)
		return tokenHolder{}, false
	}

	switch th.assembly.Status {
	case models.StatusOpen:
		return th, true
	case models.StatusClosed:
		middleware.ErrorResponse(w, http.StatusConflict, msgVotingClosed)
	default:
		middleware.ErrorResponse(w, http.StatusConflict, msgVotingNotOpen)
	}
	return tokenHolder{}, false
}

// GetBallot handles GET /api/vote-by-email/{token}
func (h *VoteByEmailHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	th, ok := h.resolveToken(w, r)
	if !ok {
		return
	}

	items, err := loadVotingItems(h.db, th.assembly.ID, th.attendeeID)
	if err != nil {
		slog.Error("failed to load voting items", "error", err, "assembly_id", th.assembly.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgServerError)
		return
	}

	allVoted := len(items) > 0
	for _, it := range items {
		if !it.HasVoted {
			allVoted = false
			break
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.BallotResponse{
		Valid:       true,
		Assembly:    th.assembly,
		Attendee:    th.attendee,
		VotingItems: items,
		AllVoted:    allVoted,
	})
}

// SubmitVotes handles POST /api/vote-by-email/{token}
// Votes are upserted per agenda item, so resubmitting replaces earlier choices
func (h *VoteByEmailHandler) SubmitVotes(w http.ResponseWriter, r *http.Request) {
	th, ok := h.resolveToken(w, r)
	if !ok {
		return
	}

	var req models.SubmitVotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if !req.TermsAccepted || req.TermsVersion == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgTermsRequired)
		return
	}
	if req.TermsAcceptedVia == "" {
		req.TermsAcceptedVia = models.ChannelEmailVote
	}
	if len(req.Votes) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgNoVotes)
		return
	}

	validItems, err := loadVotingItemIDs(h.db, th.assembly.ID)
	if err != nil {
		slog.Error("failed to load voting item ids", "error", err, "assembly_id", th.assembly.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgServerError)
		return
	}

	// Later entries for the same item win
	choices := make(map[string]models.VoteChoice, len(req.Votes))
	for _, v := range req.Votes {
		if !v.Vote.Valid() {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgInvalidChoice)
			return
		}
		if !validItems[v.AgendaItemID] {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgUnknownItem)
			return
		}
		choices[v.AgendaItemID] = v.Vote
	}

	now := time.Now().UTC()
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt)

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgVoteSubmitFailed)
		return
	}
	defer tx.Rollback()

	for itemID, choice := range choices {
		_, err = tx.Exec(`
			INSERT INTO vote (attendee_id, agenda_item_id, vote, voted_via, submitted_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (attendee_id, agenda_item_id)
			DO UPDATE SET vote = excluded.vote, voted_via = excluded.voted_via, submitted_at = excluded.submitted_at
		`, th.attendeeID, itemID, string(choice), req.TermsAcceptedVia, now)
		if err != nil {
			slog.Error("failed to upsert vote", "error", err, "agenda_item_id", itemID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, msgVoteSubmitFailed)
			return
		}
	}

	_, err = tx.Exec(`
		INSERT INTO terms_acceptance (id, attendee_id, terms_version, accepted_via, accepted_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, auth.NewID(), th.attendeeID, req.TermsVersion, req.TermsAcceptedVia, now, ipHash, r.UserAgent())
	if err != nil {
		slog.Error("failed to record terms acceptance", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgVoteSubmitFailed)
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgVoteSubmitFailed)
		return
	}

	slog.Info("votes recorded",
		"assembly_id", th.assembly.ID,
		"attendee_id", th.attendeeID,
		"votes", len(choices),
		"terms_version", req.TermsVersion,
	)

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVotesResponse{
		VotesRecorded: len(choices),
	})
}

// loadVotingItems returns the voting-type agenda items of an assembly in
// agenda order, marked with the attendee's current vote where one exists
func loadVotingItems(q queryer, assemblyID, attendeeID string) ([]models.VotingItem, error) {
	rows, err := q.Query(`
		SELECT ai.id, ai.item_order, ai.title, ai.description, ai.voting_type, v.vote
		FROM agenda_item ai
		LEFT JOIN vote v ON v.agenda_item_id = ai.id AND v.attendee_id = $1
		WHERE ai.assembly_id = $2 AND ai.item_type = $3
		ORDER BY ai.item_order
	`, attendeeID, assemblyID, models.ItemTypeVoting)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.VotingItem{}
	for rows.Next() {
		var it models.VotingItem
		var current sql.NullString
		if err := rows.Scan(&it.ID, &it.Order, &it.Title, &it.Description, &it.VotingType, &current); err != nil {
			return nil, err
		}
		if current.Valid {
			choice := models.VoteChoice(current.String)
			it.HasVoted = true
			it.CurrentVote = &choice
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func loadVotingItemIDs(q queryer, assemblyID string) (map[string]bool, error) {
	rows, err := q.Query(`
		SELECT id FROM agenda_item WHERE assembly_id = $1 AND item_type = $2
	`, assemblyID, models.ItemTypeVoting)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
