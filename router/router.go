// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/condo-vote/cliparse"
	"github.com/danielhkuo/condo-vote/handlers"
	"github.com/danielhkuo/condo-vote/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	assemblyHandler := handlers.NewAssemblyHandler(db, cfg)
	attendeeHandler := handlers.NewAttendeeHandler(db, cfg)
	voteHandler := handlers.NewVoteByEmailHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Assembly management (admin operations)
	mux.HandleFunc("POST /assemblies", middleware.WithLogging(assemblyHandler.CreateAssembly))
	mux.HandleFunc("GET /assemblies/{id}/admin", middleware.WithLogging(assemblyHandler.GetAssemblyAdmin))
	mux.HandleFunc("POST /assemblies/{id}/items", middleware.WithLogging(assemblyHandler.AddAgendaItem))
	mux.HandleFunc("POST /assemblies/{id}/open", middleware.WithLogging(assemblyHandler.OpenAssembly))
	mux.HandleFunc("POST /assemblies/{id}/close", middleware.WithLogging(assemblyHandler.CloseAssembly))
	mux.HandleFunc("POST /assemblies/{id}/attendees", middleware.WithLogging(attendeeHandler.AddAttendee))
	mux.HandleFunc("GET /assemblies/{id}/attendees", middleware.WithLogging(attendeeHandler.ListAttendees))
	mux.HandleFunc("GET /assemblies/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Voting by e-mail link (public, token in path)
	mux.HandleFunc("GET /api/vote-by-email/{token}", middleware.WithLogging(voteHandler.GetBallot))
	mux.HandleFunc("POST /api/vote-by-email/{token}", middleware.WithLogging(voteHandler.SubmitVotes))

	// Lobby display (public)
	mux.HandleFunc("GET /kiosk/{slug}", middleware.WithLogging(resultsHandler.GetKiosk))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("condo-vote API v1"))
	})

	return mux
}
