// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, route pattern, status and duration_ms on completion. The raw
path is not logged because vote tokens travel in it.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Error bodies are {"error": "message"}; the message is user-facing text.
ParseJSONBody caps bodies at 1 MiB.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Used for the hashed IP stored with terms acceptance.
*/
package middleware
