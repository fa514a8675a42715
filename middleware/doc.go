// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# CORS Middleware

Enable cross-origin requests from the configured origins:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSAllowedOrigins)(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type, Authorization.
Requests from other origins are served without CORS headers. Preflight
requests are answered with 204 and never reach the wrapped handler.

# JSON Helpers

Every API response uses the same envelope:

	middleware.DataResponse(w, http.StatusOK, stats)          // {"success":true,"data":...}
	middleware.ListResponse(w, http.StatusOK, txs, len(txs))  // adds "count"
	middleware.ErrorResponse(w, http.StatusNotFound, "msg")   // {"success":false,"error":"msg"}

JSONResponse writes any value without the envelope.

Parse JSON request bodies:

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Hashed with auth.HashIP before it appears in vote logs.
*/
package middleware
