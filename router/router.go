// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/danielhkuo/ballot-ledger/cliparse"
	"github.com/danielhkuo/ballot-ledger/handlers"
	"github.com/danielhkuo/ballot-ledger/middleware"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"` // seconds
}

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()
	started := time.Now()

	// Initialize handlers
	txHandler := handlers.NewTransactionHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, HealthResponse{
			Status:    "OK",
			Timestamp: time.Now().UTC(),
			Uptime:    time.Since(started).Seconds(),
		})
	})

	// Ledger transactions (read-only)
	mux.HandleFunc("GET /api/transactions", middleware.WithLogging(txHandler.ListTransactions))
	mux.HandleFunc("GET /api/transactions/analysis", middleware.WithLogging(txHandler.GetAnalysis))
	mux.HandleFunc("GET /api/transactions/stats", middleware.WithLogging(txHandler.GetStatistics))
	mux.HandleFunc("GET /api/transactions/verify", middleware.WithLogging(txHandler.VerifyIntegrity))
	mux.HandleFunc("GET /api/transactions/chain/{chainId}", middleware.WithLogging(txHandler.GetChain))
	mux.HandleFunc("GET /api/transactions/{id}", middleware.WithLogging(txHandler.GetTransaction))

	// Blockchain table
	mux.HandleFunc("GET /api/blockchain/verify", middleware.WithLogging(txHandler.VerifyIntegrity))
	mux.HandleFunc("GET /api/blockchain/metadata", middleware.WithLogging(txHandler.GetMetadata))

	// Polls
	mux.HandleFunc("GET /api/polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("POST /api/polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /api/polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("GET /api/polls/{id}/results", middleware.WithLogging(pollHandler.GetPollResults))

	// Votes
	mux.HandleFunc("POST /api/votes/{pollId}", middleware.WithLogging(voteHandler.SubmitVote))
	mux.HandleFunc("GET /api/votes/{voteId}/verify", middleware.WithLogging(voteHandler.VerifyVote))
	mux.HandleFunc("GET /api/votes/{voteId}/check", middleware.WithLogging(voteHandler.CheckVote))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballot-ledger API v1"))
	})

	return mux
}
