// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ballot ledger API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health - status, timestamp and uptime in seconds

Ledger transactions (read-only):

	GET /api/transactions                   - List rows (pollId, fromDate, toDate, limit)
	GET /api/transactions/analysis          - Every block with chain position
	GET /api/transactions/stats             - Totals, today's count, per-poll counts
	GET /api/transactions/verify            - Integrity audit of all chains
	GET /api/transactions/chain/{chainId}   - One chain with previous hashes
	GET /api/transactions/{chainId:seqNum}  - One row with its previous hash

Blockchain table:

	GET /api/blockchain/verify   - Same audit as /api/transactions/verify
	GET /api/blockchain/metadata - Retention, hash algorithm and row totals

Polls:

	GET  /api/polls              - All polls with live vote counts
	POST /api/polls              - Create poll with options
	GET  /api/polls/{id}         - One poll
	GET  /api/polls/{id}/results - Counts and percentages per option

Votes:

	POST /api/votes/{pollId}        - Append a vote to the ledger
	GET  /api/votes/{voteId}/verify - Ledger proof for a vote
	GET  /api/votes/{voteId}/check  - Like verify, but never fails

Literal segments such as "stats" take precedence over the {id} wildcard.

# Handler Initialization

The router creates handler instances with dependency injection:

	txHandler := handlers.NewTransactionHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
