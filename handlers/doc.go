// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ballot ledger API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - TransactionHandler: Read-only ledger views (list, analysis, stats, verify)
  - PollHandler: Poll creation, listing and results
  - VoteHandler: Vote submission and per-vote proofs

Handlers are created via constructor functions that accept *sql.DB and Config:

	txHandler := handlers.NewTransactionHandler(db, cfg)

# Response Envelope

Every response is a JSON envelope:

	{"success": true, "data": ...}
	{"success": true, "data": [...], "count": 3}
	{"success": false, "error": "Transaction not found"}

Ledger errors map onto status codes: ledger.ErrNotFound is 404, a
*ledger.MalformedInputError is 400 and anything else is 500. Integrity
verification is the exception: it always answers 200 and reports a failed
run inside the data payload as {isValid: false, error, message}.

# Voting Flow

	POST /api/polls                 → CreatePoll (title, endTime, options)
	POST /api/votes/{pollId}        → SubmitVote (appends a ledger row)
	GET  /api/votes/{voteId}/verify → VerifyVote (hash and previous hash)

Votes are accepted only while the poll's voting window is open. A voter who
supplies an identifier is stored as an HMAC of it and may vote once per
poll; anonymous voters are never deduplicated. The vote ID is the ledger
key "chainId:seqNum".

# Transaction Filters

GET /api/transactions accepts pollId, fromDate, toDate and limit (default
100). Dates are "YYYY-MM-DD HH:MM:SS" in UTC or RFC 3339.
*/
package handlers
