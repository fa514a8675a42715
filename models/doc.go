// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

All JSON field names are camelCase. Hashes are "0x"-prefixed lowercase hex.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: title, description, startTime, endTime, options
  - SubmitVoteRequest: optionId, voterIdentifier (optional)

# Response Types

Types for JSON responses:

  - Envelope: success, data, count
  - ErrorResponse: success (always false), error
  - SubmitVoteResponse: chainId, seqNum, voteId, poll, option, verification

# Ledger Views

Read-only views of the vote ledger (ledger.go):

  - Transaction: one ledger row in list form
  - Analysis: every block with its chain position and validity
  - ChainDetail: one chain with previous hashes
  - VerificationResult: integrity audit per chain plus summary
  - VoteVerification, VoteCheck: proof for a single vote
  - Statistics, LedgerMetadata: aggregate counts and table settings

VerificationResult marshals to {isValid, error, message} when the audit
could not run, so clients can tell a failed run from a failed chain.

# Domain Types

  - Poll: metadata, voting window, derived status and vote counts
  - Option: voting option with its vote count
  - PollResults, OptionResult: counts and percentages per option

# Constants

Status values, derived from the voting window:

	StatusUpcoming = "upcoming"
	StatusActive   = "active"
	StatusClosed   = "closed"

Ledger action:

	ActionVote = "vote"
*/
package models
