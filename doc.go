// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballot ledger API server.

The ballot ledger records every vote as a row of an append-only, hash-chained
table and exposes read-only views for auditing it: transaction listings,
per-chain reconstruction, integrity verification, single-vote proofs and
aggregate statistics.

# Starting the Server

The server reads environment variables, an optional .env file, or CLI flags:

	DATABASE_URL=ballots.db VOTER_HASH_SALT=change-me go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -voter-salt change-me

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - VOTER_HASH_SALT (-voter-salt): Secret for voter identifier HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - BLOCKCHAIN_TABLE (-table): Ledger table name (default: votes_blockchain_v3)
  - CHAIN_COUNT (-chains): Number of parallel hash chains (default: 1)
  - QUERY_TIMEOUT (-timeout): Per-request ledger timeout (default: 30s)
  - SLOW_QUERY_THRESHOLD (-slow-query): Slow query warning threshold (default: 5s)
  - CORS_ALLOWED_ORIGINS (-cors-origins): Comma-separated allowed origins

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (transactions, polls, votes)
  - router: Route definitions using Go 1.22+ routing
  - chain: Chain reconstruction, verification, lookups and statistics
  - ledger: Ledger table access and hash-chained appends
  - middleware: CORS, logging, JSON envelope helpers
  - models: Request/response types
  - auth: Voter pseudonymization and ID generation
  - db: Connections and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
