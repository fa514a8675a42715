// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string or SQLite file (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - VoterHashSalt: Secret for voter identifier hashing (required)
  - LedgerTable: Name of the append-only vote table (default: votes_blockchain_v3)
  - ChainCount: Hash chains new votes are spread across (default: 1)
  - QueryTimeout: Upper bound for a single ledger operation (default: 30s)
  - SlowQueryThreshold: Queries slower than this are logged (default: 5s)
  - CORSAllowedOrigins: Origins allowed by the CORS middleware

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type
	-table         Ledger table name
	-chains        Chain count
	-timeout       Query timeout
	-slow-query    Slow query threshold
	-cors-origins  Comma separated origins
	-voter-salt    Voter identifier salt
	-env-file      Dotenv file (default: .env)

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t
	BLOCKCHAIN_TABLE     → -table
	CHAIN_COUNT          → -chains
	QUERY_TIMEOUT        → -timeout
	SLOW_QUERY_THRESHOLD → -slow-query
	CORS_ALLOWED_ORIGINS → -cors-origins
	VOTER_HASH_SALT      → -voter-salt

CLI flags take precedence over environment variables. A dotenv file is
loaded first; variables already present in the environment are kept.
Durations accept Go syntax ("5s") or bare milliseconds ("5000").

# Validation

ParseFlags returns an error if required values are missing or invalid:

  - DATABASE_URL must be provided
  - VOTER_HASH_SALT must be provided
  - the ledger table name must be a plain SQL identifier
*/
package cliparse
