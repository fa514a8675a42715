// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open picks the driver from the configured database type (lib/pq for
postgres, modernc.org/sqlite for sqlite) and pings the server:

	conn, err := db.Open(cfg)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, cfg.DatabaseType, cfg.LedgerTable); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - poll: Poll metadata and voting window
  - poll_option: Voting options per poll
  - ledger_table_meta: Retention and hash settings per ledger table
  - <ledger table>: Append-only vote blocks keyed by (chain_id, seq_num)

# Append-Only Ledger

The ledger table carries triggers that abort every UPDATE and DELETE, so
rows can only ever be inserted. Each row holds the hex SHA2-512 digest
assigned at insert time and is linked to the previous row of the same chain.

# Relationships

	poll 1──* poll_option
	poll 1──* ledger rows (by poll_id, denormalized)

Ledger rows copy poll and option names so they stay readable for audits.
*/
package db
