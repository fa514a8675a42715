// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ballot-ledger/cliparse"
)

// Open connects to the configured database and verifies the connection.
func Open(cfg cliparse.Config) (*sql.DB, error) {
	var driver string
	switch cfg.DatabaseType {
	case cliparse.DatabasePostgres:
		driver = "postgres"
	case cliparse.DatabaseSQLite, "":
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	conn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite" {
		// SQLite allows one writer; a single connection also keeps
		// ":memory:" databases from splitting per connection.
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application and registers
// the ledger table's metadata.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dbType, ledgerTable string) error {
	timestamp := "TIMESTAMP"
	if dbType == cliparse.DatabasePostgres {
		timestamp = "TIMESTAMPTZ"
	}

	_, err := db.Exec(fmt.Sprintf(schema, timestamp))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf(ledgerSchema, ledgerTable, timestamp))
	if err != nil {
		return fmt.Errorf("failed to create ledger table: %w", err)
	}

	guard := sqliteAppendOnly
	if dbType == cliparse.DatabasePostgres {
		guard = postgresAppendOnly
	}
	_, err = db.Exec(strings.ReplaceAll(guard, "{table}", ledgerTable))
	if err != nil {
		return fmt.Errorf("failed to install append-only guard: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO ledger_table_meta (table_name, row_retention, row_retention_locked, hash_algorithm)
		VALUES ($1, NULL, 'YES', 'SHA2_512')
		ON CONFLICT (table_name) DO NOTHING
	`, ledgerTable)
	if err != nil {
		return fmt.Errorf("failed to register ledger table: %w", err)
	}

	return nil
}

const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_time %[1]s NOT NULL,
    end_time %[1]s NOT NULL,
    created_at %[1]s NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_created_at ON poll(created_at);

-- Options
CREATE TABLE IF NOT EXISTS poll_option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    display_order INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_option_poll_id ON poll_option(poll_id);

-- Ledger table registry
CREATE TABLE IF NOT EXISTS ledger_table_meta (
    table_name TEXT PRIMARY KEY,
    row_retention INTEGER,
    row_retention_locked TEXT NOT NULL DEFAULT 'YES',
    hash_algorithm TEXT NOT NULL
);
`

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
    instance_id BIGINT NOT NULL DEFAULT 1,
    chain_id BIGINT NOT NULL,
    seq_num BIGINT NOT NULL CHECK (seq_num > 0),
    creation_time %[2]s NOT NULL,
    hash TEXT NOT NULL,
    poll_id TEXT NOT NULL,
    option_id TEXT NOT NULL,
    poll_title TEXT NOT NULL,
    option_name TEXT NOT NULL,
    voter_identifier TEXT NOT NULL,
    vote_timestamp %[2]s NOT NULL,
    PRIMARY KEY (chain_id, seq_num)
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_poll_voter ON %[1]s(poll_id, voter_identifier);
`

const sqliteAppendOnly = `
CREATE TRIGGER IF NOT EXISTS {table}_no_update
BEFORE UPDATE ON {table}
BEGIN
    SELECT RAISE(ABORT, 'ledger rows are append-only');
END;

CREATE TRIGGER IF NOT EXISTS {table}_no_delete
BEFORE DELETE ON {table}
BEGIN
    SELECT RAISE(ABORT, 'ledger rows are append-only');
END;
`

const postgresAppendOnly = `
CREATE OR REPLACE FUNCTION ledger_reject_mutation() RETURNS trigger AS $$
BEGIN
    RAISE EXCEPTION 'ledger rows are append-only';
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS {table}_append_only ON {table};

CREATE TRIGGER {table}_append_only
BEFORE UPDATE OR DELETE ON {table}
FOR EACH ROW EXECUTE FUNCTION ledger_reject_mutation();
`
