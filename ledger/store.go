// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/ballot-ledger/cliparse"
	"github.com/dustin/go-humanize"
)

// rowColumns must stay in sync with scanRow.
const rowColumns = `instance_id, chain_id, seq_num, creation_time, hash,
	poll_id, option_id, poll_title, option_name, voter_identifier, vote_timestamp`

// Store reads and appends rows of the vote ledger table.
type Store struct {
	db         *sql.DB
	table      string
	chainCount int
	slowQuery  time.Duration
	now        func() time.Time
}

func NewStore(db *sql.DB, cfg cliparse.Config) *Store {
	chains := cfg.ChainCount
	if chains < 1 {
		chains = 1
	}
	return &Store{
		db:         db,
		table:      cfg.LedgerTable,
		chainCount: chains,
		slowQuery:  cfg.SlowQueryThreshold,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// Table returns the ledger table name.
func (s *Store) Table() string {
	return s.table
}

// FetchAll returns ledger rows ordered by (chain_id, seq_num).
func (s *Store) FetchAll(ctx context.Context, f Filters) ([]Row, error) {
	var sb strings.Builder
	var args []any
	fmt.Fprintf(&sb, "SELECT %s FROM %s WHERE 1=1", rowColumns, s.table)

	if f.PollID != "" {
		args = append(args, f.PollID)
		fmt.Fprintf(&sb, " AND poll_id = $%d", len(args))
	}
	if f.FromDate != nil {
		args = append(args, f.FromDate.UTC())
		fmt.Fprintf(&sb, " AND vote_timestamp >= $%d", len(args))
	}
	if f.ToDate != nil {
		args = append(args, f.ToDate.UTC())
		fmt.Fprintf(&sb, " AND vote_timestamp <= $%d", len(args))
	}
	sb.WriteString(" ORDER BY chain_id, seq_num")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	return s.queryRows(ctx, "fetch all", sb.String(), args...)
}

// FetchByChain returns every row of one chain ordered by seq_num.
func (s *Store) FetchByChain(ctx context.Context, chainID int64) ([]Row, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE chain_id = $1 ORDER BY seq_num`, rowColumns, s.table)
	return s.queryRows(ctx, "fetch chain", query, chainID)
}

// FetchOne returns the row identified by (chainID, seqNum) or ErrNotFound.
func (s *Store) FetchOne(ctx context.Context, chainID, seqNum int64) (Row, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE chain_id = $1 AND seq_num = $2`, rowColumns, s.table)

	start := time.Now()
	row, err := scanRow(s.db.QueryRowContext(ctx, query, chainID, seqNum))
	s.logSlow(query, start, 1)

	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, fmt.Errorf("ledger entry %s: %w", CompositeID(chainID, seqNum), ErrNotFound)
	}
	if err != nil {
		return Row{}, storageErr("fetch one", err)
	}
	return row, nil
}

// TableMetadata returns the retention and hashing settings of the ledger table.
func (s *Store) TableMetadata(ctx context.Context) (TableMetadata, error) {
	const query = `
		SELECT table_name, row_retention, row_retention_locked, hash_algorithm
		FROM ledger_table_meta
		WHERE table_name = $1
	`

	var md TableMetadata
	var retention sql.NullInt64
	var locked string

	start := time.Now()
	err := s.db.QueryRowContext(ctx, query, s.table).Scan(&md.TableName, &retention, &locked, &md.HashAlgorithm)
	s.logSlow(query, start, 1)

	if errors.Is(err, sql.ErrNoRows) {
		return TableMetadata{}, fmt.Errorf("blockchain table %s: %w", s.table, ErrNotFound)
	}
	if err != nil {
		return TableMetadata{}, storageErr("table metadata", err)
	}

	if retention.Valid {
		md.RowRetention = &retention.Int64
	}
	md.RowRetentionLocked = locked == "YES"
	return md, nil
}

// HasVoted reports whether a voter identifier already appears in a poll.
func (s *Store) HasVoted(ctx context.Context, pollID, voterIdentifier string) (bool, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE poll_id = $1 AND voter_identifier = $2`, s.table)

	var count int
	start := time.Now()
	err := s.db.QueryRowContext(ctx, query, pollID, voterIdentifier).Scan(&count)
	s.logSlow(query, start, 1)
	if err != nil {
		return false, storageErr("has voted", err)
	}
	return count > 0, nil
}

// CountByOption tallies ledger rows per (poll, option). An empty pollID
// counts every poll.
func (s *Store) CountByOption(ctx context.Context, pollID string) ([]OptionCount, error) {
	query := fmt.Sprintf(`SELECT poll_id, option_id, COUNT(*) FROM %s`, s.table)
	var args []any
	if pollID != "" {
		query += " WHERE poll_id = $1"
		args = append(args, pollID)
	}
	query += " GROUP BY poll_id, option_id ORDER BY poll_id, option_id"

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("count by option", err)
	}
	defer rows.Close()

	counts := []OptionCount{}
	for rows.Next() {
		var c OptionCount
		if err := rows.Scan(&c.PollID, &c.OptionID, &c.Votes); err != nil {
			return nil, storageErr("count by option", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("count by option", err)
	}
	s.logSlow(query, start, len(counts))
	return counts, nil
}

func (s *Store) queryRows(ctx context.Context, op, query string, args ...any) ([]Row, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	s.logSlow(query, start, len(result))
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner) (Row, error) {
	var r Row
	err := sc.Scan(
		&r.InstanceID, &r.ChainID, &r.SeqNum, &r.CreationTime, &r.Hash,
		&r.PollID, &r.OptionID, &r.PollTitle, &r.OptionName, &r.VoterIdentifier, &r.VoteTimestamp,
	)
	if err != nil {
		return Row{}, err
	}
	r.CreationTime = r.CreationTime.UTC()
	r.VoteTimestamp = r.VoteTimestamp.UTC()
	r.Hash = strings.ToLower(r.Hash)
	return r, nil
}

func (s *Store) logSlow(query string, start time.Time, rows int) {
	elapsed := time.Since(start)
	if s.slowQuery <= 0 || elapsed < s.slowQuery {
		return
	}
	text := strings.Join(strings.Fields(query), " ")
	if len(text) > 100 {
		text = text[:100]
	}
	slog.Warn("slow ledger query",
		"duration_ms", elapsed.Milliseconds(),
		"threshold", s.slowQuery.String(),
		"rows", humanize.Comma(int64(rows)),
		"query", text,
	)
}
