// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// instanceID identifies the single database instance writing the ledger.
const instanceID = 1

// maxAppendAttempts bounds retries when two writers race for the same
// (chain_id, seq_num).
const maxAppendAttempts = 5

// Append records a vote as the next block of its chain. The row receives the
// next sequence number and a SHA-512 digest linking it to its predecessor,
// both assigned inside one transaction.
func (s *Store) Append(ctx context.Context, v Vote) (Row, error) {
	chainID := s.chainFor(v.VoterIdentifier)

	var lastErr error
	for attempt := 1; attempt <= maxAppendAttempts; attempt++ {
		row, err := s.appendOnce(ctx, chainID, v)
		if err == nil {
			return row, nil
		}
		if !isUniqueViolation(err) {
			return Row{}, storageErr("append", err)
		}
		slog.Warn("ledger append raced, retrying", "chain_id", chainID, "attempt", attempt)
		lastErr = err
	}
	return Row{}, storageErr("append", fmt.Errorf("gave up after %d attempts: %w", maxAppendAttempts, lastErr))
}

func (s *Store) appendOnce(ctx context.Context, chainID int64, v Vote) (Row, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Row{}, err
	}
	defer tx.Rollback()

	var prevSeq int64
	var prevHash string
	var prevCreated time.Time
	err = tx.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT seq_num, hash, creation_time FROM %s
		WHERE chain_id = $1
		ORDER BY seq_num DESC
		LIMIT 1
	`, s.table), chainID).Scan(&prevSeq, &prevHash, &prevCreated)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Row{}, err
	}

	// Creation time never decreases within a chain, even if the clock steps back
	now := s.now()
	if prevCreated = prevCreated.UTC(); now.Before(prevCreated) {
		now = prevCreated
	}
	row := Row{
		InstanceID:      instanceID,
		ChainID:         chainID,
		SeqNum:          prevSeq + 1,
		CreationTime:    now,
		PollID:          v.PollID,
		OptionID:        v.OptionID,
		PollTitle:       v.PollTitle,
		OptionName:      v.OptionName,
		VoterIdentifier: v.VoterIdentifier,
		VoteTimestamp:   now,
	}
	row.Hash, err = computeHash(strings.ToLower(prevHash), row)
	if err != nil {
		return Row{}, fmt.Errorf("failed to hash block: %w", err)
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, s.table, rowColumns),
		row.InstanceID, row.ChainID, row.SeqNum, row.CreationTime, row.Hash,
		row.PollID, row.OptionID, row.PollTitle, row.OptionName, row.VoterIdentifier, row.VoteTimestamp,
	)
	if err != nil {
		return Row{}, err
	}

	if err := tx.Commit(); err != nil {
		return Row{}, err
	}
	return row, nil
}

// chainFor spreads voters across chains; chain ids start at 1.
func (s *Store) chainFor(voterIdentifier string) int64 {
	if s.chainCount == 1 {
		return 1
	}
	h := fnv.New32a()
	h.Write([]byte(voterIdentifier))
	return int64(h.Sum32()%uint32(s.chainCount)) + 1
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
