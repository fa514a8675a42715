// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chain

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielhkuo/ballot-ledger/ledger"
	"github.com/danielhkuo/ballot-ledger/models"
)

// Resolve loads the entry (chainID, seqNum) and the hash of the entry before
// it. A missing predecessor falls back to GenesisHash; only the integrity
// audit reports such gaps. Any other read failure is returned.
func (s *Service) Resolve(ctx context.Context, chainID, seqNum int64) (models.VoteVerification, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row, prevHash, err := s.resolve(ctx, chainID, seqNum)
	if err != nil {
		return models.VoteVerification{}, err
	}

	return models.VoteVerification{
		ChainID:       row.ChainID,
		SeqNum:        row.SeqNum,
		Timestamp:     row.CreationTime,
		Hash:          ledger.FormatHash(row.Hash),
		PreviousHash:  prevHash,
		ChainSequence: row.SeqNum,
		PollID:        row.PollID,
		PollTitle:     row.PollTitle,
		OptionName:    row.OptionName,
	}, nil
}

// Transaction is Resolve in list form, with creation time attached.
func (s *Service) Transaction(ctx context.Context, chainID, seqNum int64) (models.Transaction, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row, prevHash, err := s.resolve(ctx, chainID, seqNum)
	if err != nil {
		return models.Transaction{}, err
	}

	tx := toTransaction(row)
	tx.PreviousHash = prevHash
	created := row.CreationTime
	tx.CreationTime = &created
	return tx, nil
}

// CheckVote reports whether an entry exists without failing on a miss.
func (s *Service) CheckVote(ctx context.Context, chainID, seqNum int64) models.VoteCheck {
	v, err := s.Resolve(ctx, chainID, seqNum)
	if err != nil {
		return models.VoteCheck{Valid: false, Error: err.Error()}
	}
	return models.VoteCheck{Valid: true, Verification: &v}
}

func (s *Service) resolve(ctx context.Context, chainID, seqNum int64) (ledger.Row, string, error) {
	row, err := s.reader.FetchOne(ctx, chainID, seqNum)
	if err != nil {
		return ledger.Row{}, "", asStorageError("fetch one", err)
	}

	prevHash := ledger.GenesisHash
	if row.SeqNum > 1 {
		prev, err := s.reader.FetchOne(ctx, row.ChainID, row.SeqNum-1)
		switch {
		case err == nil:
			prevHash = ledger.FormatHash(prev.Hash)
		case errors.Is(err, ledger.ErrNotFound):
			slog.Warn("predecessor missing, using genesis hash",
				"chain_id", row.ChainID, "seq_num", row.SeqNum)
		default:
			return ledger.Row{}, "", asStorageError("fetch one", err)
		}
	}
	return row, prevHash, nil
}
