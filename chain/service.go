// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/ballot-ledger/ledger"
	"github.com/danielhkuo/ballot-ledger/models"
)

// Reader is the read side of the append-only ledger.
type Reader interface {
	FetchAll(ctx context.Context, f ledger.Filters) ([]ledger.Row, error)
	FetchByChain(ctx context.Context, chainID int64) ([]ledger.Row, error)
	FetchOne(ctx context.Context, chainID, seqNum int64) (ledger.Row, error)
	TableMetadata(ctx context.Context) (ledger.TableMetadata, error)
}

// Service answers ledger queries. Each call reads the ledger afresh; nothing
// is cached between calls.
type Service struct {
	reader  Reader
	timeout time.Duration
	now     func() time.Time
}

// NewService wraps reader. A positive timeout bounds every operation.
func NewService(reader Reader, timeout time.Duration) *Service {
	return &Service{
		reader:  reader,
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// fetchAll reads rows and turns a deadline into a StorageError so callers
// never mistake a cut-short scan for a complete one.
func (s *Service) fetchAll(ctx context.Context, f ledger.Filters) ([]ledger.Row, error) {
	rows, err := s.reader.FetchAll(ctx, f)
	if err != nil {
		return nil, asStorageError("fetch all", err)
	}
	if ctx.Err() != nil {
		return nil, asStorageError("fetch all", ctx.Err())
	}
	return rows, nil
}

// Transactions lists ledger rows, optionally filtered.
func (s *Service) Transactions(ctx context.Context, f ledger.Filters) ([]models.Transaction, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.fetchAll(ctx, f)
	if err != nil {
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, toTransaction(r))
	}
	return txs, nil
}

// Analysis reconstructs every chain of the ledger.
func (s *Service) Analysis(ctx context.Context) (models.Analysis, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.fetchAll(ctx, ledger.Filters{})
	if err != nil {
		return models.Analysis{}, err
	}
	return Analyze(rows), nil
}

// Chain returns one chain with previous-hash links, or ErrNotFound when the
// chain has no rows.
func (s *Service) Chain(ctx context.Context, chainID int64) (models.ChainDetail, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.reader.FetchByChain(ctx, chainID)
	if err != nil {
		return models.ChainDetail{}, asStorageError("fetch chain", err)
	}
	if len(rows) == 0 {
		return models.ChainDetail{}, fmt.Errorf("chain %d: %w", chainID, ledger.ErrNotFound)
	}
	return Detail(chainID, rows), nil
}

// VerifyIntegrity runs Verify over the full, unfiltered ledger. It never
// returns an error: a failed read yields a result with Error set.
func (s *Service) VerifyIntegrity(ctx context.Context) models.VerificationResult {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.fetchAll(ctx, ledger.Filters{})
	if err != nil {
		slog.Error("blockchain verification failed", "error", err)
		return Failed(err)
	}

	result := Verify(rows)
	slog.Info("blockchain verified",
		"valid", result.IsValid,
		"chains", result.TotalChains,
		"blocks", result.TotalBlocks,
		"issues", result.Summary.TotalIssues,
	)
	return result
}

func asStorageError(op string, err error) error {
	if errors.Is(err, ledger.ErrNotFound) {
		return err
	}
	var se *ledger.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &ledger.StorageError{Op: op, Err: err}
}

func toTransaction(r ledger.Row) models.Transaction {
	return models.Transaction{
		Action:        models.ActionVote,
		PollID:        r.PollID,
		PollTitle:     r.PollTitle,
		OptionID:      r.OptionID,
		OptionName:    r.OptionName,
		Timestamp:     r.VoteTimestamp,
		Hash:          ledger.FormatHash(r.Hash),
		ChainSequence: r.SeqNum,
		ChainID:       r.ChainID,
	}
}
