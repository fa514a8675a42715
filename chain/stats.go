// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chain

import (
	"context"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ballot-ledger/ledger"
	"github.com/danielhkuo/ballot-ledger/models"
)

// Aggregate summarizes rows. A row counts toward today when its creation
// time falls on the same calendar day as now, in now's location.
func Aggregate(rows []ledger.Row, now time.Time) models.Statistics {
	stats := models.Statistics{
		TotalTransactions: len(rows),
		PollStatistics:    []models.PollStatistic{},
	}

	y, m, d := now.Date()
	byPoll := make(map[string]*models.PollStatistic)
	chains := make(map[int64]struct{})
	bs := &stats.BlockchainStats

	for i, r := range rows {
		ry, rm, rd := r.CreationTime.In(now.Location()).Date()
		if ry == y && rm == m && rd == d {
			stats.TodayTransactions++
		}

		ps, ok := byPoll[r.PollID]
		if !ok {
			ps = &models.PollStatistic{PollID: r.PollID, PollTitle: r.PollTitle}
			byPoll[r.PollID] = ps
		}
		ps.VoteCount++

		chains[r.ChainID] = struct{}{}

		if i == 0 || r.SeqNum < bs.MinSequence {
			bs.MinSequence = r.SeqNum
		}
		if i == 0 || r.SeqNum > bs.MaxSequence {
			bs.MaxSequence = r.SeqNum
		}
		ct := r.CreationTime
		if bs.FirstBlockTime == nil || ct.Before(*bs.FirstBlockTime) {
			bs.FirstBlockTime = &ct
		}
		if bs.LastBlockTime == nil || ct.After(*bs.LastBlockTime) {
			bs.LastBlockTime = &ct
		}
	}

	for _, ps := range byPoll {
		stats.PollStatistics = append(stats.PollStatistics, *ps)
	}
	sort.Slice(stats.PollStatistics, func(i, j int) bool {
		a, b := stats.PollStatistics[i], stats.PollStatistics[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return a.PollID < b.PollID
	})

	bs.TotalBlocks = len(rows)
	bs.TotalChains = len(chains)
	if bs.LastBlockTime != nil {
		bs.LastBlockAge = humanize.RelTime(*bs.LastBlockTime, now, "ago", "from now")
	}
	return stats
}

// Statistics aggregates the whole ledger.
func (s *Service) Statistics(ctx context.Context) (models.Statistics, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.fetchAll(ctx, ledger.Filters{})
	if err != nil {
		return models.Statistics{}, err
	}
	return Aggregate(rows, s.now().UTC()), nil
}

// Metadata combines the table settings with row totals. An empty ledger
// yields zero counts.
func (s *Service) Metadata(ctx context.Context) (models.LedgerMetadata, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tm, err := s.reader.TableMetadata(ctx)
	if err != nil {
		return models.LedgerMetadata{}, asStorageError("table metadata", err)
	}

	rows, err := s.fetchAll(ctx, ledger.Filters{})
	if err != nil {
		return models.LedgerMetadata{}, err
	}
	agg := Aggregate(rows, s.now().UTC())

	return models.LedgerMetadata{
		TableName:          tm.TableName,
		RowRetention:       tm.RowRetention,
		RowRetentionLocked: tm.RowRetentionLocked,
		HashAlgorithm:      tm.HashAlgorithm,
		TotalTransactions:  agg.TotalTransactions,
		MinSequence:        agg.BlockchainStats.MinSequence,
		MaxSequence:        agg.BlockchainStats.MaxSequence,
		ChainCount:         agg.BlockchainStats.TotalChains,
	}, nil
}
