// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chain

import (
	"sort"

	"github.com/danielhkuo/ballot-ledger/ledger"
	"github.com/danielhkuo/ballot-ledger/models"
)

// Link is a ledger row together with the hash of its predecessor in the
// same chain. Links are derived per request and never stored.
type Link struct {
	Row          ledger.Row
	PreviousHash string // 0x-prefixed
	Position     int    // 1-based
	TotalInChain int
	IsFirstBlock bool
}

// Chain is one reconstructed hash chain ordered by sequence number.
type Chain struct {
	ID    int64
	Links []Link
}

// Reconstruct groups rows by chain, orders each chain by seq_num and links
// every row to the row before it in the same chain. The first row of a chain
// links to GenesisHash. Chains are returned in ascending id order.
func Reconstruct(rows []ledger.Row) []Chain {
	grouped := make(map[int64][]ledger.Row)
	for _, r := range rows {
		grouped[r.ChainID] = append(grouped[r.ChainID], r)
	}

	ids := make([]int64, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	chains := make([]Chain, 0, len(ids))
	for _, id := range ids {
		chains = append(chains, link(id, grouped[id]))
	}
	return chains
}

func link(id int64, rows []ledger.Row) Chain {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SeqNum < rows[j].SeqNum })

	links := make([]Link, len(rows))
	for i, r := range rows {
		prev := ledger.GenesisHash
		if i > 0 {
			prev = ledger.FormatHash(rows[i-1].Hash)
		}
		links[i] = Link{
			Row:          r,
			PreviousHash: prev,
			Position:     i + 1,
			TotalInChain: len(rows),
			IsFirstBlock: i == 0,
		}
	}
	return Chain{ID: id, Links: links}
}

// Analyze builds the detailed per-block view of the whole ledger. Every
// block is flagged valid when its chain passes Verify.
func Analyze(rows []ledger.Row) models.Analysis {
	chains := Reconstruct(rows)

	analysis := models.Analysis{
		TotalChains:   len(chains),
		Blocks:        []models.AnalysisBlock{},
		ChainsSummary: []models.ChainSummary{},
	}

	for _, c := range chains {
		valid := len(chainIssues(c)) == 0

		for _, l := range c.Links {
			r := l.Row
			analysis.Blocks = append(analysis.Blocks, models.AnalysisBlock{
				ChainID:    r.ChainID,
				SeqNum:     r.SeqNum,
				PollID:     r.PollID,
				PollTitle:  r.PollTitle,
				OptionName: r.OptionName,
				VotedAt:    r.CreationTime,
				Blockchain: models.BlockchainInfo{
					InstanceID:     r.InstanceID,
					ChainID:        r.ChainID,
					SequenceNumber: r.SeqNum,
					CreationTime:   r.CreationTime,
					BlockHash:      ledger.FormatHash(r.Hash),
					PreviousHash:   l.PreviousHash,
				},
				ChainInfo: models.ChainInfo{
					ChainID:      c.ID,
					Position:     l.Position,
					TotalInChain: l.TotalInChain,
					IsFirstBlock: l.IsFirstBlock,
					IsValid:      valid,
				},
			})
		}

		first, last := c.Links[0].Row, c.Links[len(c.Links)-1].Row
		analysis.ChainsSummary = append(analysis.ChainsSummary, models.ChainSummary{
			ChainID:        c.ID,
			BlockCount:     len(c.Links),
			FirstBlock:     first.SeqNum,
			LastBlock:      last.SeqNum,
			FirstTimestamp: first.CreationTime,
			LastTimestamp:  last.CreationTime,
		})
	}

	analysis.TotalBlocks = len(analysis.Blocks)
	return analysis
}

// Detail renders one chain with the previous hash of every block. Rows of
// other chains are ignored.
func Detail(chainID int64, rows []ledger.Row) models.ChainDetail {
	own := make([]ledger.Row, 0, len(rows))
	for _, r := range rows {
		if r.ChainID == chainID {
			own = append(own, r)
		}
	}
	c := link(chainID, own)

	detail := models.ChainDetail{
		ChainID:    chainID,
		BlockCount: len(c.Links),
		Blocks:     make([]models.ChainBlock, 0, len(c.Links)),
	}
	for _, l := range c.Links {
		detail.Blocks = append(detail.Blocks, models.ChainBlock{
			ChainID:        l.Row.ChainID,
			SeqNum:         l.Row.SeqNum,
			PollTitle:      l.Row.PollTitle,
			OptionName:     l.Row.OptionName,
			SequenceNumber: l.Row.SeqNum,
			CreationTime:   l.Row.CreationTime,
			BlockHash:      ledger.FormatHash(l.Row.Hash),
			PreviousHash:   l.PreviousHash,
		})
	}
	return detail
}
