// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package chain reconstructs, audits and summarizes the hash chains stored in
the vote ledger.

# Reconstruction

Rows are grouped by chain id and ordered by sequence number. Each row is
linked to the row before it in the same chain; the first row of a chain
links to ledger.GenesisHash:

	chains := chain.Reconstruct(rows)
	for _, c := range chains {
		for _, l := range c.Links {
			fmt.Println(l.Row.SeqNum, l.PreviousHash)
		}
	}

# Verification

Verify checks two properties per chain:

  - Sequence continuity: seq_num runs 1, 2, ..., n with no gaps
  - Timestamp monotonicity: creation time never decreases along the chain

Hashes are trusted as written by the storage engine and are not
recomputed. A chain with any issue is invalid and makes the whole result
invalid. When the ledger cannot be read at all, Failed produces a result
carrying the error instead of a per-chain report.

# Service

Service wraps a Reader (normally *ledger.Store) and bounds every call with
the configured query timeout. Nothing is cached between calls, so results
always reflect the ledger at the time of the request.

	svc := chain.NewService(store, cfg.QueryTimeout)
	result := svc.VerifyIntegrity(ctx)

# Lookups

Resolve loads a single entry by its (chainId, seqNum) key together with the
hash of its predecessor. A missing predecessor falls back to the genesis
sentinel rather than failing the lookup.
*/
package chain
