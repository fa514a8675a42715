// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger reads and appends rows of the append-only vote ledger.

Every vote is one row keyed by (chain_id, seq_num). Within a chain, sequence
numbers run 1, 2, 3, ... and each row stores the SHA2-512 digest of its
predecessor's digest plus its own content, so the rows of a chain form a
hash chain. The database refuses UPDATE and DELETE on the ledger table.

# Reading

	store := ledger.NewStore(conn, cfg)
	rows, err := store.FetchAll(ctx, ledger.Filters{PollID: pollID, Limit: 100})
	row, err := store.FetchOne(ctx, 1, 42)

FetchOne returns an error wrapping ErrNotFound when the entry does not exist.
Storage failures are reported as *StorageError.

# Appending

	row, err := store.Append(ctx, ledger.Vote{
		PollID:          pollID,
		OptionID:        optionID,
		PollTitle:       "Lunch",
		OptionName:      "Pizza",
		VoterIdentifier: voterHash,
	})

Append picks the chain from the voter identifier, assigns the next sequence
number and the digest inside one transaction, and retries when a concurrent
writer claimed the same sequence number first.

# Identifiers

A ledger entry is addressed externally as "<chainId>:<seqNum>":

	chainID, seqNum, err := ledger.ParseCompositeID("1:42")

Malformed identifiers yield *MalformedInputError before any query runs.

# Hashes

Digests are stored as lowercase hex without a prefix. FormatHash adds the
"0x" prefix used in responses. The first block of each chain links to
GenesisHash.
*/
package ledger
