// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"strconv"
	"strings"
	"time"
)

// Row is one entry of the append-only vote ledger. Rows are owned by the
// storage engine and never mutated after insert.
type Row struct {
	InstanceID   int64
	ChainID      int64
	SeqNum       int64
	CreationTime time.Time
	Hash         string // lowercase hex, no prefix

	PollID          string
	OptionID        string
	PollTitle       string
	OptionName      string
	VoterIdentifier string
	VoteTimestamp   time.Time
}

// Filters narrows FetchAll. Zero values mean "no filter".
type Filters struct {
	PollID   string
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
}

// TableMetadata describes the ledger table itself.
type TableMetadata struct {
	TableName          string
	RowRetention       *int64 // days; nil means rows are never deleted
	RowRetentionLocked bool
	HashAlgorithm      string
}

// Vote is the payload appended for a single ballot.
type Vote struct {
	PollID          string
	OptionID        string
	PollTitle       string
	OptionName      string
	VoterIdentifier string
}

// OptionCount is the number of ledger rows recorded for one poll option.
type OptionCount struct {
	PollID   string
	OptionID string
	Votes    int
}

// ParseCompositeID splits "<chainId>:<seqNum>" into its numeric parts.
// Both parts must be positive integers.
func ParseCompositeID(id string) (chainID, seqNum int64, err error) {
	chainPart, seqPart, ok := strings.Cut(id, ":")
	if !ok {
		return 0, 0, &MalformedInputError{Input: id, Reason: "expected format chainId:seqNum"}
	}
	chainID, err = strconv.ParseInt(chainPart, 10, 64)
	if err != nil || chainID < 1 {
		return 0, 0, &MalformedInputError{Input: id, Reason: "chainId must be a positive integer"}
	}
	seqNum, err = strconv.ParseInt(seqPart, 10, 64)
	if err != nil || seqNum < 1 {
		return 0, 0, &MalformedInputError{Input: id, Reason: "seqNum must be a positive integer"}
	}
	return chainID, seqNum, nil
}

// CompositeID is the inverse of ParseCompositeID.
func CompositeID(chainID, seqNum int64) string {
	return strconv.FormatInt(chainID, 10) + ":" + strconv.FormatInt(seqNum, 10)
}
