package models

import (
	"encoding/json"
	"time"
)

const ActionVote = "vote"

// Transaction is one ledger row in list form.
type Transaction struct {
	Action        string     `json:"action"`
	PollID        string     `json:"pollId"`
	PollTitle     string     `json:"pollTitle"`
	OptionID      string     `json:"optionId"`
	OptionName    string     `json:"optionName"`
	Timestamp     time.Time  `json:"timestamp"`
	Hash          string     `json:"hash"`
	ChainSequence int64      `json:"chainSequence"`
	ChainID       int64      `json:"chainId"`
	PreviousHash  string     `json:"previousHash,omitempty"`
	CreationTime  *time.Time `json:"creationTime,omitempty"`
}

// Detailed analysis

type BlockchainInfo struct {
	InstanceID     int64     `json:"instanceId"`
	ChainID        int64     `json:"chainId"`
	SequenceNumber int64     `json:"sequenceNumber"`
	CreationTime   time.Time `json:"creationTime"`
	BlockHash      string    `json:"blockHash"`
	PreviousHash   string    `json:"previousHash"`
}

type ChainInfo struct {
	ChainID      int64 `json:"chainId"`
	Position     int   `json:"position"`
	TotalInChain int   `json:"totalInChain"`
	IsFirstBlock bool  `json:"isFirstBlock"`
	IsValid      bool  `json:"isValid"`
}

type AnalysisBlock struct {
	ChainID    int64          `json:"chainId"`
	SeqNum     int64          `json:"seqNum"`
	PollID     string         `json:"pollId"`
	PollTitle  string         `json:"pollTitle"`
	OptionName string         `json:"optionName"`
	VotedAt    time.Time      `json:"votedAt"`
	Blockchain BlockchainInfo `json:"blockchain"`
	ChainInfo  ChainInfo      `json:"chainInfo"`
}

type ChainSummary struct {
	ChainID        int64     `json:"chainId"`
	BlockCount     int       `json:"blockCount"`
	FirstBlock     int64     `json:"firstBlock"`
	LastBlock      int64     `json:"lastBlock"`
	FirstTimestamp time.Time `json:"firstTimestamp"`
	LastTimestamp  time.Time `json:"lastTimestamp"`
}

type Analysis struct {
	TotalBlocks   int             `json:"totalBlocks"`
	TotalChains   int             `json:"totalChains"`
	Blocks        []AnalysisBlock `json:"blocks"`
	ChainsSummary []ChainSummary  `json:"chainsSummary"`
}

// Chain detail

type ChainBlock struct {
	ChainID        int64     `json:"chainId"`
	SeqNum         int64     `json:"seqNum"`
	PollTitle      string    `json:"pollTitle"`
	OptionName     string    `json:"optionName"`
	SequenceNumber int64     `json:"sequenceNumber"`
	CreationTime   time.Time `json:"creationTime"`
	BlockHash      string    `json:"blockHash"`
	PreviousHash   string    `json:"previousHash"`
}

type ChainDetail struct {
	ChainID    int64        `json:"chainId"`
	BlockCount int          `json:"blockCount"`
	Blocks     []ChainBlock `json:"blocks"`
}

// Integrity verification

type BlockPreview struct {
	ChainID int64  `json:"chainId"`
	SeqNum  int64  `json:"seqNum"`
	Hash    string `json:"hash"`
}

type ChainVerification struct {
	ChainID    int64         `json:"chainId"`
	BlockCount int           `json:"blockCount"`
	IsValid    bool          `json:"isValid"`
	Issues     []string      `json:"issues"`
	FirstBlock *BlockPreview `json:"firstBlock"`
	LastBlock  *BlockPreview `json:"lastBlock"`
}

type VerificationSummary struct {
	ValidChains   int `json:"validChains"`
	InvalidChains int `json:"invalidChains"`
	TotalIssues   int `json:"totalIssues"`
}

// VerificationResult is the outcome of an integrity pass. When Error is set
// the pass could not complete and only isValid, error and message are sent.
type VerificationResult struct {
	IsValid            bool                `json:"isValid"`
	VerificationMethod string              `json:"verificationMethod"`
	TotalChains        int                 `json:"totalChains"`
	TotalBlocks        int                 `json:"totalBlocks"`
	Chains             []ChainVerification `json:"chains"`
	Summary            VerificationSummary `json:"summary"`
	Message            string              `json:"message"`
	Error              string              `json:"error,omitempty"`
}

func (v VerificationResult) MarshalJSON() ([]byte, error) {
	if v.Error != "" {
		return json.Marshal(struct {
			IsValid bool   `json:"isValid"`
			Error   string `json:"error"`
			Message string `json:"message"`
		}{false, v.Error, v.Message})
	}
	type plain VerificationResult
	return json.Marshal(plain(v))
}

// Composite-key resolution

type VoteVerification struct {
	ChainID       int64     `json:"chainId"`
	SeqNum        int64     `json:"seqNum"`
	Timestamp     time.Time `json:"timestamp"`
	Hash          string    `json:"hash"`
	PreviousHash  string    `json:"previousHash"`
	ChainSequence int64     `json:"chainSequence"`
	PollID        string    `json:"pollId"`
	PollTitle     string    `json:"pollTitle"`
	OptionName    string    `json:"optionName"`
}

type VoteCheck struct {
	Valid        bool              `json:"valid"`
	Verification *VoteVerification `json:"verification,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// Metadata and statistics

type LedgerMetadata struct {
	TableName          string `json:"tableName"`
	RowRetention       *int64 `json:"rowRetention"`
	RowRetentionLocked bool   `json:"rowRetentionLocked"`
	HashAlgorithm      string `json:"hashAlgorithm"`
	TotalTransactions  int    `json:"totalTransactions"`
	MinSequence        int64  `json:"minSequence"`
	MaxSequence        int64  `json:"maxSequence"`
	ChainCount         int    `json:"chainCount"`
}

type PollStatistic struct {
	PollID    string `json:"pollId"`
	PollTitle string `json:"pollTitle"`
	VoteCount int    `json:"voteCount"`
}

type BlockchainStats struct {
	TotalBlocks    int        `json:"totalBlocks"`
	TotalChains    int        `json:"totalChains"`
	MinSequence    int64      `json:"minSequence"`
	MaxSequence    int64      `json:"maxSequence"`
	FirstBlockTime *time.Time `json:"firstBlockTime"`
	LastBlockTime  *time.Time `json:"lastBlockTime"`
	LastBlockAge   string     `json:"lastBlockAge,omitempty"`
}

type Statistics struct {
	TotalTransactions int             `json:"totalTransactions"`
	TodayTransactions int             `json:"todayTransactions"`
	PollStatistics    []PollStatistic `json:"pollStatistics"`
	BlockchainStats   BlockchainStats `json:"blockchainStats"`
}
