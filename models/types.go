package models

import "time"

// Poll status constants, derived from the voting window
const (
	StatusUpcoming = "upcoming"
	StatusActive   = "active"
	StatusClosed   = "closed"
)

// Request types

type CreatePollRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	StartTime   *time.Time            `json:"startTime,omitempty"`
	EndTime     time.Time             `json:"endTime"`
	Options     []CreateOptionRequest `json:"options"`
}

type CreateOptionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// VoterIdentifier is optional; anonymous votes get a random identifier
type SubmitVoteRequest struct {
	OptionID        string `json:"optionId"`
	VoterIdentifier string `json:"voterIdentifier,omitempty"`
}

// Response types

type SubmitVoteResponse struct {
	ChainID      int64            `json:"chainId"`
	SeqNum       int64            `json:"seqNum"`
	VoteID       string           `json:"voteId"`
	Poll         PollRef          `json:"poll"`
	Option       OptionRef        `json:"option"`
	Verification VoteVerification `json:"verification"`
}

type PollRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type OptionRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Domain types

type Poll struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      string    `json:"status"`
	TotalVotes  int       `json:"totalVotes"`
	Options     []Option  `json:"options"`
}

type Option struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Votes       int    `json:"votes"`
}

type OptionResult struct {
	OptionID   string  `json:"optionId"`
	Name       string  `json:"name"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type PollResults struct {
	PollID     string         `json:"pollId"`
	Title      string         `json:"title"`
	Status     string         `json:"status"`
	TotalVotes int            `json:"totalVotes"`
	Results    []OptionResult `json:"results"`
}

// Envelope wraps every successful JSON response
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Count   *int `json:"count,omitempty"`
}

// Error response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
