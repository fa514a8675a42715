// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/danielhkuo/ballot-ledger/auth"
	"github.com/danielhkuo/ballot-ledger/chain"
	"github.com/danielhkuo/ballot-ledger/cliparse"
	"github.com/danielhkuo/ballot-ledger/ledger"
	"github.com/danielhkuo/ballot-ledger/middleware"
	"github.com/danielhkuo/ballot-ledger/models"
)

type VoteHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	store *ledger.Store
	svc   *chain.Service

	// mu serializes the duplicate-vote check with the append that follows it
	mu sync.Mutex
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config) *VoteHandler {
	store := ledger.NewStore(db, cfg)
	return &VoteHandler{
		db:    db,
		cfg:   cfg,
		store: store,
		svc:   chain.NewService(store, cfg.QueryTimeout),
	}
}

// SubmitVote handles POST /api/votes/{pollId}
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("pollId")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Option ID is required")
		return
	}

	poll, err := findPoll(r.Context(), h.db, pollID)
	if isNoRows(err) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	switch poll.Status {
	case models.StatusUpcoming:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Poll is not active yet")
		return
	case models.StatusClosed:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Poll has ended")
		return
	}

	option, err := findOption(r.Context(), h.db, poll.ID, req.OptionID)
	if isNoRows(err) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option for this poll")
		return
	}
	if err != nil {
		slog.Error("failed to query option", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	identified := strings.TrimSpace(req.VoterIdentifier) != ""
	var voter string
	if identified {
		voter, err = auth.VoterHash(req.VoterIdentifier, h.cfg.VoterHashSalt)
		if errors.Is(err, auth.ErrInvalidVoterIdentifier) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid voter identifier")
			return
		}
	} else {
		voter, err = auth.AnonymousVoter()
	}
	if err != nil {
		slog.Error("failed to derive voter identifier", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	row, status, msg := h.appendVote(r, poll, option, voter, identified)
	if status != 0 {
		middleware.ErrorResponse(w, status, msg)
		return
	}

	voteID := ledger.CompositeID(row.ChainID, row.SeqNum)
	verification, err := h.svc.Resolve(r.Context(), row.ChainID, row.SeqNum)
	if err != nil {
		slog.Error("failed to resolve recorded vote", "vote_id", voteID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Vote recorded but verification failed")
		return
	}

	slog.Info("vote recorded",
		"poll_id", poll.ID,
		"vote_id", voteID,
		"ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.VoterHashSalt),
	)

	middleware.DataResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		ChainID:      row.ChainID,
		SeqNum:       row.SeqNum,
		VoteID:       voteID,
		Poll:         models.PollRef{ID: poll.ID, Title: poll.Title},
		Option:       models.OptionRef{ID: option.ID, Name: option.Name},
		Verification: verification,
	})
}

// appendVote writes the vote to the ledger. A non-zero status reports why
// the vote was not recorded.
func (h *VoteHandler) appendVote(r *http.Request, poll models.Poll, option models.Option, voter string, identified bool) (ledger.Row, int, string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if identified {
		voted, err := h.store.HasVoted(r.Context(), poll.ID, voter)
		if err != nil {
			slog.Error("failed to check previous votes", "error", err)
			return ledger.Row{}, http.StatusInternalServerError, "Failed to submit vote"
		}
		if voted {
			return ledger.Row{}, http.StatusConflict, "You have already voted in this poll"
		}
	}

	row, err := h.store.Append(r.Context(), ledger.Vote{
		PollID:          poll.ID,
		OptionID:        option.ID,
		PollTitle:       poll.Title,
		OptionName:      option.Name,
		VoterIdentifier: voter,
	})
	if err != nil {
		slog.Error("failed to append vote", "poll_id", poll.ID, "error", err)
		return ledger.Row{}, http.StatusInternalServerError, "Failed to submit vote"
	}
	return row, 0, ""
}

// VerifyVote handles GET /api/votes/{voteId}/verify
func (h *VoteHandler) VerifyVote(w http.ResponseWriter, r *http.Request) {
	chainID, seqNum, err := ledger.ParseCompositeID(r.PathValue("voteId"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid vote ID format. Expected format: chainId:seqNum")
		return
	}

	verification, err := h.svc.Resolve(r.Context(), chainID, seqNum)
	if err != nil {
		writeLedgerError(w, err, "Vote not found", "Failed to verify vote")
		return
	}

	middleware.DataResponse(w, http.StatusOK, verification)
}

// CheckVote handles GET /api/votes/{voteId}/check
// Always answers 200; a missing or malformed vote yields valid=false
func (h *VoteHandler) CheckVote(w http.ResponseWriter, r *http.Request) {
	chainID, seqNum, err := ledger.ParseCompositeID(r.PathValue("voteId"))
	if err != nil {
		middleware.DataResponse(w, http.StatusOK, models.VoteCheck{Valid: false, Error: err.Error()})
		return
	}

	middleware.DataResponse(w, http.StatusOK, h.svc.CheckVote(r.Context(), chainID, seqNum))
}
