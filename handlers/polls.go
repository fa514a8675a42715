// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-ledger/cliparse"
	"github.com/danielhkuo/ballot-ledger/ledger"
	"github.com/danielhkuo/ballot-ledger/middleware"
	"github.com/danielhkuo/ballot-ledger/models"
)

// minPollOptions is the smallest ballot a poll may offer
const minPollOptions = 2

type PollHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	store *ledger.Store
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, store: ledger.NewStore(db, cfg)}
}

// CreatePoll handles POST /api/polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.EndTime.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "endTime is required")
		return
	}
	now := time.Now().UTC()
	start := now
	if req.StartTime != nil {
		start = req.StartTime.UTC()
	}
	end := req.EndTime.UTC()
	if !end.After(start) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "endTime must be after startTime")
		return
	}
	if len(req.Options) < minPollOptions {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least 2 options are required")
		return
	}
	for _, opt := range req.Options {
		if strings.TrimSpace(opt.Name) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "option name is required")
			return
		}
	}

	poll := models.Poll{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		CreatedAt:   now,
		Options:     make([]models.Option, 0, len(req.Options)),
	}
	poll.Status = pollStatus(poll, now)

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO poll (id, title, description, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, poll.ID, poll.Title, poll.Description, poll.StartTime, poll.EndTime, poll.CreatedAt)
	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	for i, opt := range req.Options {
		option := models.Option{
			ID:          uuid.NewString(),
			Name:        strings.TrimSpace(opt.Name),
			Description: opt.Description,
		}
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO poll_option (id, poll_id, name, description, display_order)
			VALUES ($1, $2, $3, $4, $5)
		`, option.ID, poll.ID, option.Name, option.Description, i)
		if err != nil {
			slog.Error("failed to insert option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
		poll.Options = append(poll.Options, option)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options))

	middleware.DataResponse(w, http.StatusCreated, poll)
}

// ListPolls handles GET /api/polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.loadPolls(r.Context(), "")
	if err != nil {
		slog.Error("failed to load polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch polls")
		return
	}

	middleware.ListResponse(w, http.StatusOK, polls, len(polls))
}

// GetPoll handles GET /api/polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, ok := h.pollOr404(w, r)
	if !ok {
		return
	}

	middleware.DataResponse(w, http.StatusOK, poll)
}

// GetPollResults handles GET /api/polls/{id}/results
// Results are tallied straight from the ledger and are visible at any time
func (h *PollHandler) GetPollResults(w http.ResponseWriter, r *http.Request) {
	poll, ok := h.pollOr404(w, r)
	if !ok {
		return
	}

	results := models.PollResults{
		PollID:     poll.ID,
		Title:      poll.Title,
		Status:     poll.Status,
		TotalVotes: poll.TotalVotes,
		Results:    make([]models.OptionResult, 0, len(poll.Options)),
	}
	for _, opt := range poll.Options {
		results.Results = append(results.Results, models.OptionResult{
			OptionID:   opt.ID,
			Name:       opt.Name,
			Votes:      opt.Votes,
			Percentage: percentage(opt.Votes, poll.TotalVotes),
		})
	}

	middleware.DataResponse(w, http.StatusOK, results)
}

func (h *PollHandler) pollOr404(w http.ResponseWriter, r *http.Request) (models.Poll, bool) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return models.Poll{}, false
	}

	polls, err := h.loadPolls(r.Context(), pollID)
	if err != nil {
		slog.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Poll{}, false
	}
	if len(polls) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return models.Poll{}, false
	}
	return polls[0], true
}

// loadPolls returns polls newest first with their options and ledger vote
// counts. A non-empty pollID restricts the result to that poll. Each query
// is drained before the next one starts.
func (h *PollHandler) loadPolls(ctx context.Context, pollID string) ([]models.Poll, error) {
	query := `
		SELECT id, title, description, start_time, end_time, created_at
		FROM poll
	`
	var args []any
	if pollID != "" {
		query += " WHERE id = $1"
		args = append(args, pollID)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	polls := []models.Poll{}
	index := make(map[string]int)
	for rows.Next() {
		var p models.Poll
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.StartTime, &p.EndTime, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		p.StartTime, p.EndTime, p.CreatedAt = p.StartTime.UTC(), p.EndTime.UTC(), p.CreatedAt.UTC()
		p.Options = []models.Option{}
		index[p.ID] = len(polls)
		polls = append(polls, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(polls) == 0 {
		return polls, nil
	}

	optQuery := `
		SELECT poll_id, id, name, description
		FROM poll_option
	`
	if pollID != "" {
		optQuery += " WHERE poll_id = $1"
	}
	optQuery += " ORDER BY poll_id, display_order"

	optRows, err := h.db.QueryContext(ctx, optQuery, args...)
	if err != nil {
		return nil, err
	}
	for optRows.Next() {
		var owner string
		var opt models.Option
		if err := optRows.Scan(&owner, &opt.ID, &opt.Name, &opt.Description); err != nil {
			optRows.Close()
			return nil, err
		}
		if i, ok := index[owner]; ok {
			polls[i].Options = append(polls[i].Options, opt)
		}
	}
	if err := optRows.Err(); err != nil {
		optRows.Close()
		return nil, err
	}
	optRows.Close()

	counts, err := h.store.CountByOption(ctx, pollID)
	if err != nil {
		return nil, err
	}
	votes := make(map[string]int, len(counts))
	for _, c := range counts {
		votes[c.PollID+"\x00"+c.OptionID] = c.Votes
	}

	now := time.Now().UTC()
	for i := range polls {
		p := &polls[i]
		p.Status = pollStatus(*p, now)
		for j := range p.Options {
			n := votes[p.ID+"\x00"+p.Options[j].ID]
			p.Options[j].Votes = n
			p.TotalVotes += n
		}
	}
	return polls, nil
}

// findPoll loads a single poll without vote counts
func findPoll(ctx context.Context, db *sql.DB, pollID string) (models.Poll, error) {
	var p models.Poll
	err := db.QueryRowContext(ctx, `
		SELECT id, title, description, start_time, end_time, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(&p.ID, &p.Title, &p.Description, &p.StartTime, &p.EndTime, &p.CreatedAt)
	if err != nil {
		return models.Poll{}, err
	}
	p.StartTime, p.EndTime, p.CreatedAt = p.StartTime.UTC(), p.EndTime.UTC(), p.CreatedAt.UTC()
	p.Status = pollStatus(p, time.Now().UTC())
	return p, nil
}

// findOption loads an option only if it belongs to pollID
func findOption(ctx context.Context, db *sql.DB, pollID, optionID string) (models.Option, error) {
	var opt models.Option
	err := db.QueryRowContext(ctx, `
		SELECT id, name, description
		FROM poll_option
		WHERE id = $1 AND poll_id = $2
	`, optionID, pollID).Scan(&opt.ID, &opt.Name, &opt.Description)
	return opt, err
}

// pollStatus derives the status from the voting window
func pollStatus(p models.Poll, now time.Time) string {
	switch {
	case now.Before(p.StartTime):
		return models.StatusUpcoming
	case now.After(p.EndTime):
		return models.StatusClosed
	default:
		return models.StatusActive
	}
}

func percentage(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votes)*10000/float64(total)) / 100
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
