// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/ballot-ledger/chain"
	"github.com/danielhkuo/ballot-ledger/cliparse"
	"github.com/danielhkuo/ballot-ledger/ledger"
	"github.com/danielhkuo/ballot-ledger/middleware"
)

// defaultListLimit caps GET /api/transactions when no limit is given
const defaultListLimit = 100

// dateLayout is the query-string date format, e.g. "2025-03-14 09:00:00"
const dateLayout = "2006-01-02 15:04:05"

type TransactionHandler struct {
	svc *chain.Service
}

func NewTransactionHandler(db *sql.DB, cfg cliparse.Config) *TransactionHandler {
	store := ledger.NewStore(db, cfg)
	return &TransactionHandler{svc: chain.NewService(store, cfg.QueryTimeout)}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.svc.Transactions(r.Context(), filters)
	if err != nil {
		slog.Error("failed to fetch transactions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}

	middleware.ListResponse(w, http.StatusOK, txs, len(txs))
}

// GetAnalysis handles GET /api/transactions/analysis
func (h *TransactionHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.svc.Analysis(r.Context())
	if err != nil {
		slog.Error("failed to analyze ledger", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to analyze transactions")
		return
	}

	middleware.DataResponse(w, http.StatusOK, analysis)
}

// GetStatistics handles GET /api/transactions/stats
func (h *TransactionHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		slog.Error("failed to compute statistics", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}

	middleware.DataResponse(w, http.StatusOK, stats)
}

// VerifyIntegrity handles GET /api/transactions/verify and GET /api/blockchain/verify
// A verification that could not run is still reported in the data payload
func (h *TransactionHandler) VerifyIntegrity(w http.ResponseWriter, r *http.Request) {
	result := h.svc.VerifyIntegrity(r.Context())
	middleware.DataResponse(w, http.StatusOK, result)
}

// GetChain handles GET /api/transactions/chain/{chainId}
func (h *TransactionHandler) GetChain(w http.ResponseWriter, r *http.Request) {
	chainID, err := strconv.ParseInt(r.PathValue("chainId"), 10, 64)
	if err != nil || chainID < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "chainId must be a positive integer")
		return
	}

	detail, err := h.svc.Chain(r.Context(), chainID)
	if err != nil {
		writeLedgerError(w, err, "Chain not found", "Failed to fetch chain")
		return
	}

	middleware.DataResponse(w, http.StatusOK, detail)
}

// GetTransaction handles GET /api/transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	chainID, seqNum, err := ledger.ParseCompositeID(r.PathValue("id"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid transaction ID format. Expected format: chainId:seqNum")
		return
	}

	tx, err := h.svc.Transaction(r.Context(), chainID, seqNum)
	if err != nil {
		writeLedgerError(w, err, "Transaction not found", "Failed to fetch transaction")
		return
	}

	middleware.DataResponse(w, http.StatusOK, tx)
}

// GetMetadata handles GET /api/blockchain/metadata
func (h *TransactionHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	md, err := h.svc.Metadata(r.Context())
	if err != nil {
		writeLedgerError(w, err, "Blockchain table not found", "Failed to fetch blockchain metadata")
		return
	}

	middleware.DataResponse(w, http.StatusOK, md)
}

// writeLedgerError maps ledger errors onto HTTP status codes
func writeLedgerError(w http.ResponseWriter, err error, notFound, failed string) {
	var malformed *ledger.MalformedInputError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, notFound)
	case errors.As(err, &malformed):
		middleware.ErrorResponse(w, http.StatusBadRequest, malformed.Error())
	default:
		slog.Error("ledger request failed", "error", err, "response", failed)
		middleware.ErrorResponse(w, http.StatusInternalServerError, failed)
	}
}

func parseFilters(r *http.Request) (ledger.Filters, error) {
	q := r.URL.Query()
	f := ledger.Filters{
		PollID: q.Get("pollId"),
		Limit:  defaultListLimit,
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return ledger.Filters{}, fmt.Errorf("limit must be a positive integer")
		}
		f.Limit = n
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"fromDate", &f.FromDate},
		{"toDate", &f.ToDate},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := parseDate(v)
		if err != nil {
			return ledger.Filters{}, fmt.Errorf("%s must be formatted as %q or RFC 3339", p.name, dateLayout)
		}
		*p.dst = &t
	}

	return f, nil
}

// parseDate accepts "YYYY-MM-DD HH:MM:SS" (read as UTC) or RFC 3339
func parseDate(v string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, v, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
