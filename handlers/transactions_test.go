// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/danielhkuo/ballot-ledger/chain"
	"github.com/danielhkuo/ballot-ledger/ledger"
	"github.com/danielhkuo/ballot-ledger/models"
	"github.com/danielhkuo/ballot-ledger/testutil"
)

// seedLedger writes rows 1:1..1:n for one poll, one minute apart from base
func seedLedger(t *testing.T, db *sql.DB, n int, base time.Time) (pollID string, optionIDs []string) {
	t.Helper()
	pollID, optionIDs = testutil.CreateTestPoll(t, db, "Lunch", "Pizza", "Sushi")
	for i := 1; i <= n; i++ {
		testutil.InsertLedgerRow(t, db, 1, int64(i), base.Add(time.Duration(i)*time.Minute), pollID, optionIDs[i%2])
	}
	return pollID, optionIDs
}

func TestListTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewTransactionHandler(db, testutil.GetTestConfig())
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	pollID, _ := seedLedger(t, db, 5, base)
	otherPoll, otherOpts := testutil.CreateTestPoll(t, db, "Dinner", "Tacos", "Curry")
	testutil.InsertLedgerRow(t, db, 2, 1, base, otherPoll, otherOpts[0])

	tests := []struct {
		name           string
		query          url.Values
		expectedStatus int
		wantCount      int
	}{
		{"all", url.Values{}, http.StatusOK, 6},
		{"by poll", url.Values{"pollId": {pollID}}, http.StatusOK, 5},
		{"limit", url.Values{"limit": {"2"}}, http.StatusOK, 2},
		{"from date", url.Values{"fromDate": {"2025-03-14 09:03:00"}}, http.StatusOK, 3},
		{"rfc3339 range", url.Values{"fromDate": {"2025-03-14T09:02:00Z"}, "toDate": {"2025-03-14T09:03:00Z"}}, http.StatusOK, 2},
		{"bad date", url.Values{"fromDate": {"yesterday"}}, http.StatusBadRequest, 0},
		{"bad limit", url.Values{"limit": {"-1"}}, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/api/transactions?"+tt.query.Encode(), nil, nil)
			w := httptest.NewRecorder()

			handler.ListTransactions(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var env struct {
				Success bool                 `json:"success"`
				Data    []models.Transaction `json:"data"`
				Count   int                  `json:"count"`
			}
			testutil.AssertJSON(t, w, &env)
			if !env.Success || env.Count != tt.wantCount || len(env.Data) != tt.wantCount {
				t.Errorf("Got success=%v count=%d len=%d, want %d", env.Success, env.Count, len(env.Data), tt.wantCount)
			}
			for _, tx := range env.Data {
				if tx.Action != models.ActionVote {
					t.Errorf("Unexpected action %q", tx.Action)
				}
			}
		})
	}
}

func TestGetTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewTransactionHandler(db, testutil.GetTestConfig())
	seedLedger(t, db, 3, time.Now().UTC())

	tests := []struct {
		name           string
		id             string
		expectedStatus int
		wantPrev       string
	}{
		{"first block", "1:1", http.StatusOK, ledger.GenesisHash},
		{"later block", "1:3", http.StatusOK, "0x" + repeatHex(2)},
		{"missing", "1:4", http.StatusNotFound, ""},
		{"missing chain", "7:1", http.StatusNotFound, ""},
		{"no colon", "13", http.StatusBadRequest, ""},
		{"not numeric", "a:b", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/api/transactions/"+tt.id, nil, nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			handler.GetTransaction(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Success || resp.Error == "" {
					t.Errorf("Expected error envelope, got %+v", resp)
				}
				return
			}

			var tx models.Transaction
			testutil.DecodeData(t, w, &tx)
			if tx.PreviousHash != tt.wantPrev {
				t.Errorf("PreviousHash = %s, want %s", tx.PreviousHash, tt.wantPrev)
			}
			if tx.CreationTime == nil {
				t.Error("Expected creationTime in detail form")
			}
		})
	}
}

// repeatHex matches the placeholder hash InsertLedgerRow writes for seqNum
func repeatHex(seqNum int) string {
	const digits = "0123456789abcdef"
	b := make([]byte, ledger.HashHexLen)
	for i := range b {
		b[i] = digits[seqNum%16]
	}
	return string(b)
}

func TestGetChain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewTransactionHandler(db, testutil.GetTestConfig())
	seedLedger(t, db, 3, time.Now().UTC())

	tests := []struct {
		name           string
		chainID        string
		expectedStatus int
	}{
		{"existing chain", "1", http.StatusOK},
		{"empty chain", "2", http.StatusNotFound},
		{"non-numeric", "abc", http.StatusBadRequest},
		{"zero", "0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/api/transactions/chain/"+tt.chainID, nil, nil)
			req.SetPathValue("chainId", tt.chainID)
			w := httptest.NewRecorder()

			handler.GetChain(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var detail models.ChainDetail
			testutil.DecodeData(t, w, &detail)
			if detail.BlockCount != 3 || detail.Blocks[0].PreviousHash != ledger.GenesisHash {
				t.Errorf("Unexpected chain detail %+v", detail)
			}
		})
	}
}

func TestVerifyIntegrityDetectsGap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewTransactionHandler(db, testutil.GetTestConfig())
	pollID, opts := testutil.CreateTestPoll(t, db, "Lunch", "Pizza", "Sushi")
	now := time.Now().UTC()
	testutil.InsertLedgerRow(t, db, 1, 1, now, pollID, opts[0])
	testutil.InsertLedgerRow(t, db, 1, 2, now.Add(time.Second), pollID, opts[0])
	testutil.InsertLedgerRow(t, db, 1, 4, now.Add(2*time.Second), pollID, opts[1])
	testutil.InsertLedgerRow(t, db, 2, 1, now, pollID, opts[1])

	req := testutil.MakeRequest("GET", "/api/transactions/verify", nil, nil)
	w := httptest.NewRecorder()

	handler.VerifyIntegrity(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var result models.VerificationResult
	testutil.DecodeData(t, w, &result)

	if result.IsValid {
		t.Fatal("Expected gap to invalidate the ledger")
	}
	if result.Message != chain.MessageInvalid {
		t.Errorf("Message = %q", result.Message)
	}
	if result.Summary.ValidChains != 1 || result.Summary.InvalidChains != 1 || result.Summary.TotalIssues != 1 {
		t.Errorf("Summary = %+v, want 1 valid, 1 invalid, 1 issue", result.Summary)
	}
	if got := result.Chains[0].Issues; len(got) != 1 || got[0] != "Sequence gap: expected 3, got 4" {
		t.Errorf("Issues = %v", got)
	}
}

func TestVerifyIntegrityStorageFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewTransactionHandler(db, testutil.GetTestConfig())
	db.Close()

	req := testutil.MakeRequest("GET", "/api/blockchain/verify", nil, nil)
	w := httptest.NewRecorder()

	handler.VerifyIntegrity(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var env struct {
		Success bool                       `json:"success"`
		Data    map[string]json.RawMessage `json:"data"`
	}
	testutil.AssertJSON(t, w, &env)
	if len(env.Data) != 3 {
		t.Errorf("Expected isValid, error and message only, got %v", env.Data)
	}
	if string(env.Data["isValid"]) != "false" {
		t.Errorf("Expected isValid false, got %s", env.Data["isValid"])
	}
}

func TestGetStatistics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewTransactionHandler(db, testutil.GetTestConfig())
	pollID, _ := seedLedger(t, db, 4, time.Now().UTC().Add(-10*time.Minute))

	req := testutil.MakeRequest("GET", "/api/transactions/stats", nil, nil)
	w := httptest.NewRecorder()

	handler.GetStatistics(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var stats models.Statistics
	testutil.DecodeData(t, w, &stats)
	if stats.TotalTransactions != 4 {
		t.Errorf("TotalTransactions = %d, want 4", stats.TotalTransactions)
	}
	if len(stats.PollStatistics) != 1 || stats.PollStatistics[0].PollID != pollID {
		t.Errorf("Unexpected poll statistics %+v", stats.PollStatistics)
	}
	if stats.BlockchainStats.MaxSequence != 4 || stats.BlockchainStats.TotalChains != 1 {
		t.Errorf("Unexpected blockchain stats %+v", stats.BlockchainStats)
	}
}

func TestGetMetadata(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewTransactionHandler(db, cfg)

	t.Run("empty ledger", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/api/blockchain/metadata", nil, nil)
		w := httptest.NewRecorder()

		handler.GetMetadata(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var md models.LedgerMetadata
		testutil.DecodeData(t, w, &md)
		if md.TableName != cfg.LedgerTable || md.HashAlgorithm != ledger.HashAlgorithm {
			t.Errorf("Unexpected metadata %+v", md)
		}
		if md.TotalTransactions != 0 || md.ChainCount != 0 {
			t.Errorf("Expected zero counts, got %+v", md)
		}
	})

	t.Run("unregistered table", func(t *testing.T) {
		other := cfg
		other.LedgerTable = "votes_unregistered"
		h := NewTransactionHandler(db, other)

		req := testutil.MakeRequest("GET", "/api/blockchain/metadata", nil, nil)
		w := httptest.NewRecorder()

		h.GetMetadata(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestGetAnalysis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewTransactionHandler(db, testutil.GetTestConfig())
	seedLedger(t, db, 2, time.Now().UTC())

	req := testutil.MakeRequest("GET", "/api/transactions/analysis", nil, nil)
	w := httptest.NewRecorder()

	handler.GetAnalysis(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var a models.Analysis
	testutil.DecodeData(t, w, &a)
	if a.TotalBlocks != 2 || a.TotalChains != 1 {
		t.Errorf("Unexpected analysis totals %d / %d", a.TotalBlocks, a.TotalChains)
	}
	if a.Blocks[1].Blockchain.PreviousHash != a.Blocks[0].Blockchain.BlockHash {
		t.Error("Second block should link to the first")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2025-03-14 09:30:00", time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), false},
		{"2025-03-14T09:30:00Z", time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), false},
		{"2025-03-14T10:30:00+01:00", time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), false},
		{"2025-03-14", time.Time{}, true},
		{"14/03/2025", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
