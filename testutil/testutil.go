// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-ledger/cliparse"
	"github.com/danielhkuo/ballot-ledger/db"
)

// TestLedgerTable is the ledger table used by every test database
const TestLedgerTable = "votes_blockchain_test"

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := GetTestConfig()
	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, cfg.DatabaseType, cfg.LedgerTable); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        ":memory:",
		DatabaseType:       cliparse.DatabaseSQLite,
		VoterHashSalt:      "test-voter-salt",
		LedgerTable:        TestLedgerTable,
		ChainCount:         1,
		QueryTimeout:       5 * time.Second,
		SlowQueryThreshold: time.Second,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
}

// CreateTestPoll creates a poll whose voting window is open right now and
// returns its ID and the IDs of its options in display order
func CreateTestPoll(t *testing.T, conn *sql.DB, title string, options ...string) (pollID string, optionIDs []string) {
	t.Helper()

	now := time.Now().UTC()
	return CreateTestPollWindow(t, conn, title, now.Add(-time.Hour), now.Add(24*time.Hour), options...)
}

// CreateTestPollWindow creates a poll with an explicit voting window
func CreateTestPollWindow(t *testing.T, conn *sql.DB, title string, start, end time.Time, options ...string) (pollID string, optionIDs []string) {
	t.Helper()

	pollID = uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll (id, title, description, start_time, end_time, created_at)
		VALUES ($1, $2, 'A test poll', $3, $4, $5)
	`, pollID, title, start.UTC(), end.UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, name := range options {
		optionID := uuid.NewString()
		_, err := conn.Exec(`
			INSERT INTO poll_option (id, poll_id, name, description, display_order)
			VALUES ($1, $2, $3, '', $4)
		`, optionID, pollID, name, i)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, optionID)
	}

	return pollID, optionIDs
}

// InsertLedgerRow writes a ledger row directly, bypassing chain linkage.
// Tests use it to build damaged chains.
func InsertLedgerRow(t *testing.T, conn *sql.DB, chainID, seqNum int64, created time.Time, pollID, optionID string) {
	t.Helper()

	hash := strings.Repeat(fmt.Sprintf("%x", seqNum%16), 128)
	_, err := conn.Exec(fmt.Sprintf(`
		INSERT INTO %s (instance_id, chain_id, seq_num, creation_time, hash,
			poll_id, option_id, poll_title, option_name, voter_identifier, vote_timestamp)
		VALUES (1, $1, $2, $3, $4, $5, $6, 'Test Poll', 'Test Option', $7, $8)
	`, TestLedgerTable), chainID, seqNum, created.UTC(), hash, pollID, optionID, uuid.NewString(), created.UTC())
	if err != nil {
		t.Fatalf("Failed to insert ledger row: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// DecodeData decodes a {success, data} envelope and stores data in v.
// It fails the test when success is false.
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	AssertJSON(t, w, &env)
	if !env.Success {
		t.Fatalf("Expected success envelope, got error %q", env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("Failed to decode envelope data: %v", err)
	}
}
