// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// MaxVoterIdentifierLen bounds the raw identifier a voter may supply.
const MaxVoterIdentifierLen = 256

var ErrInvalidVoterIdentifier = errors.New("invalid voter identifier")

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// VoterHash pseudonymizes a voter identifier before it is written to the
// ledger. The same identifier and salt always produce the same hash, which
// lets duplicate votes be detected without storing the identifier itself.
func VoterHash(identifier, salt string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || len(identifier) > MaxVoterIdentifierLen {
		return "", ErrInvalidVoterIdentifier
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(strings.ToLower(identifier)))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// AnonymousVoter returns a fresh random identifier for a voter who did not
// supply one. Anonymous votes are never deduplicated.
func AnonymousVoter() (string, error) {
	id, err := GenerateID(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate anonymous voter: %w", err)
	}
	return "anon-" + id, nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
