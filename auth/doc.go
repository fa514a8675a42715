// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides voter pseudonymization and ID generation utilities.

# Voter Hashes

Voter identifiers (an email, a student number) are never written to the
ledger in clear text. VoterHash derives an HMAC-SHA256 from the trimmed,
lowercased identifier and the configured salt:

	voter, err := auth.VoterHash(req.VoterIdentifier, cfg.VoterHashSalt)

The hash is deterministic, so a second vote by the same identifier in the
same poll can be rejected without storing the identifier itself.

# Anonymous Voters

Voters who do not identify themselves receive a fresh random identifier:

	voter, err := auth.AnonymousVoter()

Anonymous votes are never treated as duplicates.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving request logging:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
