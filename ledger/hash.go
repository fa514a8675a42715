// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"strings"
)

// HashHexLen is the length of a SHA2-512 digest in hex characters.
const HashHexLen = sha512.Size * 2

// HashAlgorithm names the digest used by the ledger table.
const HashAlgorithm = "SHA2_512"

// GenesisHash is the previous hash of the first block of every chain:
// "0x" followed by an all-zero 64-byte digest.
var GenesisHash = "0x" + strings.Repeat("0", HashHexLen)

// FormatHash returns the 0x-prefixed lowercase form of a stored hex digest.
func FormatHash(hexHash string) string {
	return "0x" + strings.ToLower(hexHash)
}

// PreviewHash shortens a digest for audit displays: 0x, the first 16 hex
// characters, then an ellipsis. The stored hash is never modified.
func PreviewHash(hexHash string) string {
	h := strings.ToLower(hexHash)
	if len(h) > 16 {
		h = h[:16]
	}
	return "0x" + h + "..."
}

// computeHash links a new row to its predecessor: SHA-512 over the previous
// digest bytes followed by the row's canonical content. prevHex is empty for
// the first block of a chain.
func computeHash(prevHex string, r Row) (string, error) {
	prev := make([]byte, sha512.Size)
	if prevHex != "" {
		b, err := hex.DecodeString(prevHex)
		if err != nil {
			return "", err
		}
		prev = b
	}

	h := sha512.New()
	h.Write(prev)
	writeInt(h, r.InstanceID)
	writeInt(h, r.ChainID)
	writeInt(h, r.SeqNum)
	writeInt(h, r.CreationTime.UnixMicro())
	for _, field := range []string{r.PollID, r.OptionID, r.PollTitle, r.OptionName, r.VoterIdentifier} {
		writeInt(h, int64(len(field)))
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeInt(h hash.Hash, v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}
