package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Entry is a single sealed record in the chain.
type Entry struct {
	Position int    `json:"position"`
	SealedAt int64  `json:"sealed_at"` // unix seconds, fixed at append time
	PrevHash string `json:"prev_hash,omitempty"`
	Body     string `json:"body"` // hex-encoded payload
	Hash     string `json:"hash"`
}

// seal returns a new entry with its hash computed over the canonical
// serialization of the remaining fields. The hash is never recomputed
// afterwards except by Validate.
func seal(position int, sealedAt int64, prevHash, body string) *Entry {
	e := &Entry{
		Position: position,
		SealedAt: sealedAt,
		PrevHash: prevHash,
		Body:     body,
	}
	e.Hash = hashEntry(e)
	return e
}

// hashEntry computes the hex SHA-256 digest over an entry's content,
// excluding the stored hash itself. The pipe-joined form is canonical:
// the same logical content always serializes to the same bytes.
func hashEntry(e *Entry) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s|%s", e.Position, e.SealedAt, e.PrevHash, e.Body)
	return hex.EncodeToString(h.Sum(nil))
}
