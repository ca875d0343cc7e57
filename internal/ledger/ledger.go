package ledger

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by lookups that miss. A miss is a valid empty
	// result, not a chain fault.
	ErrNotFound = errors.New("entry not found")

	// ErrChainCorrupted is returned by Append when the post-append validation
	// walk finds an inconsistency. It is fatal: the ledger refuses further
	// appends until an operator investigates.
	ErrChainCorrupted = errors.New("chain corrupted")
)

// ValidationKind identifies the class of a chain inconsistency.
type ValidationKind string

const (
	// InvalidHash means an entry's stored hash no longer matches a fresh
	// digest of its content.
	InvalidHash ValidationKind = "INVALID_HASH"

	// InvalidLink means an entry's stored previous-hash does not match the
	// hash stored on its predecessor.
	InvalidLink ValidationKind = "INVALID_LINK"
)

// ValidationError reports one inconsistency found by Validate. Corruption is
// reported as data rather than raised, so callers get the full picture.
type ValidationError struct {
	Position int            `json:"position"`
	Kind     ValidationKind `json:"kind"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s at position %d", v.Kind, v.Position)
}

// Ledger is the interface for the append-only chain.
// Both MemoryLedger and PostgresLedger implement this interface.
type Ledger interface {
	// Append seals a new entry over the encoded body, links it to the current
	// tail, pushes it, and re-validates the whole chain.
	Append(ctx context.Context, body string) (*Entry, error)

	// ByPosition returns the entry at the given position, or ErrNotFound for
	// negative positions and positions at or beyond the chain height.
	ByPosition(ctx context.Context, position int) (*Entry, error)

	// ByHash returns the first entry whose sealed hash equals h, or ErrNotFound.
	ByHash(ctx context.Context, h string) (*Entry, error)

	// Height returns the total number of entries, including genesis.
	Height(ctx context.Context) (int, error)

	// Entries returns the full chain in position order.
	Entries(ctx context.Context) ([]*Entry, error)

	// Validate walks the whole chain and returns every inconsistency found.
	// An empty slice means the chain is intact.
	Validate(ctx context.Context) ([]ValidationError, error)
}

// validateEntries runs the chain validation walk over entries already ordered
// by position. For every entry the stored hash is checked against a fresh
// digest; for every non-genesis entry the stored previous-hash is checked
// against the predecessor's stored hash. The two checks are independent.
func validateEntries(entries []*Entry) []ValidationError {
	var errs []ValidationError
	for i, curr := range entries {
		if curr.Hash != hashEntry(curr) {
			errs = append(errs, ValidationError{Position: curr.Position, Kind: InvalidHash})
		}
		if i > 0 && curr.PrevHash != entries[i-1].Hash {
			errs = append(errs, ValidationError{Position: curr.Position, Kind: InvalidLink})
		}
	}
	return errs
}
