package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger is an in-memory, thread-safe Ledger implementation. The chain
// lives for the lifetime of the process; durability is the caller's concern.
type MemoryLedger struct {
	mu        sync.RWMutex
	entries   []*Entry
	corrupted bool

	now func() time.Time // overridable in tests
}

// NewMemory creates a MemoryLedger initialised with the sealed genesis entry.
// Genesis is appended exactly once, without an ownership check.
func NewMemory() *MemoryLedger {
	l := &MemoryLedger{now: time.Now}
	genesis := seal(0, l.now().Unix(), "", encodeGenesisBody())
	l.entries = append(l.entries, genesis)
	return l
}

// Append implements Ledger. The push of the sealed entry is the single
// mutation point; it happens under the write lock, which is also the atomic
// visibility boundary for concurrent readers.
func (l *MemoryLedger) Append(ctx context.Context, body string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.corrupted {
		return nil, ErrChainCorrupted
	}

	tail := l.entries[len(l.entries)-1]
	entry := seal(len(l.entries), l.now().Unix(), tail.Hash, body)
	l.entries = append(l.entries, entry)

	// Every append pays for a full chain walk. A finding here means a bug
	// or tampering, so the ledger fails closed.
	if errs := validateEntries(l.entries); len(errs) > 0 {
		l.corrupted = true
		return nil, ErrChainCorrupted
	}
	return entry, nil
}

// ByPosition implements Ledger. Negative positions are rejected the same way
// as positions past the tail.
func (l *MemoryLedger) ByPosition(_ context.Context, position int) (*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if position < 0 || position >= len(l.entries) {
		return nil, ErrNotFound
	}
	return l.entries[position], nil
}

// ByHash implements Ledger. Linear scan, first match.
func (l *MemoryLedger) ByHash(_ context.Context, h string) (*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.Hash == h {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

// Height implements Ledger.
func (l *MemoryLedger) Height(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries), nil
}

// Entries implements Ledger. The returned slice is a snapshot; the entries
// themselves are shared.
func (l *MemoryLedger) Entries(_ context.Context) ([]*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Entry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

// Validate implements Ledger.
func (l *MemoryLedger) Validate(_ context.Context) ([]ValidationError, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return validateEntries(l.entries), nil
}
