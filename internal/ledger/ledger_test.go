package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/peterokwara/private-blockchain/internal/ledger"
)

var ctx = context.Background()

func mustBody(t *testing.T, owner, story string) string {
	t.Helper()
	body, err := ledger.EncodePayload(ledger.StarPayload{
		Owner:   owner,
		Message: owner,
		Star:    ledger.Star{Declination: "68° 52' 56.9", RightAscension: "16h 29m 1.0s", Story: story},
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestNewMemory_genesisInvariant(t *testing.T) {
	l := ledger.NewMemory()

	n, err := l.Height(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected height 1 after construction, got %d", n)
	}

	genesis, err := l.ByPosition(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if genesis.Position != 0 {
		t.Errorf("genesis position: got %d, want 0", genesis.Position)
	}
	if genesis.PrevHash != "" {
		t.Errorf("genesis prev_hash should be absent, got %q", genesis.PrevHash)
	}
	if genesis.Hash == "" {
		t.Error("genesis hash should be sealed")
	}

	findings, err := l.Validate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("fresh ledger should validate clean, got %v", findings)
	}
}

func TestAppend_chainsCorrectly(t *testing.T) {
	l := ledger.NewMemory()

	e1, err := l.Append(ctx, mustBody(t, "addr1", "first"))
	if err != nil {
		t.Fatal(err)
	}
	e2, err := l.Append(ctx, mustBody(t, "addr2", "second"))
	if err != nil {
		t.Fatal(err)
	}

	if e1.Position != 1 || e2.Position != 2 {
		t.Errorf("positions: got %d, %d, want 1, 2", e1.Position, e2.Position)
	}

	genesis, _ := l.ByPosition(ctx, 0)
	if e1.PrevHash != genesis.Hash {
		t.Errorf("e1.PrevHash=%q, want genesis hash %q", e1.PrevHash, genesis.Hash)
	}
	if e2.PrevHash != e1.Hash {
		t.Errorf("chain broken: e2.PrevHash=%q, want e1.Hash=%q", e2.PrevHash, e1.Hash)
	}

	n, err := l.Height(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 { // genesis + 2
		t.Errorf("expected height 3, got %d", n)
	}
}

func TestValidate_tamperedBody(t *testing.T) {
	l := ledger.NewMemory()
	_, _ = l.Append(ctx, mustBody(t, "addr1", "first"))
	_, _ = l.Append(ctx, mustBody(t, "addr1", "second"))

	victim, err := l.ByPosition(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	victim.Body = mustBody(t, "mallory", "rewritten")

	findings, err := l.Validate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) == 0 {
		t.Fatal("tampering went undetected")
	}

	found := false
	for _, f := range findings {
		if f.Kind == ledger.InvalidHash && f.Position == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected INVALID_HASH at position 1, got %v", findings)
	}
}

func TestValidate_tamperedHashBreaksLink(t *testing.T) {
	l := ledger.NewMemory()
	_, _ = l.Append(ctx, mustBody(t, "addr1", "first"))
	_, _ = l.Append(ctx, mustBody(t, "addr1", "second"))

	victim, _ := l.ByPosition(ctx, 1)
	victim.Hash = "deadbeef"

	findings, _ := l.Validate(ctx)

	var haveHash, haveLink bool
	for _, f := range findings {
		if f.Kind == ledger.InvalidHash && f.Position == 1 {
			haveHash = true
		}
		if f.Kind == ledger.InvalidLink && f.Position == 2 {
			haveLink = true
		}
	}
	if !haveHash {
		t.Errorf("expected INVALID_HASH at position 1, got %v", findings)
	}
	if !haveLink {
		t.Errorf("expected INVALID_LINK at position 2, got %v", findings)
	}
}

func TestValidate_tamperedGenesis(t *testing.T) {
	l := ledger.NewMemory()
	_, _ = l.Append(ctx, mustBody(t, "addr1", "first"))

	genesis, _ := l.ByPosition(ctx, 0)
	genesis.Body = mustBody(t, "mallory", "fake genesis")

	findings, _ := l.Validate(ctx)
	found := false
	for _, f := range findings {
		if f.Kind == ledger.InvalidHash && f.Position == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("genesis tampering went undetected: %v", findings)
	}
}

func TestAppend_failsClosedAfterCorruption(t *testing.T) {
	l := ledger.NewMemory()
	_, _ = l.Append(ctx, mustBody(t, "addr1", "first"))

	victim, _ := l.ByPosition(ctx, 1)
	victim.Body = mustBody(t, "mallory", "rewritten")

	_, err := l.Append(ctx, mustBody(t, "addr2", "second"))
	if !errors.Is(err, ledger.ErrChainCorrupted) {
		t.Fatalf("expected ErrChainCorrupted, got %v", err)
	}

	// The ledger is latched: later appends are refused too.
	_, err = l.Append(ctx, mustBody(t, "addr3", "third"))
	if !errors.Is(err, ledger.ErrChainCorrupted) {
		t.Errorf("expected ErrChainCorrupted on subsequent append, got %v", err)
	}

	// Reads keep working for diagnostics.
	if _, err := l.Validate(ctx); err != nil {
		t.Errorf("Validate should still work on a corrupted ledger: %v", err)
	}
}

func TestByPosition_bounds(t *testing.T) {
	l := ledger.NewMemory()

	if _, err := l.ByPosition(ctx, -1); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("negative position: expected ErrNotFound, got %v", err)
	}
	if _, err := l.ByPosition(ctx, 1); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("past tail: expected ErrNotFound, got %v", err)
	}
}

func TestByHash(t *testing.T) {
	l := ledger.NewMemory()
	e, _ := l.Append(ctx, mustBody(t, "addr1", "first"))

	got, err := l.ByHash(ctx, e.Hash)
	if err != nil {
		t.Fatal(err)
	}
	if got.Position != e.Position {
		t.Errorf("ByHash returned position %d, want %d", got.Position, e.Position)
	}

	if _, err := l.ByHash(ctx, "no-such-hash"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("miss: expected ErrNotFound, got %v", err)
	}
}

func TestEntries_snapshotOrder(t *testing.T) {
	l := ledger.NewMemory()
	_, _ = l.Append(ctx, mustBody(t, "addr1", "first"))
	_, _ = l.Append(ctx, mustBody(t, "addr2", "second"))

	entries, err := l.Entries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Position != i {
			t.Errorf("entries out of order: index %d holds position %d", i, e.Position)
		}
	}
}
