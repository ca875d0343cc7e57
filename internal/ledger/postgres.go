package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// advisoryLockKey is a stable PostgreSQL advisory lock key used to serialise
// concurrent Append calls. The value is arbitrary but must be consistent
// across all notary instances sharing a database.
const advisoryLockKey = int64(7_230_915_188)

// PostgresLedger persists the chain to a PostgreSQL database. It implements
// the Ledger interface with the same sealing and validation semantics as
// MemoryLedger; the advisory lock is the single mutation point.
type PostgresLedger struct {
	pool   *pgxpool.Pool
	logger *zap.Logger

	mu        sync.Mutex
	corrupted bool
}

// NewPostgres creates a PostgresLedger backed by the given connection pool
// and seals the genesis entry if the table is empty.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (*PostgresLedger, error) {
	l := &PostgresLedger{pool: pool, logger: logger}
	if err := l.ensureGenesis(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *PostgresLedger) ensureGenesis(ctx context.Context) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockKey); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}

	var n int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM star_ledger").Scan(&n); err != nil {
		return fmt.Errorf("count ledger entries: %w", err)
	}
	if n > 0 {
		return tx.Commit(ctx)
	}

	genesis := seal(0, time.Now().Unix(), "", encodeGenesisBody())
	if err := insertEntry(ctx, tx, genesis); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit genesis tx: %w", err)
	}
	l.logger.Info("genesis entry sealed", zap.String("hash", genesis.Hash))
	return nil
}

func insertEntry(ctx context.Context, tx pgx.Tx, e *Entry) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO star_ledger (position, sealed_at, prev_hash, body, hash)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.Position, e.SealedAt, e.PrevHash, e.Body, e.Hash,
	); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// Append implements Ledger. It acquires the advisory lock, reads the chain
// tail, seals the new entry, inserts it, and re-validates the whole chain —
// all within a single transaction. A validation finding rolls the insert back
// and latches the fail-closed flag.
func (l *PostgresLedger) Append(ctx context.Context, body string) (*Entry, error) {
	l.mu.Lock()
	corrupted := l.corrupted
	l.mu.Unlock()
	if corrupted {
		return nil, ErrChainCorrupted
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockKey); err != nil {
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	var prevPos int
	var prevHash string
	if err := tx.QueryRow(ctx,
		"SELECT position, hash FROM star_ledger ORDER BY position DESC LIMIT 1",
	).Scan(&prevPos, &prevHash); err != nil {
		return nil, fmt.Errorf("read ledger tail: %w", err)
	}

	entry := seal(prevPos+1, time.Now().Unix(), prevHash, body)
	if err := insertEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	entries, err := scanEntries(ctx, tx)
	if err != nil {
		return nil, err
	}
	if errs := validateEntries(entries); len(errs) > 0 {
		l.mu.Lock()
		l.corrupted = true
		l.mu.Unlock()
		l.logger.Error("post-append validation failed, refusing further appends",
			zap.Int("findings", len(errs)),
		)
		return nil, ErrChainCorrupted
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}

	l.logger.Debug("ledger entry appended",
		zap.Int("position", entry.Position),
		zap.String("hash", entry.Hash),
	)
	return entry, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanEntries(ctx context.Context, q querier) ([]*Entry, error) {
	rows, err := q.Query(ctx,
		`SELECT position, sealed_at, prev_hash, body, hash
		 FROM star_ledger ORDER BY position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.Position, &e.SealedAt, &e.PrevHash, &e.Body, &e.Hash); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ByPosition implements Ledger.
func (l *PostgresLedger) ByPosition(ctx context.Context, position int) (*Entry, error) {
	if position < 0 {
		return nil, ErrNotFound
	}
	e := &Entry{}
	err := l.pool.QueryRow(ctx,
		`SELECT position, sealed_at, prev_hash, body, hash
		 FROM star_ledger WHERE position = $1`, position,
	).Scan(&e.Position, &e.SealedAt, &e.PrevHash, &e.Body, &e.Hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger entry %d: %w", position, err)
	}
	return e, nil
}

// ByHash implements Ledger.
func (l *PostgresLedger) ByHash(ctx context.Context, h string) (*Entry, error) {
	e := &Entry{}
	err := l.pool.QueryRow(ctx,
		`SELECT position, sealed_at, prev_hash, body, hash
		 FROM star_ledger WHERE hash = $1 ORDER BY position ASC LIMIT 1`, h,
	).Scan(&e.Position, &e.SealedAt, &e.PrevHash, &e.Body, &e.Hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger entry by hash: %w", err)
	}
	return e, nil
}

// Height implements Ledger.
func (l *PostgresLedger) Height(ctx context.Context) (int, error) {
	var n int
	if err := l.pool.QueryRow(ctx, "SELECT COUNT(*) FROM star_ledger").Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return n, nil
}

// Entries implements Ledger.
func (l *PostgresLedger) Entries(ctx context.Context) ([]*Entry, error) {
	return scanEntries(ctx, l.pool)
}

// Validate implements Ledger. O(n) in chain length; may be slow for very
// large ledgers.
func (l *PostgresLedger) Validate(ctx context.Context) ([]ValidationError, error) {
	entries, err := scanEntries(ctx, l.pool)
	if err != nil {
		return nil, err
	}
	return validateEntries(entries), nil
}
