// Package ledger implements an append-only hash-chained ledger of star records.
//
// Every entry is sealed at append time: its SHA-256 digest is computed over a
// canonical serialization of its content (position, timestamp, previous hash,
// encoded body) and fixed forever. Each entry records the hash of its
// predecessor, so any later mutation is detectable by Validate. After every
// append the whole chain is re-validated; a failed check latches the ledger
// into a corrupted state that refuses further appends.
//
// Two implementations of the Ledger interface are provided:
//   - MemoryLedger: in-process, the default for a single-process notary.
//   - PostgresLedger: durable, for deployments that want the chain to survive
//     restarts.
package ledger
