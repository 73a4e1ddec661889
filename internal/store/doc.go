// Package store provides SQLite-backed durable storage for the Happy Places
// ledger.
//
// Four collections:
//   - items: registry keyed by caller-supplied identity, upserted wholesale
//   - placements: append-only placement events
//   - co_presence: symmetric "seen together" edges, two rows per observation
//   - zones: descriptive location registry
//
// # Ledger Rules
//
// Placements and co-presence rows are never updated or deleted. The only
// way to create co-presence rows is AppendPlacement, which writes the
// placement and its edges in one transaction.
//
// "Latest" always means ORDER BY timestamp DESC, then the surrogate id
// DESC, so ties resolve to the most recently appended row.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=OFF: item references are deliberately unenforced
//
// Metadata columns hold canonical JSON produced by model.MarshalCanonical.
package store
