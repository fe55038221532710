// Package store provides the SQLite-backed repair metadata store and the
// document collections rsrepair reads and writes.
//
// One database file holds:
//   - unhealthy_ranges: the range catalog written by the scanner
//   - fixed_docs: per-range ids already repaired (the resumability record)
//   - documents: scan-source snapshots and authoritative collections
//   - repair_journal: an append-only audit of applied writes, with the
//     fingerprint of each version a replace wrote
//
// # Critical Patterns
//
// Set semantics for progress:
//   - PRIMARY KEY(range, doc_id) with ON CONFLICT DO NOTHING
//   - Recording the same fixed id twice is a no-op
//
// Point writes only:
//   - Upsert and DeleteByID address one document by _id
//   - Both are idempotent, so a repair interrupted between its two steps can
//     simply be re-run
//
// Key ordering:
//   - documents.doc_id has no column affinity, so ids keep their storage
//     class and sort numbers before strings, like the database's own keys
//   - Range ids and bounds persisted as text use canonical JSON
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//   - one open connection: callers must not hold rows open across calls
package store
