// Package repositories implements SQLite-backed persistence for the
// submission catalog.
//
// Each repository wraps a *sql.DB and satisfies the generic
// [models.Repository] contract, plus whatever store port the lifecycle
// service expects. Deletes are soft throughout: rows gain a deleted_at
// timestamp and every query filters on deleted_at IS NULL.
//
// Two concurrency mechanisms live here. Counters (user/submission/track
// sequences and the ISRC counter) advance through a single transactional
// UPDATE-then-SELECT in [NextSequence] and [CounterRepository], so
// concurrent callers always observe distinct, strictly increasing values.
// Submissions additionally carry a version column: updates are
// compare-and-swap on (id, version) and a lost race surfaces as
// [shared.ErrConflict] rather than overwriting a concurrent write.
package repositories
