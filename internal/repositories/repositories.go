// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, soft deletes, and durable counter generation.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// atomicIncrement advances a named durable counter by one and returns the new
// value, as a single transactional read-modify-write. Concurrent callers
// serialize on the row; either the counter advances and the value is
// returned, or nothing changes.
func atomicIncrement(ctx context.Context, db *sql.DB, name string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE counters SET value = value + 1 WHERE name = ?", name)
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", name, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		// Counter not seeded yet; first allocation starts at 1.
		if _, err := tx.ExecContext(ctx, "INSERT INTO counters (name, value) VALUES (?, 1)", name); err != nil {
			return 0, fmt.Errorf("failed to seed counter %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit counter transaction: %w", err)
		}
		return 1, nil
	}

	var value int64
	if err := tx.QueryRowContext(ctx, "SELECT value FROM counters WHERE name = ?", name).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to get counter value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit counter transaction: %w", err)
	}

	return value, nil
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering for entities (e.g., user #42, submission #15).
// They are NOT exposed in CLI output but used internally for sorting and debugging.
func NextSequence(ctx context.Context, db *sql.DB, table string) (int, error) {
	value, err := atomicIncrement(ctx, db, table+"_seq")
	if err != nil {
		return 0, err
	}
	return int(value), nil
}

// CounterRepository exposes the durable counters table as the linearizable
// counter port consumed by the ISRC allocator.
type CounterRepository struct {
	db *sql.DB
}

// NewCounterRepository creates a new [CounterRepository] with the given database connection
func NewCounterRepository(db *sql.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// AtomicIncrement advances the named counter and returns its new value.
func (r *CounterRepository) AtomicIncrement(ctx context.Context, name string) (int64, error) {
	return atomicIncrement(ctx, r.db, name)
}

// Value reads the current value of a counter without advancing it.
func (r *CounterRepository) Value(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.QueryRowContext(ctx, "SELECT value FROM counters WHERE name = ?", name).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", name, err)
	}
	return value, nil
}
