package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SequenceRepository maintains the per-scope monotonic counters backing
// control number assignment. All counters live in one keyed table; the
// increment is a single upsert statement so Postgres serialises concurrent
// callers on the row lock and no two callers can observe the same value.
type SequenceRepository struct {
	db *sqlx.DB
}

// NewSequenceRepository constructs the repository.
func NewSequenceRepository(db *sqlx.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next reserves and returns the next value for the scope. Counters start at
// zero, so the first call returns 1.
func (r *SequenceRepository) Next(ctx context.Context, scope string) (int64, error) {
	return r.NextN(ctx, scope, 1)
}

// NextN reserves n consecutive values and returns the last one. The caller
// owns values [last-n+1, last]. Used by clone batch creation to number all
// siblings with one increment.
func (r *SequenceRepository) NextN(ctx context.Context, scope string, n int64) (int64, error) {
	if scope == "" {
		return 0, fmt.Errorf("counter scope required")
	}
	if n < 1 {
		return 0, fmt.Errorf("counter reservation must be positive, got %d", n)
	}
	const query = `INSERT INTO sequence_counters (scope, current_value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (scope) DO UPDATE SET current_value = sequence_counters.current_value + $2, updated_at = NOW()
RETURNING current_value`
	var last int64
	if err := r.db.QueryRowxContext(ctx, query, scope, n).Scan(&last); err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", scope, err)
	}
	return last, nil
}

// Current reads the counter without reserving anything. Used only for the
// optimistic "next number" preview; the value can be stale the moment it is
// returned.
func (r *SequenceRepository) Current(ctx context.Context, scope string) (int64, error) {
	const query = `SELECT current_value FROM sequence_counters WHERE scope = $1`
	var value int64
	if err := r.db.GetContext(ctx, &value, query, scope); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read counter %s: %w", scope, err)
	}
	return value, nil
}
