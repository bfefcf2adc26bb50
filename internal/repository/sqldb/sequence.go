package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docarchive/internal/database"
	"docarchive/internal/model"
	"docarchive/internal/repository"
)

// SequenceSQL stores archive number counters in the number_sequences table.
type SequenceSQL struct {
	db database.DBTX
}

// NewSequenceSQL creates a new SequenceSQL repository.
func NewSequenceSQL(db database.DBTX) *SequenceSQL {
	return &SequenceSQL{db: db}
}

var _ repository.SequenceRepository = (*SequenceSQL)(nil)

// EnsureExists creates the user's counter starting at 1. Existing counters are left untouched.
func (r *SequenceSQL) EnsureExists(ctx context.Context, userID int64) error {
	const q = `
		INSERT INTO number_sequences (user_id, next_free_number)
		VALUES ($1, 1)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}

// Reserve advances the counter by n in a single UPDATE and returns the value it had before.
// The row lock taken by the UPDATE serializes concurrent reservations for the same user.
func (r *SequenceSQL) Reserve(ctx context.Context, userID int64, n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("reserve %d archive numbers: count must be positive", n)
	}
	const q = `
		UPDATE number_sequences
		SET next_free_number = next_free_number + $2
		WHERE user_id = $1
		RETURNING next_free_number - $2
	`
	var start int64
	if err := r.db.QueryRowContext(ctx, q, userID, n).Scan(&start); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return start, nil
}

// Get returns the user's counter.
func (r *SequenceSQL) Get(ctx context.Context, userID int64) (*model.NumberSequence, error) {
	const q = `SELECT user_id, next_free_number FROM number_sequences WHERE user_id = $1`
	var s model.NumberSequence
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&s.UserID, &s.NextFreeNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
