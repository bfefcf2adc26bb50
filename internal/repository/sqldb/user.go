package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"docarchive/internal/database"
	"docarchive/internal/model"
	"docarchive/internal/repository"
)

// UserSQL stores document owners.
type UserSQL struct {
	db database.DBTX
}

// NewUserSQL creates a new UserSQL repository.
func NewUserSQL(db database.DBTX) *UserSQL {
	return &UserSQL{db: db}
}

var _ repository.UserRepository = (*UserSQL)(nil)

// Ensure inserts the user if missing and returns the stored row.
func (r *UserSQL) Ensure(ctx context.Context, username string) (*model.User, error) {
	const q = `INSERT INTO users (username, created_at) VALUES ($1, $2) ON CONFLICT (username) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, q, username, time.Now().UTC()); err != nil {
		return nil, err
	}
	return r.FindByUsername(ctx, username)
}

// FindByUsername fetches a user by name.
func (r *UserSQL) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT id, username, created_at FROM users WHERE username = $1`
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, username).Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
