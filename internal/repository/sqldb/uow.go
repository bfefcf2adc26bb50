package sqldb

import (
	"context"
	"database/sql"

	"docarchive/internal/database"
	"docarchive/internal/repository"
)

// NewRepositories binds every repository to q, which may be a pool or a transaction.
func NewRepositories(q database.DBTX) repository.Repositories {
	return repository.Repositories{
		Documents: NewDocumentSQL(q),
		Sequences: NewSequenceSQL(q),
		Tags:      NewTagSQL(q),
		Users:     NewUserSQL(q),
	}
}

// UnitOfWork runs callbacks inside database transactions.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a UnitOfWork over db.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

// Do hands fn a set of repositories bound to one transaction.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return database.WithTx(ctx, u.db, func(tx *sql.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
}
