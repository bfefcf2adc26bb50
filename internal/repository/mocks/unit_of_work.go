package mocks

import (
	"context"

	"docarchive/internal/repository"
)

// UnitOfWork runs fn directly against Repos and records the outcome.
// Committed is true when fn returned nil; RolledBack when it returned an error.
type UnitOfWork struct {
	Repos      repository.Repositories
	Committed  bool
	RolledBack bool
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := fn(ctx, u.Repos); err != nil {
		u.RolledBack = true
		return err
	}
	u.Committed = true
	return nil
}
