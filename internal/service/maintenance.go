package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"docarchive/internal/docstore"
	"docarchive/internal/model"
	"docarchive/internal/repository"
)

// ThumbReport summarises a thumbnail regeneration run.
type ThumbReport struct {
	Documents int
	Thumbs    int
	Missing   int
	Failed    int
}

// Maintenance holds the administrative operations behind the command line tool.
type Maintenance struct {
	repos repository.Repositories
	store DocumentStore
	log   *logrus.Logger
}

func NewMaintenance(repos repository.Repositories, store DocumentStore, log *logrus.Logger) *Maintenance {
	return &Maintenance{repos: repos, store: store, log: log}
}

// RegenerateThumbs re-renders the thumbnails of every stored document.
// Per-document failures are logged and counted; the run continues.
func (m *Maintenance) RegenerateThumbs(ctx context.Context, width int) (ThumbReport, error) {
	paths, err := m.repos.Documents.StorePaths(ctx)
	if err != nil {
		return ThumbReport{}, fmt.Errorf("list store paths: %w", err)
	}

	var rep ThumbReport
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Documents++
		n, err := m.store.RegenerateThumbs(ctx, p, width)
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			rep.Missing++
			m.log.WithFields(logrus.Fields{"component": "maintenance", "path": p}).Warn("stored file missing")
		case err != nil:
			rep.Failed++
			m.log.WithFields(logrus.Fields{"component": "maintenance", "path": p, "error": err.Error()}).Error("thumbnail regeneration failed")
		default:
			rep.Thumbs += n
		}
	}
	return rep, nil
}

// NumberSequence returns the archive number counter of the named user.
func (m *Maintenance) NumberSequence(ctx context.Context, username string) (*model.NumberSequence, error) {
	u, err := m.repos.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	seq, err := m.repos.Sequences.Get(ctx, u.ID)
	if errors.Is(err, repository.ErrNotFound) {
		// No upload yet: the first reservation will start at 1.
		return &model.NumberSequence{UserID: u.ID, NextFreeNumber: 1}, nil
	}
	return seq, err
}
