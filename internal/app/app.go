// Package app wires configuration into the database, repositories and document store
// shared by the API server and the admin tool.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"docarchive/internal/config"
	"docarchive/internal/database"
	"docarchive/internal/database/migration"
	"docarchive/internal/docstore"
	"docarchive/internal/repository"
	"docarchive/internal/repository/sqldb"
	"docarchive/internal/storage"
)

// Archive holds the opened dependencies.
type Archive struct {
	Config     *config.AppConfig
	Log        *logrus.Logger
	DB         *sql.DB
	Dialect    database.Dialect
	Repos      repository.Repositories
	UnitOfWork *sqldb.UnitOfWork
	Store      *docstore.Store
}

// Open connects to the database and the storage backend. The schema is not touched;
// call Migrate for that.
func Open(cfg *config.AppConfig, log *logrus.Logger) (*Archive, error) {
	db, dialect, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backend, err := storage.Open(cfg.Store, cfg.MinIO)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	renderer := docstore.PopplerRenderer{Command: cfg.Store.Renderer, DPI: cfg.Store.RenderDPI}
	store := docstore.New(backend, renderer, docstore.Config{
		ThumbWidth: cfg.Store.ThumbWidth,
		TempDir:    cfg.Store.TempDir,
	}, log)

	return &Archive{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Dialect:    dialect,
		Repos:      sqldb.NewRepositories(db),
		UnitOfWork: sqldb.NewUnitOfWork(db),
		Store:      store,
	}, nil
}

// Migrate creates the schema if it is missing.
func (a *Archive) Migrate(ctx context.Context) error {
	host := a.Config.Database.Host
	if a.Dialect == database.SQLite {
		host = a.Config.Database.SQLitePath
	}
	return migration.EnsureMigrated(ctx, a.DB, a.Dialect, a.Log, host)
}

func (a *Archive) Close() error {
	return a.DB.Close()
}
