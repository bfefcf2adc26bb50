package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"docarchive/internal/database"
)

type migrationStep struct {
	Name string
	SQL  string
}

var postgresSteps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         BIGSERIAL   PRIMARY KEY,
  username   TEXT        NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_number_sequences",
		SQL: `CREATE TABLE IF NOT EXISTS number_sequences (
  user_id          BIGINT PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
  next_free_number BIGINT NOT NULL DEFAULT 1 CHECK (next_free_number >= 1)
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                     BIGSERIAL   PRIMARY KEY,
  user_id                BIGINT      NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  store_path             TEXT        NOT NULL DEFAULT '',
  creation_time          TIMESTAMPTZ NOT NULL DEFAULT now(),
  archive_numbers_start  BIGINT      NULL,
  archive_numbers_length BIGINT      NULL CHECK (archive_numbers_length IS NULL OR archive_numbers_length >= 0),
  title                  TEXT        NULL
);`,
	},
	{
		Name: "create_table_tags",
		SQL: `CREATE TABLE IF NOT EXISTS tags (
  id   BIGSERIAL PRIMARY KEY,
  name TEXT      NOT NULL UNIQUE
);`,
	},
	{
		Name: "create_table_document_tags",
		SQL: `CREATE TABLE IF NOT EXISTS document_tags (
  document_id BIGINT NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  tag_id      BIGINT NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
  PRIMARY KEY (document_id, tag_id)
);`,
	},
	{
		Name: "create_index_documents_user_creation_time",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_user_creation_time ON documents (user_id, creation_time);`,
	},
	{
		Name: "create_index_document_tags_tag",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_tags_tag ON document_tags (tag_id);`,
	},
}

var sqliteSteps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         INTEGER   PRIMARY KEY AUTOINCREMENT,
  username   TEXT      NOT NULL UNIQUE,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
	},
	{
		Name: "create_table_number_sequences",
		SQL: `CREATE TABLE IF NOT EXISTS number_sequences (
  user_id          INTEGER PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
  next_free_number INTEGER NOT NULL DEFAULT 1 CHECK (next_free_number >= 1)
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                     INTEGER   PRIMARY KEY AUTOINCREMENT,
  user_id                INTEGER   NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  store_path             TEXT      NOT NULL DEFAULT '',
  creation_time          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  archive_numbers_start  INTEGER   NULL,
  archive_numbers_length INTEGER   NULL CHECK (archive_numbers_length IS NULL OR archive_numbers_length >= 0),
  title                  TEXT      NULL
);`,
	},
	{
		Name: "create_table_tags",
		SQL: `CREATE TABLE IF NOT EXISTS tags (
  id   INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT    NOT NULL UNIQUE
);`,
	},
	{
		Name: "create_table_document_tags",
		SQL: `CREATE TABLE IF NOT EXISTS document_tags (
  document_id INTEGER NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  tag_id      INTEGER NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
  PRIMARY KEY (document_id, tag_id)
);`,
	},
	{
		Name: "create_index_documents_user_creation_time",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_user_creation_time ON documents (user_id, creation_time);`,
	},
	{
		Name: "create_index_document_tags_tag",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_tags_tag ON document_tags (tag_id);`,
	},
}

func stepsFor(d database.Dialect) ([]migrationStep, string, error) {
	switch d {
	case database.Postgres:
		return postgresSteps, "SELECT to_regclass('public.documents') IS NOT NULL", nil
	case database.SQLite:
		return sqliteSteps, "SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'documents'", nil
	default:
		return nil, "", fmt.Errorf("no migrations for dialect %q", d)
	}
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dialect database.Dialect, log *logrus.Logger, dbHost string) error {
	start := time.Now()
	entry := log.WithFields(logrus.Fields{
		"component": "database",
		"db_host":   dbHost,
		"dialect":   string(dialect),
	})

	steps, sentinel, err := stepsFor(dialect)
	if err != nil {
		return err
	}

	entry.WithFields(logrus.Fields{"event": "db_migration_check", "status": "starting"}).Info("checking schema")

	var exists bool
	if err := db.QueryRowContext(ctx, sentinel).Scan(&exists); err != nil {
		entry.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"status":      "error",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		entry.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"status":      "success",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	entry.WithFields(logrus.Fields{"event": "db_migration_start", "status": "in_progress"}).Info("migrating")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			entry.WithFields(logrus.Fields{
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).WithError(err).Error("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		entry.WithFields(logrus.Fields{
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Info("migration step applied")
	}

	entry.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"status":      "success",
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("migration finished")

	return nil
}
