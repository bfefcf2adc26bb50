package sqldb

import (
	"context"
	"sort"

	"docarchive/internal/database"
	"docarchive/internal/model"
	"docarchive/internal/repository"
)

// TagSQL links documents to tags through the document_tags table.
type TagSQL struct {
	db database.DBTX
}

// NewTagSQL creates a new TagSQL repository.
func NewTagSQL(db database.DBTX) *TagSQL {
	return &TagSQL{db: db}
}

var _ repository.TagRepository = (*TagSQL)(nil)

// SetTags replaces the tags of a document. Tags that become unused are kept.
func (r *TagSQL) SetTags(ctx context.Context, documentID int64, names []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = $1`, documentID); err != nil {
		return err
	}

	for _, name := range uniqueStrings(names) {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO tags (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return err
		}
		var tagID int64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = $1`, name).Scan(&tagID); err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO document_tags (document_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			documentID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// ForDocument returns the tag names of one document in alphabetical order.
func (r *TagSQL) ForDocument(ctx context.Context, documentID int64) ([]string, error) {
	const q = `
		SELECT t.name
		FROM tags t
		JOIN document_tags dt ON dt.tag_id = t.id
		WHERE dt.document_id = $1
		ORDER BY t.name
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ForDocuments returns the tag names of several documents in one query.
func (r *TagSQL) ForDocuments(ctx context.Context, documentIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(documentIDs))
	if len(documentIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(documentIDs))
	for i, id := range documentIDs {
		args[i] = id
	}
	q := `
		SELECT dt.document_id, t.name
		FROM tags t
		JOIN document_tags dt ON dt.tag_id = t.id
		WHERE dt.document_id IN (` + placeholders(1, len(documentIDs)) + `)
	`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = append(out[id], name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for id := range out {
		sort.Strings(out[id])
	}
	return out, nil
}

// ListForUser returns every tag attached to at least one of the user's documents.
func (r *TagSQL) ListForUser(ctx context.Context, userID int64) ([]model.Tag, error) {
	const q = `
		SELECT DISTINCT t.id, t.name
		FROM tags t
		JOIN document_tags dt ON dt.tag_id = t.id
		JOIN documents d ON d.id = dt.document_id
		WHERE d.user_id = $1
		ORDER BY t.name
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
