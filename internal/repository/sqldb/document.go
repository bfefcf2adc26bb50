package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"docarchive/internal/database"
	"docarchive/internal/model"
	"docarchive/internal/repository"
)

// DocumentSQL is a database/sql implementation of repository.DocumentRepository.
// Queries use $N placeholders, which both pgx and modernc sqlite accept.
type DocumentSQL struct {
	db database.DBTX
}

// NewDocumentSQL creates a new DocumentSQL repository over a connection or transaction.
func NewDocumentSQL(db database.DBTX) *DocumentSQL {
	return &DocumentSQL{db: db}
}

var _ repository.DocumentRepository = (*DocumentSQL)(nil)

const documentColumns = `id, user_id, store_path, creation_time, archive_numbers_start, archive_numbers_length, title`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d      model.Document
		start  sql.NullInt64
		length sql.NullInt64
		title  sql.NullString
	)
	if err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.StorePath,
		&d.CreationTime,
		&start,
		&length,
		&title,
	); err != nil {
		return nil, err
	}
	if start.Valid {
		d.ArchiveNumbersStart = &start.Int64
	}
	if length.Valid {
		d.ArchiveNumbersLength = &length.Int64
	}
	if title.Valid {
		d.Title = &title.String
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentSQL) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	q := `
		INSERT INTO documents (user_id, store_path, creation_time, archive_numbers_start, archive_numbers_length, title)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.UserID,
		doc.StorePath,
		doc.CreationTime,
		nullInt(doc.ArchiveNumbersStart),
		nullInt(doc.ArchiveNumbersLength),
		nullString(doc.Title),
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID, scoped to its owner.
func (r *DocumentSQL) FindByID(ctx context.Context, userID, id int64) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND user_id = $2`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// SetStorePath records the relative path of the document's file.
func (r *DocumentSQL) SetStorePath(ctx context.Context, id int64, storePath string) error {
	const q = `UPDATE documents SET store_path = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, storePath, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// UpdateProperties changes title and creation time of the user's document.
func (r *DocumentSQL) UpdateProperties(ctx context.Context, userID, id int64, title *string, creationTime time.Time) error {
	const q = `UPDATE documents SET title = $1, creation_time = $2 WHERE id = $3 AND user_id = $4`
	res, err := r.db.ExecContext(ctx, q, nullString(title), creationTime, id, userID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// List returns the user's documents, newest first, using LIMIT/OFFSET pagination and a total count.
func (r *DocumentSQL) List(ctx context.Context, userID int64, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1
		ORDER BY creation_time DESC, id DESC
		LIMIT $2 OFFSET $3`
	items, err := r.query(ctx, q, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// ListByTags returns the user's documents that carry every tag in tags.
func (r *DocumentSQL) ListByTags(ctx context.Context, userID int64, tags []string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	tags = uniqueStrings(tags)
	if len(tags) == 0 {
		return &repository.PageResult[model.Document]{Items: []model.Document{}, Total: 0}, nil
	}

	// $1 is the user, $2..$n+1 the tag names, $n+2 the required match count.
	args := make([]any, 0, len(tags)+4)
	args = append(args, userID)
	for _, t := range tags {
		args = append(args, t)
	}
	args = append(args, len(tags))

	filter := fmt.Sprintf(`
		WHERE user_id = $1 AND id IN (
			SELECT dt.document_id
			FROM document_tags dt
			JOIN tags t ON t.id = dt.tag_id
			WHERE t.name IN (%s)
			GROUP BY dt.document_id
			HAVING COUNT(DISTINCT t.id) = $%d
		)`, placeholders(2, len(tags)), len(tags)+2)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+filter, args...).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + documentColumns + ` FROM documents` + filter + fmt.Sprintf(`
		ORDER BY creation_time DESC, id DESC
		LIMIT $%d OFFSET $%d`, len(tags)+3, len(tags)+4)
	items, err := r.query(ctx, q, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// StorePaths returns the path of every document whose file has been placed.
func (r *DocumentSQL) StorePaths(ctx context.Context) ([]string, error) {
	const q = `SELECT store_path FROM documents WHERE store_path <> '' ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Delete removes a document and its tag links. It does not return an error if the row does not exist.
func (r *DocumentSQL) Delete(ctx context.Context, userID, id int64) error {
	const qTags = `DELETE FROM document_tags WHERE document_id IN (SELECT id FROM documents WHERE id = $1 AND user_id = $2)`
	if _, err := r.db.ExecContext(ctx, qTags, id, userID); err != nil {
		return err
	}
	const q = `DELETE FROM documents WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, q, id, userID)
	return err
}

func (r *DocumentSQL) query(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// placeholders renders "$from, $from+1, ..." for n arguments.
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
