package repository

import (
	"context"
	"errors"
	"time"

	"docarchive/internal/model"
)

// ErrNotFound is returned when a row addressed by key does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here: strictly persistence operations scoped to an owning user.
type DocumentRepository interface {
	// Create inserts a new document row. StorePath may be empty and filled in later via SetStorePath.
	// Returns the stored document including the generated ID and creation time.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns the user's document by its ID, or ErrNotFound.
	FindByID(ctx context.Context, userID, id int64) (*model.Document, error)

	// SetStorePath records where the document's file was placed.
	SetStorePath(ctx context.Context, id int64, storePath string) error

	// UpdateProperties changes the editable metadata of a document.
	UpdateProperties(ctx context.Context, userID, id int64, title *string, creationTime time.Time) error

	// List returns a page of the user's documents and the total count.
	List(ctx context.Context, userID int64, pq PageQuery) (*PageResult[model.Document], error)

	// ListByTags returns a page of the user's documents carrying every one of the given tags.
	ListByTags(ctx context.Context, userID int64, tags []string, pq PageQuery) (*PageResult[model.Document], error)

	// StorePaths returns the store path of every placed document, for maintenance tasks.
	StorePaths(ctx context.Context) ([]string, error)

	// Delete removes a document row and its tag links. It returns nil if the row did not exist.
	Delete(ctx context.Context, userID, id int64) error
}

// SequenceRepository persists per-user archive number counters.
type SequenceRepository interface {
	// EnsureExists creates the user's counter at 1 if it is absent. Idempotent.
	EnsureExists(ctx context.Context, userID int64) error

	// Reserve atomically advances the user's counter by n and returns the first reserved number.
	Reserve(ctx context.Context, userID int64, n int64) (int64, error)

	// Get returns the user's counter, or ErrNotFound.
	Get(ctx context.Context, userID int64) (*model.NumberSequence, error)
}

// TagRepository manages the many-to-many link between documents and tags.
type TagRepository interface {
	// SetTags replaces the document's tags with names, creating missing tags.
	SetTags(ctx context.Context, documentID int64, names []string) error

	// ForDocument returns the sorted tag names of a document.
	ForDocument(ctx context.Context, documentID int64) ([]string, error)

	// ForDocuments returns sorted tag names keyed by document ID.
	ForDocuments(ctx context.Context, documentIDs []int64) (map[int64][]string, error)

	// ListForUser returns every tag used on the user's documents.
	ListForUser(ctx context.Context, userID int64) ([]model.Tag, error)
}

// UserRepository resolves document owners.
type UserRepository interface {
	// Ensure returns the user with the given name, creating it on first sight.
	Ensure(ctx context.Context, username string) (*model.User, error)

	// FindByUsername returns the user, or ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// Repositories groups repositories bound to the same connection or transaction.
type Repositories struct {
	Documents DocumentRepository
	Sequences SequenceRepository
	Tags      TagRepository
	Users     UserRepository
}

// UnitOfWork runs fn inside a single transaction. The transaction commits when fn returns nil
// and rolls back when it returns an error or panics.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
