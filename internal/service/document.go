package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"docarchive/internal/docstore"
	"docarchive/internal/metrics"
	"docarchive/internal/model"
	"docarchive/internal/repository"
	"docarchive/internal/tagging"
)

var (
	ErrIDRequired            = errors.New("id is required")
	ErrNotFound              = errors.New("document not found")
	ErrFileRequired          = errors.New("file is required")
	ErrNotPDF                = errors.New("file must be a PDF document")
	ErrInvalidArchiveNumbers = errors.New("archive numbers must not be negative")
	ErrTagsRequired          = errors.New("at least one tag is required")
	ErrInvalidTags           = errors.New("invalid tags")
	ErrCreationTimeRequired  = errors.New("creation time is required")
	ErrInvalidUserName       = errors.New("user name cannot be used as a storage directory")
)

const pdfContentType = "application/pdf"

var tracer = otel.Tracer("docarchive/service")

// DocumentStore places document files and thumbnails.
type DocumentStore interface {
	Store(ctx context.Context, r io.Reader, userName string, documentID int64, created time.Time, thumbWidth int) (docstore.StoreResult, error)
	Get(ctx context.Context, rel string) (io.ReadCloser, error)
	GetThumb(ctx context.Context, rel string, n int) (io.ReadCloser, error)
	Delete(ctx context.Context, rel string) error
	RegenerateThumbs(ctx context.Context, rel string, thumbWidth int) (int, error)
}

// UploadInput carries an uploaded file and its form fields.
type UploadInput struct {
	File              io.Reader
	FileName          string
	ContentType       string
	Title             string
	TitleFromFileName bool
	Tags              string
	// ArchiveNumbers is how many archive numbers to reserve. Nil or zero reserves none.
	ArchiveNumbers *int64
}

// PropertiesInput carries the editable document properties.
type PropertiesInput struct {
	Title        string
	Tags         string
	CreationTime time.Time
}

// DocumentService defines the use cases of the document archive. Every call is scoped to user.
type DocumentService interface {
	// Upload validates the file, reserves archive numbers, records the document and stores the file
	// in one unit of work. On any failure nothing is left behind.
	Upload(ctx context.Context, user *model.User, in UploadInput) (*model.Document, error)

	// List returns one page of the user's documents, newest first.
	List(ctx context.Context, user *model.User, page int) (*DocumentPage, error)

	// Search returns one page of the user's documents carrying every tag in tagString.
	Search(ctx context.Context, user *model.User, tagString string, page int) (*DocumentPage, error)

	// Get returns a single document with its tags.
	Get(ctx context.Context, user *model.User, id int64) (*model.Document, error)

	// UpdateProperties changes title, tags and creation time. The stored file is not moved.
	UpdateProperties(ctx context.Context, user *model.User, id int64, in PropertiesInput) (*model.Document, error)

	// Delete removes the document's files, then its record.
	Delete(ctx context.Context, user *model.User, id int64) error

	// Download opens the stored PDF.
	Download(ctx context.Context, user *model.User, id int64) (io.ReadCloser, *model.Document, error)

	// Thumbnail opens thumbnail n of the document. Negative n means 0.
	Thumbnail(ctx context.Context, user *model.User, id int64, n int) (io.ReadCloser, error)

	// ListTags returns every tag on the user's documents.
	ListTags(ctx context.Context, user *model.User) ([]model.Tag, error)
}

// Options configures a DocumentService.
type Options struct {
	ThumbWidth   int
	ThumbRows    int
	ThumbColumns int
	// Location is the zone creation times and store paths are expressed in.
	Location *time.Location
	Metrics  *metrics.Archive
	Log      *logrus.Logger
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	uow   repository.UnitOfWork
	repos repository.Repositories
	store DocumentStore
	opts  Options
	now   func() time.Time
}

// NewDocumentService constructs a new DocumentService. repos serves reads outside transactions.
func NewDocumentService(uow repository.UnitOfWork, repos repository.Repositories, store DocumentStore, opts Options) DocumentService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ThumbRows <= 0 {
		opts.ThumbRows = 3
	}
	if opts.ThumbColumns <= 0 {
		opts.ThumbColumns = 4
	}
	if opts.Log == nil {
		opts.Log = logrus.New()
		opts.Log.SetOutput(io.Discard)
	}
	return &documentService{uow: uow, repos: repos, store: store, opts: opts, now: time.Now}
}

func (s *documentService) Upload(ctx context.Context, user *model.User, in UploadInput) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Upload")
	defer span.End()

	if in.File == nil {
		return nil, ErrFileRequired
	}
	if !isPDFContentType(in.ContentType) {
		s.opts.Metrics.UploadRejected("content_type")
		return nil, ErrNotPDF
	}
	var count int64
	if in.ArchiveNumbers != nil {
		if *in.ArchiveNumbers < 0 {
			return nil, ErrInvalidArchiveNumbers
		}
		count = *in.ArchiveNumbers
	}
	tags := tagging.Parse(in.Tags)
	if err := tagging.Validate(tags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTags, err)
	}
	title := uploadTitle(in)
	created := s.now().In(s.opts.Location).Truncate(time.Second)

	var (
		doc    *model.Document
		stored docstore.StoreResult
	)
	err := s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories) error {
		if err := r.Sequences.EnsureExists(ctx, user.ID); err != nil {
			return fmt.Errorf("ensure sequence: %w", err)
		}
		d := &model.Document{UserID: user.ID, CreationTime: created, Title: title}
		if count > 0 {
			start, err := r.Sequences.Reserve(ctx, user.ID, count)
			if err != nil {
				return fmt.Errorf("reserve archive numbers: %w", err)
			}
			n := count
			d.ArchiveNumbersStart, d.ArchiveNumbersLength = &start, &n
		}

		saved, err := r.Documents.Create(ctx, d)
		if err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := r.Tags.SetTags(ctx, saved.ID, tags); err != nil {
			return fmt.Errorf("set tags: %w", err)
		}

		res, err := s.store.Store(ctx, in.File, user.Username, saved.ID, created, s.opts.ThumbWidth)
		if err != nil {
			return err
		}
		stored = res

		if err := r.Documents.SetStorePath(ctx, saved.ID, res.Path); err != nil {
			return fmt.Errorf("set store path: %w", err)
		}
		saved.StorePath = res.Path
		saved.Tags = tags
		doc = saved
		return nil
	})
	if err != nil {
		if stored.Path != "" {
			// Files are outside the transaction and have to go explicitly.
			if delErr := s.store.Delete(context.WithoutCancel(ctx), stored.Path); delErr != nil {
				s.opts.Log.WithFields(logrus.Fields{
					"component": "service",
					"event":     "upload_cleanup_failed",
					"path":      stored.Path,
					"error":     delErr.Error(),
				}).Error("failed to remove files of rolled back upload")
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		if errors.Is(err, docstore.ErrNotAPdf) {
			s.opts.Metrics.UploadRejected("not_pdf")
			return nil, ErrNotPDF
		}
		if errors.Is(err, docstore.ErrInvalidUserName) {
			return nil, ErrInvalidUserName
		}
		return nil, fmt.Errorf("upload document: %w", err)
	}

	s.opts.Metrics.DocumentStored(stored.Thumbs)
	s.opts.Metrics.NumbersReserved(count)
	span.SetAttributes(
		attribute.Int64("document.id", doc.ID),
		attribute.Int("document.thumbs", stored.Thumbs),
	)
	return doc, nil
}

func (s *documentService) List(ctx context.Context, user *model.User, page int) (*DocumentPage, error) {
	return s.paginate(ctx, page, func(pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
		return s.repos.Documents.List(ctx, user.ID, pq)
	})
}

func (s *documentService) Search(ctx context.Context, user *model.User, tagString string, page int) (*DocumentPage, error) {
	tags := tagging.Parse(tagString)
	if len(tags) == 0 {
		return nil, ErrTagsRequired
	}
	res, err := s.paginate(ctx, page, func(pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
		return s.repos.Documents.ListByTags(ctx, user.ID, tags, pq)
	})
	if err != nil {
		return nil, err
	}
	res.Tags = tags
	return res, nil
}

func (s *documentService) Get(ctx context.Context, user *model.User, id int64) (*model.Document, error) {
	doc, err := s.find(ctx, user, id)
	if err != nil {
		return nil, err
	}
	tags, err := s.repos.Tags.ForDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Tags = tags
	return doc, nil
}

func (s *documentService) UpdateProperties(ctx context.Context, user *model.User, id int64, in PropertiesInput) (*model.Document, error) {
	if in.CreationTime.IsZero() {
		return nil, ErrCreationTimeRequired
	}
	tags := tagging.Parse(in.Tags)
	if err := tagging.Validate(tags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTags, err)
	}
	var title *string
	if t := strings.TrimSpace(in.Title); t != "" {
		title = &t
	}
	if _, err := s.find(ctx, user, id); err != nil {
		return nil, err
	}
	// Stored times share one zone so text-backed columns sort chronologically.
	created := in.CreationTime.In(s.opts.Location).Truncate(time.Second)

	err := s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories) error {
		if err := r.Documents.UpdateProperties(ctx, user.ID, id, title, created); err != nil {
			return err
		}
		return r.Tags.SetTags(ctx, id, tags)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update properties: %w", err)
	}
	return s.Get(ctx, user, id)
}

// Delete removes a document's files first, then deletes its record.
func (s *documentService) Delete(ctx context.Context, user *model.User, id int64) error {
	doc, err := s.find(ctx, user, id)
	if err != nil {
		return err
	}
	// If the files cannot be removed keep the row so they stay reachable.
	if err := s.store.Delete(ctx, doc.StorePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repos.Documents.Delete(ctx, user.ID, id)
}

func (s *documentService) Download(ctx context.Context, user *model.User, id int64) (io.ReadCloser, *model.Document, error) {
	doc, err := s.find(ctx, user, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Get(ctx, doc.StorePath)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return rc, doc, nil
}

func (s *documentService) Thumbnail(ctx context.Context, user *model.User, id int64, n int) (io.ReadCloser, error) {
	if n < 0 {
		n = 0
	}
	doc, err := s.find(ctx, user, id)
	if err != nil {
		return nil, err
	}
	rc, err := s.store.GetThumb(ctx, doc.StorePath, n)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rc, nil
}

func (s *documentService) ListTags(ctx context.Context, user *model.User) ([]model.Tag, error) {
	return s.repos.Tags.ListForUser(ctx, user.ID)
}

func (s *documentService) find(ctx context.Context, user *model.User, id int64) (*model.Document, error) {
	if id <= 0 {
		return nil, ErrIDRequired
	}
	doc, err := s.repos.Documents.FindByID(ctx, user.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func isPDFContentType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && strings.EqualFold(mt, pdfContentType)
}

// uploadTitle picks the file name stem, the given title, or none.
func uploadTitle(in UploadInput) *string {
	var t string
	if in.TitleFromFileName {
		name := path.Base(strings.ReplaceAll(in.FileName, `\`, "/"))
		t = strings.TrimSuffix(name, path.Ext(name))
	} else {
		t = in.Title
	}
	if t = strings.TrimSpace(t); t == "" || t == "." || t == "/" {
		return nil
	}
	return &t
}
