package docstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"docarchive/internal/storage"
)

const (
	pdfContentType = "application/pdf"
	pngContentType = "image/png"

	// maxThumbs bounds the thumbnail walk in Delete.
	maxThumbs = 10000
)

// Config holds the settings the Store needs at construction.
type Config struct {
	ThumbWidth int    // default thumbnail width in pixels
	TempDir    string // spool directory for uploads, os.TempDir() when empty
}

// Store places documents and their thumbnails in a storage backend.
// It is safe for concurrent use.
type Store struct {
	backend  storage.Storage
	renderer Renderer
	cfg      Config
	log      *logrus.Logger
}

// StoreResult describes a stored document.
type StoreResult struct {
	Path   string
	Size   int64
	Thumbs int
}

func New(backend storage.Storage, renderer Renderer, cfg Config, log *logrus.Logger) *Store {
	if cfg.ThumbWidth <= 0 {
		cfg.ThumbWidth = 200
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Store{backend: backend, renderer: renderer, cfg: cfg, log: log}
}

// Store writes the uploaded PDF under its derived path and generates thumbnails.
// Content failing the PDF check returns ErrNotAPdf and leaves nothing in the backend.
// A thumbWidth of zero uses the configured default.
func (s *Store) Store(ctx context.Context, r io.Reader, userName string, documentID int64, created time.Time, thumbWidth int) (StoreResult, error) {
	rel, err := BuildPath(documentID, created, userName)
	if err != nil {
		return StoreResult{}, err
	}
	if thumbWidth <= 0 {
		thumbWidth = s.cfg.ThumbWidth
	}

	spool, err := os.MkdirTemp(s.cfg.TempDir, "docstore-*")
	if err != nil {
		return StoreResult{}, storageErr("spool", rel, err)
	}
	defer os.RemoveAll(spool)

	local := filepath.Join(spool, path.Base(rel))
	size, err := spoolTo(local, r)
	if err != nil {
		return StoreResult{}, storageErr("write", rel, err)
	}

	ok, err := IsPDF(local)
	if err != nil {
		return StoreResult{}, storageErr("read", rel, err)
	}
	if !ok {
		os.Remove(local)
		return StoreResult{}, ErrNotAPdf
	}

	if err := s.putFile(ctx, rel, local, pdfContentType); err != nil {
		return StoreResult{}, storageErr("write", rel, err)
	}

	res := StoreResult{Path: rel, Size: size}
	res.Thumbs = s.publishThumbs(ctx, rel, local, thumbWidth)

	s.log.WithFields(logrus.Fields{
		"component": "docstore",
		"event":     "stored",
		"path":      rel,
		"size":      size,
		"thumbs":    res.Thumbs,
	}).Info("document stored")
	return res, nil
}

// Get opens the stored PDF. A missing file yields ErrNotFound.
func (s *Store) Get(ctx context.Context, rel string) (io.ReadCloser, error) {
	return s.open(ctx, rel)
}

// GetThumb opens thumbnail n of the stored PDF. A missing thumbnail yields ErrNotFound.
func (s *Store) GetThumb(ctx context.Context, rel string, n int) (io.ReadCloser, error) {
	if rel == "" || n < 0 {
		return nil, ErrNotFound
	}
	return s.open(ctx, ThumbName(rel, n))
}

// Delete removes the PDF and then, best-effort, its thumbnails.
// Missing files are not an error.
func (s *Store) Delete(ctx context.Context, rel string) error {
	if rel == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, rel); err != nil {
		return storageErr("delete", rel, err)
	}
	removed := s.deleteThumbs(ctx, rel)
	s.log.WithFields(logrus.Fields{
		"component": "docstore",
		"event":     "deleted",
		"path":      rel,
		"thumbs":    removed,
	}).Info("document deleted")
	return nil
}

// RegenerateThumbs replaces the thumbnails of an already stored PDF and returns the new count.
func (s *Store) RegenerateThumbs(ctx context.Context, rel string, thumbWidth int) (int, error) {
	if thumbWidth <= 0 {
		thumbWidth = s.cfg.ThumbWidth
	}
	rc, err := s.open(ctx, rel)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	spool, err := os.MkdirTemp(s.cfg.TempDir, "docstore-*")
	if err != nil {
		return 0, storageErr("spool", rel, err)
	}
	defer os.RemoveAll(spool)

	local := filepath.Join(spool, path.Base(rel))
	if _, err := spoolTo(local, rc); err != nil {
		return 0, storageErr("read", rel, err)
	}

	s.deleteThumbs(ctx, rel)
	return s.publishThumbs(ctx, rel, local, thumbWidth), nil
}

func (s *Store) open(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	rc, _, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("read", key, err)
	}
	return rc, nil
}

// publishThumbs renders thumbnails beside the spooled PDF and uploads them in order.
// Upload stops at the first failure so the stored set stays contiguous.
func (s *Store) publishThumbs(ctx context.Context, rel, local string, width int) int {
	if s.renderer == nil {
		return 0
	}
	n := GenerateThumbs(ctx, s.renderer, local, width)
	for i := 0; i < n; i++ {
		if err := s.putFile(ctx, ThumbName(rel, i), ThumbName(local, i), pngContentType); err != nil {
			s.log.WithFields(logrus.Fields{
				"component": "docstore",
				"event":     "thumb_upload_failed",
				"path":      rel,
				"index":     i,
				"error":     err.Error(),
			}).Warn("thumbnail upload failed")
			return i
		}
	}
	return n
}

func (s *Store) deleteThumbs(ctx context.Context, rel string) int {
	removed := 0
	for i := 0; i < maxThumbs; i++ {
		key := ThumbName(rel, i)
		ok, err := s.backend.Exists(ctx, key)
		if err != nil || !ok {
			break
		}
		if err := s.backend.Delete(ctx, key); err != nil {
			s.log.WithFields(logrus.Fields{
				"component": "docstore",
				"event":     "thumb_delete_failed",
				"path":      key,
				"error":     err.Error(),
			}).Warn("thumbnail delete failed")
			break
		}
		removed++
	}
	return removed
}

func (s *Store) putFile(ctx context.Context, key, local, contentType string) error {
	f, err := os.Open(local)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	_, err = s.backend.Put(ctx, key, f, storage.PutObjectOptions{Size: st.Size(), ContentType: contentType})
	return err
}

func spoolTo(p string, r io.Reader) (int64, error) {
	f, err := os.Create(p)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
