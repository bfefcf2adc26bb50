package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAPdf is returned by Store when the uploaded bytes do not start with the PDF magic.
	ErrNotAPdf = errors.New("uploaded file is not a PDF")
	// ErrNotFound is returned when a stored document or thumbnail does not exist.
	ErrNotFound = errors.New("stored file not found")
	// ErrInvalidUserName is returned when a user name cannot be used as a path segment.
	ErrInvalidUserName = errors.New("user name is not a safe path segment")
)

// StorageError reports an I/O failure while placing, reading or removing stored files.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("docstore %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op, path string, err error) error {
	return &StorageError{Op: op, Path: path, Err: err}
}
