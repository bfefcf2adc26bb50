package model

import (
	"fmt"
	"path"
	"time"
)

// Document is one archived PDF owned by a user.
// StorePath is relative to the document store root; it is empty until the file has been placed.
type Document struct {
	ID                   int64     `json:"id"`
	UserID               int64     `json:"user_id"`
	StorePath            string    `json:"store_path"`
	CreationTime         time.Time `json:"creation_time"`
	ArchiveNumbersStart  *int64    `json:"archive_numbers_start,omitempty"`
	ArchiveNumbersLength *int64    `json:"archive_numbers_length,omitempty"`
	Title                *string   `json:"title,omitempty"`
	Tags                 []string  `json:"tags"`
}

// HasArchiveNumbers reports whether a non-empty archive number range is attached.
func (d *Document) HasArchiveNumbers() bool {
	return d.ArchiveNumbersStart != nil && d.ArchiveNumbersLength != nil && *d.ArchiveNumbersLength > 0
}

// ArchiveNumbersString renders the archive number range: "" for none, "N" for a single
// number and "N-M" (inclusive) otherwise.
func (d *Document) ArchiveNumbersString() string {
	if !d.HasArchiveNumbers() {
		return ""
	}
	start, n := *d.ArchiveNumbersStart, *d.ArchiveNumbersLength
	if n == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d-%d", start, start+n-1)
}

// DisplayName is the title when set, else the stored file's base name.
func (d *Document) DisplayName() string {
	if d.Title != nil && *d.Title != "" {
		return *d.Title
	}
	return path.Base(d.StorePath)
}
