package docstore

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
)

const (
	dateLayout = "20060102"
	timeLayout = "150405"
)

// BuildPath derives the relative store path of a document:
//
//	<user>/<YYYYMMDD>/<YYYYMMDD><HHMMSS>-<id>.pdf
//
// The timestamp is formatted in created's own location.
func BuildPath(documentID int64, created time.Time, userName string) (string, error) {
	if documentID <= 0 {
		return "", fmt.Errorf("document id must be positive, got %d", documentID)
	}
	if err := ValidateUserName(userName); err != nil {
		return "", err
	}
	date := created.Format(dateLayout)
	name := fmt.Sprintf("%s%s-%d.pdf", date, created.Format(timeLayout), documentID)
	return path.Join(userName, date, name), nil
}

// ValidateUserName rejects names that would not stay a single path segment.
func ValidateUserName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidUserName
	}
	if strings.ContainsAny(name, `/\`) {
		return ErrInvalidUserName
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return ErrInvalidUserName
		}
	}
	return nil
}
