package service

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"docarchive/internal/model"
)

// DownloadName is the file name offered for a document download: the stored base name for
// untitled documents, else the title reduced to a portable slug with a ".pdf" suffix.
func DownloadName(doc *model.Document) string {
	if doc.Title == nil || strings.TrimSpace(*doc.Title) == "" {
		return path.Base(doc.StorePath)
	}
	return Slugify(*doc.Title) + ".pdf"
}

// Slugify lowercases s, folds accents, maps spaces and apostrophes to "_" and drops every
// other character outside [a-z0-9._-].
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == ' ' || r == '\'':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "document"
	}
	return out
}
