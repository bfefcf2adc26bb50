// Package tagging converts between user-entered tag strings and tag name lists.
//
// Input containing a comma outside quotes is split on commas, otherwise on
// whitespace. Double quotes group a name that may contain either delimiter.
package tagging

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxTagLength is the longest tag name accepted, in characters.
const MaxTagLength = 50

var ErrTagTooLong = errors.New("tag name is too long")

// Parse splits a tag string into a sorted list of unique names.
// Case is preserved.
func Parse(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	if !strings.ContainsAny(input, `,"`) {
		return unique(strings.Fields(input))
	}

	var (
		words      []string
		toSplit    []string
		buf        strings.Builder
		looseComma bool
		openQuote  bool
	)
	for _, c := range input {
		switch {
		case openQuote && c == '"':
			if w := strings.TrimSpace(buf.String()); w != "" {
				words = append(words, w)
			}
			buf.Reset()
			openQuote = false
		case openQuote:
			buf.WriteRune(c)
		case c == '"':
			if buf.Len() > 0 {
				toSplit = append(toSplit, buf.String())
				buf.Reset()
			}
			openQuote = true
		default:
			if c == ',' {
				looseComma = true
			}
			buf.WriteRune(c)
		}
	}
	// An unclosed quote is treated as unquoted text.
	if buf.Len() > 0 {
		if openQuote && strings.Contains(buf.String(), ",") {
			looseComma = true
		}
		toSplit = append(toSplit, buf.String())
	}

	for _, chunk := range toSplit {
		if looseComma {
			words = append(words, splitStrip(chunk, ",")...)
		} else {
			words = append(words, strings.Fields(chunk)...)
		}
	}
	return unique(words)
}

// EditString renders names back into a string Parse accepts.
// Names containing a comma are quoted; a name containing a space switches the
// separator to ", ".
func EditString(names []string) string {
	useCommas := false
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.Contains(n, ",") {
			out = append(out, `"`+n+`"`)
			continue
		}
		if strings.Contains(n, " ") {
			useCommas = true
		}
		out = append(out, n)
	}
	if useCommas {
		return strings.Join(out, ", ")
	}
	return strings.Join(out, " ")
}

// Validate rejects names longer than MaxTagLength.
func Validate(names []string) error {
	for _, n := range names {
		if utf8.RuneCountInString(n) > MaxTagLength {
			return fmt.Errorf("%w: %q exceeds %d characters", ErrTagTooLong, n, MaxTagLength)
		}
	}
	return nil
}

func splitStrip(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func unique(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
