// Package sanitize turns arbitrary speaker labels into names that are safe to
// use as a single path component on every major filesystem.
package sanitize

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// invalidChars are the characters Windows refuses in file names.
// Each one is replaced with an underscore.
const invalidChars = `<>:"/\|?*`

// replacement substitutes every invalid character.
const replacement = '_'

// combining reports whether r carries a non-zero canonical combining class.
// After NFKD these are the diacritics detached from their base letter.
func combining(r rune) bool {
	return norm.NFD.PropertiesString(string(r)).CCC() != 0
}

// Filename returns a filesystem-safe version of label.
//
// The label is decomposed (NFKD), combining marks are dropped so that "Café"
// becomes "Cafe", and each of < > : " / \ | ? * is replaced with '_'.
// Filename never fails and does not clamp length. It is idempotent:
// Filename(Filename(s)) == Filename(s).
func Filename(label string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(combining)))
	stripped, _, err := transform.String(t, label)
	if err != nil {
		// transform only fails on invalid state; fall back to plain NFKD.
		stripped = norm.NFKD.String(label)
	}

	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidChars, r) {
			return replacement
		}
		return r
	}, stripped)
}
