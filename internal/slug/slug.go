// Package slug turns story titles into URL-safe identifiers.
package slug

import (
	"strconv"
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

const (
	// Fallback is used when a title has no characters that survive transliteration.
	Fallback = "story"

	// MaxBaseLength leaves room for a numeric suffix within the 250 char column.
	MaxBaseLength = 240
)

// Make transliterates the title to ASCII, drops apostrophes so "Don't"
// stays one word, lowercases, and collapses every run of characters outside
// [a-z0-9] into a single hyphen.
func Make(title string) string {
	ascii := unidecode.Unidecode(norm.NFKC.String(title))
	ascii = strings.ReplaceAll(ascii, "'", "")

	var b strings.Builder
	b.Grow(len(ascii))
	pendingHyphen := false
	for _, r := range strings.ToLower(ascii) {
		if isSlugRune(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	out := b.String()
	if len(out) > MaxBaseLength {
		out = strings.TrimRight(out[:MaxBaseLength], "-")
	}
	if out == "" {
		return Fallback
	}
	return out
}

// WithSuffix returns base for n == 0 and "base-n" otherwise.
func WithSuffix(base string, n int) string {
	if n <= 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
