package domain

import (
	"strings"
	"unicode"
)

// Slugify lowercases the input and collapses everything that is not a letter
// or digit into single hyphens, producing a URL-safe slug.
func Slugify(input string) string {
	var b strings.Builder
	lastHyphen := true // trim leading hyphens
	for _, r := range strings.ToLower(input) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
