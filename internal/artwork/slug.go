package artwork

import "regexp"

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ValidSlug reports whether s is a well-formed artwork slug: non-empty,
// letters, digits and hyphens only. Keeps path traversal and whitespace out
// before anything touches the store.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
