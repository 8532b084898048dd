package dbdocs

import (
	"encoding/hex"
	"strings"
	"unicode"

	"lukechampine.com/blake3"
)

// MakeDocID derives a stable document id from a chunk's coordinates.
// The result is "{db}-{versionSlug}-{16 hex chars}" where the hex chars
// are the prefix of blake3(canonicalURL + "::" + sectionPath).
func MakeDocID(db, versionSlug, canonicalURL, sectionPath string) string {
	sum := blake3.Sum256([]byte(canonicalURL + "::" + sectionPath))
	return db + "-" + versionSlug + "-" + hex.EncodeToString(sum[:])[:16]
}

// SlugifyVersion converts a free-form version label into an id-safe token,
// e.g. "PostgreSQL 16.1" becomes "postgresql_16_1".
func SlugifyVersion(s string) string {
	return slugify(s, '_', "unknown")
}

// SlugifyAnchor converts a heading or section path into a URL fragment,
// e.g. "Chapter 3 > Replication" becomes "chapter-3-replication".
func SlugifyAnchor(s string) string {
	return slugify(s, '-', "section")
}

// slugify lower-cases s and collapses every run of non-alphanumeric
// characters into a single sep. Leading and trailing separators are
// dropped; an empty result becomes fallback.
func slugify(s string, sep rune, fallback string) string {
	var sb strings.Builder
	pending := false

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && sb.Len() > 0 {
				sb.WriteRune(sep)
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}

	if sb.Len() == 0 {
		return fallback
	}
	return sb.String()
}
