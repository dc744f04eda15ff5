// Package normalize converts source-specific payloads into the single
// document shape the importer persists.
package normalize

import (
	"regexp"
	"strings"

	"github.com/jonesrussell/docbridge/internal/models"
)

// Envelope is a normalized document ready for persistence: metadata for
// the database row and plain-text content for the object store.
type Envelope struct {
	Title        string
	Filename     string
	Content      string
	DocumentType models.DocumentType
	SourceID     string
	SourceURL    string
	Metadata     models.JSONMap
}

var (
	unsafeRe   = regexp.MustCompile(`[^\w\s-]`)
	collapseRe = regexp.MustCompile(`[-\s]+`)
)

// SanitizeTitle reduces a title to a filesystem-safe slug: unsafe runes
// are removed and runs of whitespace or hyphens collapse to one hyphen.
// Applying it twice yields the same result.
func SanitizeTitle(title string) string {
	s := unsafeRe.ReplaceAllString(title, "")
	s = collapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
