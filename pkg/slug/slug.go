// Package slug derives URL-safe, human-readable identifiers from display names.
//
// The transformation is deterministic and total: any input string maps to a
// string matching ^[a-z0-9]+(-[a-z0-9]+)*$ or to the empty string. Uniqueness
// against existing records is not this package's concern; callers resolve
// collisions by suffixing (see directory.IngestService).
package slug

import (
	"regexp"
	"strings"
)

// MaxLen caps generated slugs. Longer candidates are truncated before the
// final hyphen trim, so a truncation can never leave a trailing hyphen.
const MaxLen = 100

var (
	quoteRunsRe   = regexp.MustCompile(`['"]+`)
	spaceRunsRe   = regexp.MustCompile(`[\s_]+`)
	invalidCharRe = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRunsRe  = regexp.MustCompile(`-+`)
)

// Make converts a display name into a slug candidate.
//
//	Make("John O'Hara's Tattoo") == "john-oharas-tattoo"
//	Make("  multiple   spaces ") == "multiple-spaces"
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = quoteRunsRe.ReplaceAllString(s, "")
	s = spaceRunsRe.ReplaceAllString(s, "-")
	s = invalidCharRe.ReplaceAllString(s, "")
	s = hyphenRunsRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLen {
		s = strings.Trim(s[:MaxLen], "-")
	}
	return s
}
