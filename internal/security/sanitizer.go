// Package security provides input sanitization and secret masking utilities.
package security

import (
	"regexp"
	"strings"
)

// DefaultMaxLength is the truncation limit used when a caller passes zero.
const DefaultMaxLength = 255

// TextSanitizer cleans free-text input before it is stored or echoed back.
type TextSanitizer interface {
	Sanitize(text string, maxLength int) string
}

var (
	pairedTagPattern = regexp.MustCompile(`(?s)<[^>]*>.*?</[^>]*>`)
	lonelyTagPattern = regexp.MustCompile(`<[^>]+>`)
)

// scriptPatterns match script triggers: URI schemes, call sites, DOM globals
// and inline event handlers.
var scriptPatterns = compileAll(
	`javascript:`,
	`alert\s*\(`,
	`eval\s*\(`,
	`exec\s*\(`,
	`document\.`,
	`window\.`,
	`on\w+\s*=`,
)

// sqlPatterns match common SQL statement fragments and comment sequences.
var sqlPatterns = compileAll(
	`DROP\s+TABLE`,
	`DELETE\s+FROM`,
	`INSERT\s+INTO`,
	`UPDATE\s+SET`,
	`SELECT\s+.*\s+FROM`,
	`UNION\s+SELECT`,
	`OR\s+1\s*=\s*1`,
	`AND\s+1\s*=\s*1`,
	`;\s*--`,
	`(?s)/\*.*?\*/`,
)

// residualChars are stripped after truncation.
var residualChars = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// DenylistSanitizer removes markup, script triggers and SQL keyword sequences
// using a fixed denylist. It is best effort and does not replace
// parameterized queries.
type DenylistSanitizer struct{}

// NewDenylistSanitizer creates a denylist sanitizer.
func NewDenylistSanitizer() *DenylistSanitizer {
	return &DenylistSanitizer{}
}

// Sanitize cleans text in a fixed order: markup, script patterns, SQL
// patterns, truncation to maxLength runes, residual characters, whitespace.
func (s *DenylistSanitizer) Sanitize(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	clean := pairedTagPattern.ReplaceAllString(text, "")
	clean = lonelyTagPattern.ReplaceAllString(clean, "")

	for _, re := range scriptPatterns {
		clean = re.ReplaceAllString(clean, "")
	}
	for _, re := range sqlPatterns {
		clean = re.ReplaceAllString(clean, "")
	}

	clean = truncateRunes(clean, maxLength)
	clean = residualChars.Replace(clean)

	return strings.TrimSpace(clean)
}

// Sanitize runs the default denylist sanitizer.
func Sanitize(text string, maxLength int) string {
	return NewDenylistSanitizer().Sanitize(text, maxLength)
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
