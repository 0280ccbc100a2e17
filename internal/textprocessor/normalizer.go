package textprocessor

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespacesRegex = regexp.MustCompile(`\s+`)

func keepRune(r rune, allowPunctuation bool) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r):
		return true
	case allowPunctuation:
		return unicode.IsPunct(r)
	}
	return false
}

// NormalizeText folds text for comparison: compatibility decomposition,
// only letters, numbers, spaces (and punctuation if allowed), lowercase,
// single spaces.
func NormalizeText(text string, allowPunctuation bool) string {
	sb := strings.Builder{}
	for _, r := range norm.NFKD.String(text) {
		if keepRune(r, allowPunctuation) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	text = whitespacesRegex.ReplaceAllLiteralString(sb.String(), " ")
	return strings.TrimSpace(text)
}

// SearchText joins the normalized non-empty parts, one per line, so a
// substring query never matches across two messages.
func SearchText(parts ...string) string {
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := NormalizeText(p, false); n != "" {
			lines = append(lines, n)
		}
	}
	return strings.Join(lines, "\n")
}

// SearchQuery normalizes a user query the same way SearchText does.
func SearchQuery(query string) string {
	return NormalizeText(query, false)
}
