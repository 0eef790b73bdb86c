package report

import (
	"regexp"
	"strings"
)

// ExtractSection extracts a named section from a document.
//
// Start headers are tried in the caller's priority order; the first one that
// matches anywhere in the text (case-insensitively) wins and extraction
// begins immediately after the match and any following whitespace. The
// section ends at the minimum offset over all end-header matches in the
// remainder of the text, or at end-of-text when none match.
//
// A missing section is a normal outcome and returns the empty string.
//
// Known precision limit: a start header that also appears inside running
// prose later in the document still matches; there is no disambiguation.
func ExtractSection(text string, startHeaders, endHeaders []string) string {
	start := -1
	for _, header := range startHeaders {
		re := headerPattern(header)
		if loc := re.FindStringIndex(text); loc != nil {
			start = loc[1]
			break
		}
	}
	if start == -1 {
		return ""
	}

	end := len(text)
	rest := text[start:]
	for _, header := range endHeaders {
		re := headerPattern(header)
		if loc := re.FindStringIndex(rest); loc != nil {
			if candidate := start + loc[0]; candidate < end {
				end = candidate
			}
		}
	}

	return strings.TrimSpace(text[start:end])
}

// headerPattern compiles a case-insensitive pattern matching the literal
// header followed by optional whitespace.
func headerPattern(header string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(header) + `\s*`)
}
