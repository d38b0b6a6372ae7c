package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var lineBreakRegex = regexp.MustCompile(`\r\n?`)

// NormalizeLineEndings rewrites CRLF and lone CR line breaks as LF. Character
// offsets produced by the tokenizer assume unix line endings.
func NormalizeLineEndings(text string) string {
	return lineBreakRegex.ReplaceAllString(text, "\n")
}

// FormatScore renders a score using the shortest representation that
// round-trips, always keeping a fractional part for integral values
// (1 -> "1.0").
func FormatScore(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
