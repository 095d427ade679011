// Package rules provides the concrete deterministic transforms and
// assertions that factory-built criteria compose. Every function here is
// pure: no I/O, no side effects.
package rules

import (
	"regexp"
	"strings"
)

var fencedBlockPattern = regexp.MustCompile("(?s)```.*?```")

// TrimSpace removes leading and trailing whitespace.
func TrimSpace(s string) string {
	return strings.TrimSpace(s)
}

// Lowercase folds the content to lower case so assertions can match
// case-insensitively.
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// StripCodeFences removes fenced code blocks so prose assertions do not
// trip on code samples. An unterminated fence is left in place; the
// BalancedMarkers assertion is responsible for flagging it.
func StripCodeFences(s string) string {
	return fencedBlockPattern.ReplaceAllString(s, "")
}
