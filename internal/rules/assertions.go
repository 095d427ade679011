package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/edcraft/evalgate/internal/eval"
)

// ContainsAll scores the fraction of keywords present in the content,
// case-insensitively. It passes only when every keyword is found.
func ContainsAll(keywords ...string) eval.Assertion {
	return func(content string) eval.Outcome {
		lower := strings.ToLower(content)
		found := 0
		var missing []string
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				found++
			} else {
				missing = append(missing, kw)
			}
		}

		if len(keywords) == 0 {
			return eval.Outcome{Passed: true, Score: 1, Reasoning: "no keywords required"}
		}

		rate := float64(found) / float64(len(keywords))
		if len(missing) > 0 {
			return eval.Outcome{
				Score:     rate,
				Reasoning: fmt.Sprintf("missing keywords: %s (%d/%d found)", strings.Join(missing, ", "), found, len(keywords)),
			}
		}
		return eval.Outcome{Passed: true, Score: 1, Reasoning: fmt.Sprintf("all %d keywords present", len(keywords))}
	}
}

// ContainsAny passes when at least one of the keywords appears.
func ContainsAny(keywords ...string) eval.Assertion {
	return func(content string) eval.Outcome {
		lower := strings.ToLower(content)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return eval.Outcome{Passed: true, Score: 1, Reasoning: fmt.Sprintf("found %q", kw)}
			}
		}
		return eval.Outcome{
			Reasoning: fmt.Sprintf("none of the expected terms present: %s", strings.Join(keywords, ", ")),
		}
	}
}

// NotContains fails with a zero score when any forbidden pattern appears,
// case-insensitively.
func NotContains(patterns ...string) eval.Assertion {
	return func(content string) eval.Outcome {
		lower := strings.ToLower(content)
		var found []string
		for _, p := range patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				found = append(found, p)
			}
		}
		if len(found) > 0 {
			return eval.Outcome{
				Reasoning: fmt.Sprintf("contains forbidden patterns: %s", strings.Join(found, ", ")),
			}
		}
		return eval.Outcome{Passed: true, Score: 1, Reasoning: "no forbidden patterns present"}
	}
}

// MatchesPattern passes when the regular expression matches. The name is
// used in reasoning so feedback stays readable.
func MatchesPattern(name string, re *regexp.Regexp) eval.Assertion {
	return func(content string) eval.Outcome {
		if re.MatchString(content) {
			return eval.Outcome{Passed: true, Score: 1, Reasoning: fmt.Sprintf("content matches %s", name)}
		}
		return eval.Outcome{Reasoning: fmt.Sprintf("content does not match %s", name)}
	}
}

// RuneLengthBetween passes when the rune count is within [min, max]. A max
// of zero disables the upper bound.
func RuneLengthBetween(min, max int) eval.Assertion {
	return func(content string) eval.Outcome {
		n := utf8.RuneCountInString(content)
		if n < min {
			return eval.Outcome{Reasoning: fmt.Sprintf("content too short: %d < %d characters", n, min)}
		}
		if max > 0 && n > max {
			return eval.Outcome{Reasoning: fmt.Sprintf("content too long: %d > %d characters", n, max)}
		}
		return eval.Outcome{Passed: true, Score: 1, Reasoning: fmt.Sprintf("length %d characters within bounds", n)}
	}
}

// WordCountBetween passes when the word count is within [min, max]. A max of
// zero disables the upper bound.
func WordCountBetween(min, max int) eval.Assertion {
	return func(content string) eval.Outcome {
		n := len(strings.Fields(content))
		if n < min {
			return eval.Outcome{Reasoning: fmt.Sprintf("too few words: %d < %d", n, min)}
		}
		if max > 0 && n > max {
			return eval.Outcome{Reasoning: fmt.Sprintf("too many words: %d > %d", n, max)}
		}
		return eval.Outcome{Passed: true, Score: 1, Reasoning: fmt.Sprintf("%d words within bounds", n)}
	}
}

// NotBlank fails on empty or whitespace-only content.
func NotBlank() eval.Assertion {
	return func(content string) eval.Outcome {
		if strings.TrimSpace(content) == "" {
			return eval.Outcome{Reasoning: "content is empty or whitespace-only"}
		}
		return eval.Outcome{Passed: true, Score: 1, Reasoning: "content is not blank"}
	}
}
