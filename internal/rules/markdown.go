package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/edcraft/evalgate/internal/eval"
)

var headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)

// HeadingCountAtLeast scores the ratio of markdown headings found against the
// minimum wanted, capped at 1, so thin structure degrades gradually instead
// of flipping straight to zero.
func HeadingCountAtLeast(min int) eval.Assertion {
	return func(content string) eval.Outcome {
		count := len(headingPattern.FindAllString(content, -1))
		if count >= min {
			return eval.Outcome{
				Passed:    true,
				Score:     1,
				Reasoning: fmt.Sprintf("%d headings present (wanted at least %d)", count, min),
			}
		}
		score := 0.0
		if min > 0 {
			score = float64(count) / float64(min)
		}
		return eval.Outcome{
			Score:     score,
			Reasoning: fmt.Sprintf("only %d of %d expected headings present", count, min),
		}
	}
}

// HasCodeBlock passes when the content contains at least one fenced code
// block.
func HasCodeBlock() eval.Assertion {
	return func(content string) eval.Outcome {
		if strings.Count(content, "```") >= 2 {
			return eval.Outcome{Passed: true, Score: 1, Reasoning: "fenced code block present"}
		}
		return eval.Outcome{Reasoning: "no fenced code block found"}
	}
}

// BalancedMarkers checks that markdown emphasis and code markers are closed:
// an odd number of code fences, bold markers, or inline backticks scores
// zero.
func BalancedMarkers() eval.Assertion {
	return func(content string) eval.Outcome {
		var unclosed []string

		fences := strings.Count(content, "```")
		if fences%2 != 0 {
			unclosed = append(unclosed, "code fence (```)")
		}

		if strings.Count(content, "**")%2 != 0 {
			unclosed = append(unclosed, "bold marker (**)")
		}

		// Inline backticks are counted outside fenced blocks; each
		// fence contributes backticks of its own.
		stripped := fencedBlockPattern.ReplaceAllString(content, "")
		if fences%2 == 0 && strings.Count(stripped, "`")%2 != 0 {
			unclosed = append(unclosed, "inline code marker (`)")
		}

		if len(unclosed) > 0 {
			return eval.Outcome{
				Reasoning: fmt.Sprintf("unclosed markers: %s", strings.Join(unclosed, ", ")),
			}
		}
		return eval.Outcome{Passed: true, Score: 1, Reasoning: "all markdown markers balanced"}
	}
}
