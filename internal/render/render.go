// Package render formats evaluation results and baseline comparisons for
// the terminal, CI logs, and machine consumers. It is a pure consumer of the
// shapes produced by the eval and baseline packages.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/edcraft/evalgate/internal/eval"
	"github.com/edcraft/evalgate/internal/eval/baseline"
)

// JSON writes any result shape as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Text writes a human-readable summary of one evaluation result.
func Text(w io.Writer, name string, res *eval.Result) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Evaluation: %s (%s)\n", name, res.ContentType)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Overall score:  %.3f\n", res.OverallScore)
	fmt.Fprintf(w, "Passed:         %v\n", res.Passed)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Criteria:")
	for _, s := range res.Scores {
		marker := "PASS"
		if !s.Passed {
			marker = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %-16s %.2f\n", marker, s.Criterion, s.Score)
	}

	if len(res.Feedback.FailedCriteria) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failures:")
		for _, fc := range res.Feedback.FailedCriteria {
			fmt.Fprintf(w, "  - %s: %s\n", fc.Criterion, fc.Reasoning)
		}
	}

	if len(res.Feedback.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range res.Feedback.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

// Markdown writes one evaluation result as a markdown section, suitable for
// CI job summaries.
func Markdown(w io.Writer, name string, res *eval.Result) {
	status := "✅ passed"
	if !res.Passed {
		status = "❌ failed"
	}
	fmt.Fprintf(w, "## %s — %s (%.3f)\n\n", name, status, res.OverallScore)

	fmt.Fprintln(w, "| Criterion | Score | Passed |")
	fmt.Fprintln(w, "|-----------|-------|--------|")
	for _, s := range res.Scores {
		fmt.Fprintf(w, "| %s | %.2f | %v |\n", s.Criterion, s.Score, s.Passed)
	}
	fmt.Fprintln(w)

	if len(res.Feedback.Suggestions) > 0 {
		fmt.Fprintln(w, "**Suggestions:**")
		for _, s := range res.Feedback.Suggestions {
			fmt.Fprintf(w, "- %s\n", s)
		}
		fmt.Fprintln(w)
	}
}

// ComparisonText writes a human-readable baseline comparison summary.
func ComparisonText(w io.Writer, cmp *baseline.Comparison) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "Baseline Comparison")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Total:      %d\n", cmp.Summary.Total)
	fmt.Fprintf(w, "Regressed:  %d\n", cmp.Summary.Regressed)
	fmt.Fprintf(w, "Improved:   %d\n", cmp.Summary.Improved)
	fmt.Fprintf(w, "Unchanged:  %d\n", cmp.Summary.Unchanged)
	fmt.Fprintf(w, "New:        %d\n", cmp.Summary.New)
	fmt.Fprintf(w, "Criterion regressions: %d\n", cmp.Summary.CriterionRegressions)
	fmt.Fprintln(w)

	for _, p := range cmp.Prompts {
		switch {
		case p.NewPrompt:
			fmt.Fprintf(w, "  NEW       %-24s %.3f\n", p.Name, p.CurrentScore)
		case p.Regressed:
			fmt.Fprintf(w, "  REGRESSED %-24s %.3f (%+.3f)\n", p.Name, p.CurrentScore, p.Delta)
			for _, cd := range p.CriteriaDeltas {
				if cd.Delta < 0 {
					fmt.Fprintf(w, "            - %s: %.2f -> %.2f\n", cd.Criterion, cd.Baseline, cd.Current)
				}
			}
		default:
			fmt.Fprintf(w, "  OK        %-24s %.3f (%+.3f)\n", p.Name, p.CurrentScore, p.Delta)
		}
	}

	fmt.Fprintln(w)
	if cmp.Passed {
		fmt.Fprintln(w, "No regressions detected.")
	} else {
		fmt.Fprintln(w, "Regressions detected.")
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

// ComparisonMarkdown writes a baseline comparison as markdown.
func ComparisonMarkdown(w io.Writer, cmp *baseline.Comparison) {
	status := "✅ no regressions"
	if !cmp.Passed {
		status = "❌ regressions detected"
	}
	fmt.Fprintf(w, "## Baseline comparison — %s\n\n", status)

	fmt.Fprintln(w, "| Item | Status | Current | Baseline | Delta |")
	fmt.Fprintln(w, "|------|--------|---------|----------|-------|")
	for _, p := range cmp.Prompts {
		status := "unchanged"
		switch {
		case p.NewPrompt:
			status = "new"
		case p.Regressed:
			status = "regressed"
		case p.Delta > 0:
			status = "improved"
		}

		base := "—"
		if p.BaselineScore != nil {
			base = fmt.Sprintf("%.3f", *p.BaselineScore)
		}
		fmt.Fprintf(w, "| %s | %s | %.3f | %s | %+.3f |\n", p.Name, status, p.CurrentScore, base, p.Delta)
	}
	fmt.Fprintln(w)
}
