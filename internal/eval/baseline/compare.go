package baseline

import (
	"sort"

	"github.com/edcraft/evalgate/internal/eval"
)

// CriterionDelta is the per-criterion change between a current run and the
// baseline.
type CriterionDelta struct {
	Criterion string  `json:"criterion"`
	Current   float64 `json:"current"`
	Baseline  float64 `json:"baseline"`
	Delta     float64 `json:"delta"`
}

// PromptComparison classifies one named item against its baseline entry.
// BaselineScore is nil when the baseline has no entry for the item; Delta is
// explicitly zero in that case rather than current-minus-zero, so a
// first-seen item never implies a real regression or improvement signal.
type PromptComparison struct {
	Name           string           `json:"name"`
	ContentType    string           `json:"content_type"`
	CurrentScore   float64          `json:"current_score"`
	BaselineScore  *float64         `json:"baseline_score"`
	Delta          float64          `json:"delta"`
	Regressed      bool             `json:"regressed"`
	NewPrompt      bool             `json:"new_prompt"`
	CriteriaDeltas []CriterionDelta `json:"criteria_deltas,omitempty"`
}

// Summary counts the classification outcomes across all compared items.
// CriterionRegressions counts individual regressed criteria, not prompts.
type Summary struct {
	Total                int `json:"total"`
	Regressed            int `json:"regressed"`
	Improved             int `json:"improved"`
	Unchanged            int `json:"unchanged"`
	New                  int `json:"new"`
	CriterionRegressions int `json:"criterion_regressions"`
}

// Comparison is the outcome of diffing a run against a baseline. Passed is
// true iff nothing regressed.
type Comparison struct {
	Passed  bool               `json:"passed"`
	Prompts []PromptComparison `json:"prompts"`
	Summary Summary            `json:"summary"`
}

// Compare diffs the current results against the baseline. A score decrease
// counts as a regression only when it is strictly beyond the tolerance: a
// delta of exactly -tolerance is still unchanged.
//
// Per-criterion regression is restricted to criteria the current run actually
// evaluated. Criteria present only in the baseline, e.g. judged criteria
// skipped by a quick run, were never re-checked and must not trigger a false
// regression; their deltas still appear in CriteriaDeltas for visibility.
func Compare(current map[string]*eval.Result, base *File, tolerance float64) *Comparison {
	names := make([]string, 0, len(current))
	for name := range current {
		names = append(names, name)
	}
	sort.Strings(names)

	cmp := &Comparison{Prompts: make([]PromptComparison, 0, len(names))}
	cmp.Summary.Total = len(names)

	for _, name := range names {
		res := current[name]
		pc := PromptComparison{
			Name:         name,
			ContentType:  res.ContentType,
			CurrentScore: res.OverallScore,
		}

		entry, ok := base.Lookup(name)
		if !ok {
			pc.NewPrompt = true
			cmp.Summary.New++
			cmp.Prompts = append(cmp.Prompts, pc)
			continue
		}

		baselineScore := entry.OverallScore
		pc.BaselineScore = &baselineScore
		pc.Delta = res.OverallScore - baselineScore

		evaluated := make(map[string]float64, len(res.Scores))
		for _, s := range res.Scores {
			evaluated[s.Criterion] = s.Score
		}

		criterionRegressions := 0
		for _, cd := range criteriaDeltas(evaluated, entry.Scores) {
			pc.CriteriaDeltas = append(pc.CriteriaDeltas, cd)
			if _, ran := evaluated[cd.Criterion]; ran && cd.Delta < -tolerance {
				criterionRegressions++
			}
		}
		cmp.Summary.CriterionRegressions += criterionRegressions

		// Overall-score parity can mask a single sharply regressed
		// criterion, hence the independent per-criterion check.
		switch {
		case pc.Delta < -tolerance || criterionRegressions > 0:
			pc.Regressed = true
			cmp.Summary.Regressed++
		case pc.Delta > tolerance:
			cmp.Summary.Improved++
		default:
			cmp.Summary.Unchanged++
		}

		cmp.Prompts = append(cmp.Prompts, pc)
	}

	cmp.Passed = cmp.Summary.Regressed == 0
	return cmp
}

// criteriaDeltas unions the criterion names of both sides, treating a missing
// score on either side as zero, and returns the deltas in name order.
func criteriaDeltas(current, base map[string]float64) []CriterionDelta {
	names := make(map[string]struct{}, len(current)+len(base))
	for name := range current {
		names[name] = struct{}{}
	}
	for name := range base {
		names[name] = struct{}{}
	}

	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	deltas := make([]CriterionDelta, 0, len(ordered))
	for _, name := range ordered {
		cur := current[name]
		prev := base[name]
		deltas = append(deltas, CriterionDelta{
			Criterion: name,
			Current:   cur,
			Baseline:  prev,
			Delta:     cur - prev,
		})
	}
	return deltas
}
