package eval

import (
	"context"
	"strings"
)

// Transform is a pure text-to-text normalization step applied before
// assertions run.
type Transform func(string) string

// Outcome is the verdict of a single deterministic assertion.
type Outcome struct {
	Passed    bool
	Score     float64 // in [0,1]
	Reasoning string
}

// Assertion is a pure predicate over (already transformed) content.
type Assertion func(string) Outcome

// Mode selects how a pipeline's assertion scores combine.
type Mode string

const (
	// ModeAll takes the minimum assertion score: one weak assertion caps
	// the whole criterion.
	ModeAll Mode = "all"
	// ModeAny takes the maximum assertion score: the best assertion wins.
	ModeAny Mode = "any"
)

// noAssertionsReasoning is the sentinel for the vacuous-pass case: a pipeline
// with zero assertions scores 1 by policy, not by accident.
const noAssertionsReasoning = "no assertions configured"

// DeterministicSpec declares a deterministic criterion as a pipeline of
// transforms followed by assertions, so new rules can be composed without
// writing a full evaluate function.
type DeterministicSpec struct {
	Name         string
	Description  string
	ContentTypes []string
	Threshold    float64 // defaults to 1.0 when zero
	Weight       float64 // defaults to 1.0 when zero
	Optional     bool
	Transforms   []Transform
	Assertions   []Assertion
	Mode         Mode // defaults to ModeAll
}

// NewDeterministic builds a criterion that applies the spec's transforms in
// sequence and combines its assertion scores under the spec's mode.
func NewDeterministic(spec DeterministicSpec) Criterion {
	threshold := spec.Threshold
	if threshold == 0 {
		threshold = 1.0
	}
	weight := spec.Weight
	if weight == 0 {
		weight = 1.0
	}
	mode := spec.Mode
	if mode == "" {
		mode = ModeAll
	}

	name := spec.Name
	transforms := spec.Transforms
	assertions := spec.Assertions

	return Criterion{
		Name:         name,
		Description:  spec.Description,
		ContentTypes: spec.ContentTypes,
		Method:       Deterministic,
		Threshold:    threshold,
		Weight:       weight,
		Optional:     spec.Optional,
		Evaluate: func(_ context.Context, input Input, _ Judge) (Score, error) {
			content := input.Content
			for _, t := range transforms {
				content = t(content)
			}

			if len(assertions) == 0 {
				return Score{
					Criterion: name,
					Score:     1,
					RawScore:  1,
					MaxScore:  1,
					Passed:    true,
					Reasoning: noAssertionsReasoning,
				}, nil
			}

			var (
				combined   float64
				reasonings []string
				failed     []string
			)
			for i, assert := range assertions {
				out := assert(content)
				if i == 0 {
					combined = out.Score
				} else if mode == ModeAny {
					if out.Score > combined {
						combined = out.Score
					}
				} else if out.Score < combined {
					combined = out.Score
				}
				reasonings = append(reasonings, out.Reasoning)
				// An assertion can fail locally while the composite
				// still passes under ModeAny; its reasoning is
				// surfaced as a suggestion regardless.
				if !out.Passed {
					failed = append(failed, out.Reasoning)
				}
			}

			return Score{
				Criterion:   name,
				Score:       combined,
				RawScore:    combined,
				MaxScore:    1,
				Passed:      combined >= threshold,
				Reasoning:   strings.Join(reasonings, "; "),
				Suggestions: failed,
			}, nil
		},
	}
}
