package eval

import (
	"context"
	"fmt"
	"strings"
)

// ScaleLevel is one step of a structured rubric scale.
type ScaleLevel struct {
	Score       float64 `json:"score"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
}

// Rubric is the scoring guide handed to a judge. Either Scale is populated
// (structured rubric) or Assertion holds a bare free-text check; the core is
// agnostic to which variant a criterion chooses.
type Rubric struct {
	Criterion   string       `json:"criterion"`
	Description string       `json:"description"`
	Scale       []ScaleLevel `json:"scale,omitempty"`
	Assertion   string       `json:"assertion,omitempty"`
}

// Max returns the ceiling of the rubric's scale. Free-text assertion rubrics
// are scored on [0,1].
func (r Rubric) Max() float64 {
	max := 0.0
	for _, lvl := range r.Scale {
		if lvl.Score > max {
			max = lvl.Score
		}
	}
	if max == 0 {
		return 1
	}
	return max
}

// JudgeScore is the raw verdict returned by a judge.
type JudgeScore struct {
	Score       float64  `json:"score"`
	Reasoning   string   `json:"reasoning"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Judge scores content against a rubric. Implementations own their own
// retry/backoff policy; the runner propagates judge failures untouched.
type Judge interface {
	Score(ctx context.Context, content string, rubric Rubric, extra string) (JudgeScore, error)
}

// JudgedSpec declares a criterion evaluated by delegating to a judge.
type JudgedSpec struct {
	Name         string
	Description  string
	ContentTypes []string
	Threshold    float64 // defaults to 1.0 when zero
	Weight       float64 // defaults to 1.0 when zero
	Optional     bool
	Rubric       Rubric
}

// NewJudged builds a judged criterion from a rubric. The judge's raw score is
// normalized by the rubric's scale ceiling and clamped to [0,1].
func NewJudged(spec JudgedSpec) Criterion {
	threshold := spec.Threshold
	if threshold == 0 {
		threshold = 1.0
	}
	weight := spec.Weight
	if weight == 0 {
		weight = 1.0
	}

	rubric := spec.Rubric
	if rubric.Criterion == "" {
		rubric.Criterion = spec.Name
	}
	if rubric.Description == "" {
		rubric.Description = spec.Description
	}

	name := spec.Name
	return Criterion{
		Name:         name,
		Description:  spec.Description,
		ContentTypes: spec.ContentTypes,
		Method:       Judged,
		Threshold:    threshold,
		Weight:       weight,
		Optional:     spec.Optional,
		Evaluate: func(ctx context.Context, input Input, judge Judge) (Score, error) {
			if judge == nil {
				return Score{}, &JudgeRequiredError{Criterion: name}
			}

			verdict, err := judge.Score(ctx, input.Content, rubric, judgeContext(input))
			if err != nil {
				return Score{}, fmt.Errorf("judge scoring of %q failed: %w", name, err)
			}

			max := rubric.Max()
			normalized := verdict.Score / max
			if normalized < 0 {
				normalized = 0
			}
			if normalized > 1 {
				normalized = 1
			}

			return Score{
				Criterion:   name,
				Score:       normalized,
				RawScore:    verdict.Score,
				MaxScore:    max,
				Passed:      normalized >= threshold,
				Reasoning:   verdict.Reasoning,
				Suggestions: verdict.Suggestions,
			}, nil
		},
	}
}

// judgeContext flattens the input's side information into the free-text
// context block of a judge request.
func judgeContext(input Input) string {
	var parts []string
	if input.Topic != "" {
		parts = append(parts, "Topic: "+input.Topic)
	}
	if input.Difficulty != "" {
		parts = append(parts, "Difficulty: "+input.Difficulty)
	}
	if len(input.PreviousContent) > 0 {
		parts = append(parts, fmt.Sprintf("The learner has already seen %d earlier section(s).", len(input.PreviousContent)))
	}
	return strings.Join(parts, "\n")
}

// JudgeRequiredError reports the fatal configuration case: a judged criterion
// is applicable to the input but the runner has no judge.
type JudgeRequiredError struct {
	Criterion string
}

func (e *JudgeRequiredError) Error() string {
	return fmt.Sprintf("judge required for criterion %q", e.Criterion)
}
