// Package catalog defines the built-in criteria for the supported content
// types. The catalog is fixed at construction; per-suite adjustments happen
// through config overrides, never at runtime.
package catalog

import (
	"github.com/edcraft/evalgate/internal/eval"
	"github.com/edcraft/evalgate/internal/rules"
)

// Supported content types.
const (
	TypeLesson    = "lesson"
	TypeChallenge = "challenge"
	TypeReview    = "review"
)

// qualityScale is the shared 1-5 rubric scale for judged criteria.
var qualityScale = []eval.ScaleLevel{
	{Score: 1, Label: "poor", Description: "Fails the criterion almost entirely"},
	{Score: 2, Label: "weak", Description: "Major gaps; a learner would struggle"},
	{Score: 3, Label: "adequate", Description: "Meets the criterion with noticeable rough edges"},
	{Score: 4, Label: "good", Description: "Meets the criterion well with minor issues"},
	{Score: 5, Label: "excellent", Description: "Could be published as-is"},
}

// Default returns the built-in criterion catalog.
func Default() (*eval.Catalog, error) {
	return eval.NewCatalog(
		eval.NewDeterministic(eval.DeterministicSpec{
			Name:         "format",
			Description:  "Markdown markers are balanced and the content is not blank",
			ContentTypes: []string{eval.WildcardContentType},
			Threshold:    1.0,
			Weight:       1.0,
			Assertions: []eval.Assertion{
				rules.NotBlank(),
				rules.BalancedMarkers(),
			},
		}),
		eval.NewDeterministic(eval.DeterministicSpec{
			Name:         "structure",
			Description:  "Lessons are organized into at least two sections",
			ContentTypes: []string{TypeLesson},
			Threshold:    1.0,
			Weight:       1.0,
			Assertions: []eval.Assertion{
				rules.HeadingCountAtLeast(2),
			},
		}),
		eval.NewDeterministic(eval.DeterministicSpec{
			Name:         "length",
			Description:  "Content length stays within readable bounds",
			ContentTypes: []string{TypeLesson, TypeReview},
			Threshold:    1.0,
			Weight:       0.5,
			Optional:     true,
			Transforms:   []eval.Transform{rules.TrimSpace},
			Assertions: []eval.Assertion{
				rules.RuneLengthBetween(200, 20000),
			},
		}),
		eval.NewDeterministic(eval.DeterministicSpec{
			Name:         "code-sample",
			Description:  "Challenges include a runnable code sample",
			ContentTypes: []string{TypeChallenge},
			Threshold:    1.0,
			Weight:       1.0,
			Assertions: []eval.Assertion{
				rules.HasCodeBlock(),
			},
		}),
		eval.NewDeterministic(eval.DeterministicSpec{
			Name:         "no-placeholders",
			Description:  "No leftover generation placeholders or lorem ipsum",
			ContentTypes: []string{eval.WildcardContentType},
			Threshold:    1.0,
			Weight:       1.5,
			Assertions: []eval.Assertion{
				rules.NotContains("TODO:", "FIXME", "lorem ipsum", "[insert", "{{"),
			},
		}),
		eval.NewJudged(eval.JudgedSpec{
			Name:         "clarity",
			Description:  "The writing is clear and understandable for the target audience",
			ContentTypes: []string{eval.WildcardContentType},
			Threshold:    0.6,
			Weight:       1.0,
			Rubric: eval.Rubric{
				Criterion:   "clarity",
				Description: "How clearly the content explains its subject to the stated audience",
				Scale:       qualityScale,
			},
		}),
		eval.NewJudged(eval.JudgedSpec{
			Name:         "depth",
			Description:  "Lessons cover the topic with sufficient depth and examples",
			ContentTypes: []string{TypeLesson},
			Threshold:    0.6,
			Weight:       1.5,
			Rubric: eval.Rubric{
				Criterion:   "depth",
				Description: "Whether the lesson goes beyond surface definitions: motivation, worked examples, edge cases",
				Scale:       qualityScale,
			},
		}),
		eval.NewJudged(eval.JudgedSpec{
			Name:         "correctness",
			Description:  "Technical claims and code are accurate",
			ContentTypes: []string{TypeLesson, TypeChallenge},
			Threshold:    0.8,
			Weight:       2.0,
			Rubric: eval.Rubric{
				Criterion:   "correctness",
				Description: "Factual and technical accuracy of explanations and code",
				Scale:       qualityScale,
			},
		}),
		eval.NewJudged(eval.JudgedSpec{
			Name:         "actionability",
			Description:  "Reviews give the learner concrete next steps",
			ContentTypes: []string{TypeReview},
			Threshold:    0.6,
			Weight:       1.0,
			Rubric: eval.Rubric{
				Criterion: "actionability",
				Assertion: "The review names specific, concrete improvements the learner can act on, not generic encouragement",
			},
		}),
		eval.NewJudged(eval.JudgedSpec{
			Name:         "engagement",
			Description:  "The content holds the learner's attention",
			ContentTypes: []string{TypeLesson, TypeChallenge},
			Threshold:    0.6,
			Weight:       0.5,
			Optional:     true,
			Rubric: eval.Rubric{
				Criterion:   "engagement",
				Description: "Whether the tone and pacing keep a learner engaged",
				Scale:       qualityScale,
			},
		}),
	)
}
