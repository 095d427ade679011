package eval

import "time"

// Input is one piece of generated content to be evaluated. It is constructed
// once per evaluation call and never mutated by the runner.
type Input struct {
	Content         string   `json:"content"`
	ContentType     string   `json:"content_type"`
	Topic           string   `json:"topic,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
	PreviousContent []string `json:"previous_content,omitempty"`
}

// Score is the outcome of evaluating a single criterion against one input.
type Score struct {
	Criterion   string   `json:"criterion"`
	Score       float64  `json:"score"`     // normalized to [0,1]
	RawScore    float64  `json:"raw_score"` // pre-normalization, e.g. 1-5 on a judged scale
	MaxScore    float64  `json:"max_score"` // ceiling of the raw scale
	Passed      bool     `json:"passed"`
	Reasoning   string   `json:"reasoning"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// FailedCriterion surfaces one failing check inside Feedback.
type FailedCriterion struct {
	Criterion   string   `json:"criterion"`
	Reasoning   string   `json:"reasoning"`
	Suggestions []string `json:"suggestions"`
}

// Feedback is derived from the scores of one evaluation; it is never authored
// independently.
type Feedback struct {
	FailedCriteria []FailedCriterion `json:"failed_criteria"`
	Strengths      []string          `json:"strengths"`
	Suggestions    []string          `json:"suggestions"`
}

// Result aggregates all criterion scores for one input.
type Result struct {
	OverallScore float64   `json:"overall_score"`
	Passed       bool      `json:"passed"`
	Scores       []Score   `json:"scores"`
	Feedback     Feedback  `json:"feedback"`
	ContentType  string    `json:"content_type"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// strengthThreshold is the fixed normalized score at or above which a
// criterion's reasoning counts as a strength, independent of the criterion's
// own pass threshold. Scores below it contribute their suggestions to the
// aggregated feedback even when the criterion passed.
const strengthThreshold = 0.75
