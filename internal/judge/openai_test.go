package judge

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/edcraft/evalgate/internal/eval"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    eval.JudgeScore
		wantErr bool
	}{
		{
			name:    "clean JSON",
			content: `{"reasoning": "well structured", "score": 4, "suggestions": ["add examples"]}`,
			want:    eval.JudgeScore{Score: 4, Reasoning: "well structured", Suggestions: []string{"add examples"}},
		},
		{
			name:    "JSON wrapped in prose",
			content: "Here is my evaluation:\n{\"reasoning\": \"ok\", \"score\": 3}\nHope that helps!",
			want:    eval.JudgeScore{Score: 3, Reasoning: "ok"},
		},
		{
			name:    "suggestions omitted",
			content: `{"reasoning": "fine", "score": 5}`,
			want:    eval.JudgeScore{Score: 5, Reasoning: "fine"},
		},
		{
			name:    "no JSON object at all",
			content: "I think the content is pretty good.",
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			content: `{"reasoning": "broken", "score": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerdict(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseVerdict(%q) succeeded, want error", tt.content)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerdict failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("verdict mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUserPrompt_StructuredRubric(t *testing.T) {
	rubric := eval.Rubric{
		Criterion:   "clarity",
		Description: "How clear the explanation is",
		Scale: []eval.ScaleLevel{
			{Score: 1, Label: "poor", Description: "incomprehensible"},
			{Score: 5, Label: "excellent", Description: "crystal clear"},
		},
	}

	prompt := userPrompt("the content body", rubric, "Topic: goroutines")

	for _, want := range []string{
		"Criterion: clarity",
		"How clear the explanation is",
		"1 (poor): incomprehensible",
		"5 (excellent): crystal clear",
		"Topic: goroutines",
		"the content body",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestUserPrompt_AssertionRubric(t *testing.T) {
	rubric := eval.Rubric{
		Criterion: "actionability",
		Assertion: "The review names concrete next steps",
	}

	prompt := userPrompt("body", rubric, "")

	if !strings.Contains(prompt, "The review names concrete next steps") {
		t.Errorf("prompt missing the assertion text:\n%s", prompt)
	}
	if strings.Contains(prompt, "Scoring scale") {
		t.Errorf("assertion rubric rendered a scale section:\n%s", prompt)
	}
}

func TestRubricMax(t *testing.T) {
	scaled := eval.Rubric{Scale: []eval.ScaleLevel{{Score: 1}, {Score: 5}, {Score: 3}}}
	if got := scaled.Max(); got != 5 {
		t.Errorf("Max = %v, want 5", got)
	}

	assertion := eval.Rubric{Assertion: "holds"}
	if got := assertion.Max(); got != 1 {
		t.Errorf("Max = %v, want 1 for assertion rubrics", got)
	}
}
