package rules

import (
	"math"
	"regexp"
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	content := "intro\n```go\nfmt.Println(\"TODO: inside code\")\n```\noutro"
	got := StripCodeFences(content)

	if strings.Contains(got, "TODO") {
		t.Errorf("StripCodeFences left code content behind: %q", got)
	}
	if !strings.Contains(got, "intro") || !strings.Contains(got, "outro") {
		t.Errorf("StripCodeFences removed prose: %q", got)
	}

	unterminated := "text\n```go\nno closing fence"
	if got := StripCodeFences(unterminated); got != unterminated {
		t.Errorf("StripCodeFences altered an unterminated fence: %q", got)
	}
}

func TestContainsAll_ScoresMatchRate(t *testing.T) {
	assert := ContainsAll("goroutine", "channel")

	tests := []struct {
		name      string
		content   string
		wantScore float64
		wantPass  bool
	}{
		{name: "all present", content: "Goroutines and CHANNELS explained", wantScore: 1, wantPass: true},
		{name: "half present", content: "all about goroutines", wantScore: 0.5, wantPass: false},
		{name: "none present", content: "unrelated text", wantScore: 0, wantPass: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := assert(tt.content)
			if math.Abs(out.Score-tt.wantScore) > 1e-9 {
				t.Errorf("Score = %v, want %v", out.Score, tt.wantScore)
			}
			if out.Passed != tt.wantPass {
				t.Errorf("Passed = %v, want %v (%s)", out.Passed, tt.wantPass, out.Reasoning)
			}
		})
	}
}

func TestNotContains(t *testing.T) {
	assert := NotContains("TODO:", "lorem ipsum")

	if out := assert("clean content"); !out.Passed || out.Score != 1 {
		t.Errorf("clean content failed: %+v", out)
	}
	if out := assert("draft with todo: finish this"); out.Passed || out.Score != 0 {
		t.Errorf("forbidden pattern not caught: %+v", out)
	}
}

func TestMatchesPattern(t *testing.T) {
	assert := MatchesPattern("a numbered step", regexp.MustCompile(`(?m)^\d+\.`))

	if out := assert("1. first step"); !out.Passed {
		t.Errorf("expected match, got: %+v", out)
	}
	if out := assert("no steps here"); out.Passed {
		t.Errorf("expected no match, got: %+v", out)
	}
}

func TestRuneLengthBetween(t *testing.T) {
	assert := RuneLengthBetween(5, 10)

	if out := assert("hi"); out.Passed {
		t.Errorf("too-short content passed: %+v", out)
	}
	if out := assert("just right"); !out.Passed {
		t.Errorf("in-bounds content failed: %+v", out)
	}
	if out := assert("definitely too long"); out.Passed {
		t.Errorf("too-long content passed: %+v", out)
	}

	// Rune count, not byte count.
	if out := assert("héllo"); !out.Passed {
		t.Errorf("5-rune content failed: %+v", out)
	}

	// Zero max disables the upper bound.
	unbounded := RuneLengthBetween(5, 0)
	if out := unbounded(strings.Repeat("x", 1000)); !out.Passed {
		t.Errorf("unbounded max rejected long content: %+v", out)
	}
}

func TestWordCountBetween(t *testing.T) {
	assert := WordCountBetween(2, 4)

	if out := assert("one"); out.Passed {
		t.Errorf("one word passed a two-word minimum: %+v", out)
	}
	if out := assert("two words here"); !out.Passed {
		t.Errorf("in-bounds word count failed: %+v", out)
	}
	if out := assert("this one has too many words"); out.Passed {
		t.Errorf("six words passed a four-word maximum: %+v", out)
	}
}

func TestNotBlank(t *testing.T) {
	assert := NotBlank()

	if out := assert("   \n\t  "); out.Passed {
		t.Errorf("whitespace-only content passed: %+v", out)
	}
	if out := assert("content"); !out.Passed {
		t.Errorf("non-blank content failed: %+v", out)
	}
}

func TestHeadingCountAtLeast_PartialScore(t *testing.T) {
	assert := HeadingCountAtLeast(2)

	tests := []struct {
		name      string
		content   string
		wantScore float64
		wantPass  bool
	}{
		{name: "no headings", content: "plain text", wantScore: 0, wantPass: false},
		{name: "one of two", content: "# Only Heading\nbody", wantScore: 0.5, wantPass: false},
		{name: "enough", content: "# One\ntext\n## Two\nmore", wantScore: 1, wantPass: true},
		{name: "hash without space is not a heading", content: "#hashtag\n#another", wantScore: 0, wantPass: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := assert(tt.content)
			if math.Abs(out.Score-tt.wantScore) > 1e-9 {
				t.Errorf("Score = %v, want %v (%s)", out.Score, tt.wantScore, out.Reasoning)
			}
			if out.Passed != tt.wantPass {
				t.Errorf("Passed = %v, want %v", out.Passed, tt.wantPass)
			}
		})
	}
}

func TestHasCodeBlock(t *testing.T) {
	if out := HasCodeBlock()("```go\nfmt.Println()\n```"); !out.Passed {
		t.Errorf("fenced block not detected: %+v", out)
	}
	if out := HasCodeBlock()("no code here"); out.Passed {
		t.Errorf("missing block passed: %+v", out)
	}
	if out := HasCodeBlock()("```go\nunclosed"); out.Passed {
		t.Errorf("single fence counted as a block: %+v", out)
	}
}

func TestBalancedMarkers(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantPass bool
	}{
		{name: "clean content", content: "# Title\nSome **bold** and `code`.\n```go\nx := 1\n```", wantPass: true},
		{name: "unclosed fence", content: "```go\nx := 1", wantPass: false},
		{name: "unclosed bold", content: "some **bold text", wantPass: false},
		{name: "unclosed inline code", content: "a `dangling marker", wantPass: false},
		{name: "backticks inside fences ignored", content: "```\na ` inside ` a ` fence\n```", wantPass: true},
	}

	assert := BalancedMarkers()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := assert(tt.content)
			if out.Passed != tt.wantPass {
				t.Errorf("Passed = %v, want %v (%s)", out.Passed, tt.wantPass, out.Reasoning)
			}
		})
	}
}
