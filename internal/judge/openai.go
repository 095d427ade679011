// Package judge implements the LLM-as-a-judge collaborator on top of the
// OpenAI API. It owns the retry/backoff and rate-limit policy for judged
// scoring; the evaluation core propagates its failures untouched.
package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"golang.org/x/time/rate"

	"github.com/edcraft/evalgate/internal/eval"
)

const systemPrompt = `You are an expert evaluator assessing the quality of AI-generated learning content. You must be consistent and objective in your evaluations.

You will be given the content, a scoring rubric, and optional context about the learner. Score the content strictly against the rubric.

IMPORTANT: You must respond with ONLY a valid JSON object in this EXACT format (no extra text):
{
  "reasoning": "Brief step-by-step analysis against the rubric",
  "score": <number within the rubric's scale>,
  "suggestions": ["array", "of", "specific", "improvements"]
}`

// OpenAI scores content against rubrics using chat completions. It retries
// transient API failures with exponential backoff and bounds its request
// rate with a token-bucket limiter.
type OpenAI struct {
	client     openai.Client
	model      openai.ChatModel
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
}

// Option configures an OpenAI judge.
type Option func(*OpenAI)

// WithModel selects the chat model used for scoring.
func WithModel(model openai.ChatModel) Option {
	return func(j *OpenAI) { j.model = model }
}

// WithRateLimit bounds requests per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(j *OpenAI) { j.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithMaxRetries sets how many times a failed API call is retried.
func WithMaxRetries(n int) Option {
	return func(j *OpenAI) { j.maxRetries = n }
}

// NewOpenAI creates a judge using API credentials from the environment.
func NewOpenAI(opts ...Option) *OpenAI {
	j := &OpenAI{
		client:     openai.NewClient(),
		model:      openai.ChatModelGPT5,
		limiter:    rate.NewLimiter(rate.Limit(2), 2),
		maxRetries: 2,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Score evaluates the content against the rubric and returns the raw verdict.
func (j *OpenAI) Score(ctx context.Context, content string, rubric eval.Rubric, extra string) (eval.JudgeScore, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return eval.JudgeScore{}, fmt.Errorf("rate limiter wait: %w", err)
	}

	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userPrompt(content, rubric, extra)),
	}

	raw, err := j.complete(ctx, msgs)
	if err != nil {
		return eval.JudgeScore{}, err
	}

	verdict, err := parseVerdict(raw)
	if err != nil {
		return eval.JudgeScore{}, err
	}

	slog.DebugContext(ctx, "Judge verdict received",
		"criterion", rubric.Criterion,
		"score", verdict.Score)

	return verdict, nil
}

// complete calls the chat API, retrying transient failures with exponential
// backoff. Parse failures are not retried; they surface to the caller.
func (j *OpenAI) complete(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= j.maxRetries; attempt++ {
		if attempt > 0 {
			delay := j.baseDelay << (attempt - 1)
			slog.InfoContext(ctx, "Retrying judge request", "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := j.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    j.model,
			Messages: msgs,
		})
		if err != nil {
			lastErr = err
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = errors.New("no choices in judge response")
			continue
		}

		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("judge request failed after %d attempts: %w", j.maxRetries+1, lastErr)
}

func userPrompt(content string, rubric eval.Rubric, extra string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Criterion: %s\n", rubric.Criterion)
	if rubric.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rubric.Description)
	}

	if len(rubric.Scale) > 0 {
		b.WriteString("\nScoring scale:\n")
		for _, lvl := range rubric.Scale {
			fmt.Fprintf(&b, "- %g (%s): %s\n", lvl.Score, lvl.Label, lvl.Description)
		}
	} else if rubric.Assertion != "" {
		fmt.Fprintf(&b, "\nAssertion to verify (score 1 if it holds, 0 if it does not): %s\n", rubric.Assertion)
	}

	if extra != "" {
		fmt.Fprintf(&b, "\nContext:\n%s\n", extra)
	}

	fmt.Fprintf(&b, "\nContent to evaluate:\n---\n%s\n---\n\nProvide your evaluation in JSON format.", content)
	return b.String()
}

// parseVerdict extracts the JSON object from the judge's reply; models
// occasionally wrap the object in extra prose.
func parseVerdict(content string) (eval.JudgeScore, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return eval.JudgeScore{}, fmt.Errorf("no JSON object in judge response: %s", content)
	}

	var verdict eval.JudgeScore
	if err := json.Unmarshal([]byte(content[start:end+1]), &verdict); err != nil {
		return eval.JudgeScore{}, fmt.Errorf("failed to parse judge response: %w. Content: %s", err, content[start:end+1])
	}

	return verdict, nil
}
