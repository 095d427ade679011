package eval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/edcraft/evalgate/internal/eval"

// Runner executes a fixed criterion catalog against inputs. The catalog and
// judge are set at construction and treated as read-only for the runner's
// lifetime, so one runner is safe to share across concurrent evaluations.
type Runner struct {
	catalog *Catalog
	judge   Judge // nil when no judge is configured
	metrics *runnerMetrics
}

// NewRunner creates a runner over the given catalog. The judge may be nil;
// EvaluateFull then fails for any input with applicable judged criteria.
func NewRunner(catalog *Catalog, judge Judge) *Runner {
	m, err := newRunnerMetrics()
	if err != nil {
		slog.Warn("Evaluation metrics disabled", "error", err)
		m = nil
	}
	return &Runner{catalog: catalog, judge: judge, metrics: m}
}

// EvaluateFull runs every applicable criterion: the deterministic subset
// first, then the judged subset, each dispatched in parallel with join-all
// semantics. It fails before running anything when a judged criterion is
// applicable but no judge was configured.
func (r *Runner) EvaluateFull(ctx context.Context, input Input) (*Result, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Runner.EvaluateFull",
		trace.WithAttributes(
			attribute.String("eval.content_type", input.ContentType),
		),
	)
	defer span.End()

	applicable := r.catalog.Applicable(input.ContentType)
	deterministic, judged := splitByMethod(applicable)
	span.SetAttributes(
		attribute.Int("eval.criteria.deterministic", len(deterministic)),
		attribute.Int("eval.criteria.judged", len(judged)),
	)

	if len(judged) > 0 && r.judge == nil {
		err := &JudgeRequiredError{Criterion: judged[0].Name}
		span.RecordError(err)
		span.SetStatus(codes.Error, "judge not configured")
		return nil, err
	}

	slog.InfoContext(ctx, "Starting full evaluation",
		"content_type", input.ContentType,
		"deterministic", len(deterministic),
		"judged", len(judged))

	scores, err := r.execute(ctx, deterministic, nil, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deterministic criterion failed")
		return nil, err
	}

	judgedScores, err := r.execute(ctx, judged, r.judge, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "judged criterion failed")
		return nil, err
	}
	scores = append(scores, judgedScores...)

	result := aggregate(applicable, scores, input.ContentType)
	r.metrics.record(ctx, result, "full")

	span.SetAttributes(
		attribute.Float64("eval.overall_score", result.OverallScore),
		attribute.Bool("eval.passed", result.Passed),
	)
	span.SetStatus(codes.Ok, "evaluation complete")
	return result, nil
}

// EvaluateQuick runs only the applicable deterministic criteria. It never
// invokes a judge, even when one is configured; judged criteria are excluded
// from both the scores and the weight base.
func (r *Runner) EvaluateQuick(ctx context.Context, input Input) (*Result, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Runner.EvaluateQuick",
		trace.WithAttributes(
			attribute.String("eval.content_type", input.ContentType),
		),
	)
	defer span.End()

	deterministic, _ := splitByMethod(r.catalog.Applicable(input.ContentType))
	span.SetAttributes(attribute.Int("eval.criteria.deterministic", len(deterministic)))

	slog.InfoContext(ctx, "Starting quick evaluation",
		"content_type", input.ContentType,
		"deterministic", len(deterministic))

	scores, err := r.execute(ctx, deterministic, nil, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deterministic criterion failed")
		return nil, err
	}

	result := aggregate(deterministic, scores, input.ContentType)
	r.metrics.record(ctx, result, "quick")

	span.SetAttributes(
		attribute.Float64("eval.overall_score", result.OverallScore),
		attribute.Bool("eval.passed", result.Passed),
	)
	span.SetStatus(codes.Ok, "evaluation complete")
	return result, nil
}

// execute fans the criteria out concurrently and joins on all of them. The
// returned scores match the order of the criteria. If any criterion fails,
// the whole call fails and in-flight results are discarded.
func (r *Runner) execute(ctx context.Context, criteria []Criterion, judge Judge, input Input) ([]Score, error) {
	if len(criteria) == 0 {
		return nil, nil
	}

	tracer := otel.Tracer(tracerName)
	scores := make([]Score, len(criteria))

	g, gctx := errgroup.WithContext(ctx)
	for i, cr := range criteria {
		i, cr := i, cr
		g.Go(func() error {
			cctx, span := tracer.Start(gctx, "Criterion.Evaluate",
				trace.WithAttributes(
					attribute.String("eval.criterion", cr.Name),
					attribute.String("eval.method", string(cr.Method)),
				),
			)
			defer span.End()

			score, err := cr.Evaluate(cctx, input, judge)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "criterion evaluation failed")
				return fmt.Errorf("criterion %q: %w", cr.Name, err)
			}

			span.SetAttributes(
				attribute.Float64("eval.score", score.Score),
				attribute.Bool("eval.passed", score.Passed),
			)
			scores[i] = score
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func splitByMethod(criteria []Criterion) (deterministic, judged []Criterion) {
	for _, cr := range criteria {
		if cr.Method == Judged {
			judged = append(judged, cr)
		} else {
			deterministic = append(deterministic, cr)
		}
	}
	return deterministic, judged
}

// aggregate folds the scores into a Result. Weights come from the criteria
// applicable to this call, not the full catalog: a criterion filtered out by
// content type must not contribute a weight.
func aggregate(applicable []Criterion, scores []Score, contentType string) *Result {
	weights := make(map[string]float64, len(applicable))
	optional := make(map[string]bool, len(applicable))
	for _, cr := range applicable {
		weights[cr.Name] = cr.Weight
		optional[cr.Name] = cr.Optional
	}

	var weightedSum, totalWeight float64
	passed := true
	for _, s := range scores {
		w, ok := weights[s.Criterion]
		if !ok {
			w = 1 // defensive default; should not occur for catalog-produced scores
		}
		weightedSum += s.Score * w
		totalWeight += w

		if !optional[s.Criterion] && !s.Passed {
			passed = false
		}
	}

	overall := 0.0
	if totalWeight > 0 {
		overall = weightedSum / totalWeight
	}

	return &Result{
		OverallScore: overall,
		Passed:       passed,
		Scores:       scores,
		Feedback:     buildFeedback(scores, weights),
		ContentType:  contentType,
		EvaluatedAt:  time.Now(),
	}
}

// buildFeedback derives the structured feedback block: failing criteria with
// their reasoning, strengths from high scores, and suggestions aggregated
// from failing or low scores ordered by descending criterion weight so the
// most heavily weighted problem areas surface first.
func buildFeedback(scores []Score, weights map[string]float64) Feedback {
	fb := Feedback{
		FailedCriteria: []FailedCriterion{},
		Strengths:      []string{},
		Suggestions:    []string{},
	}

	var needsWork []Score
	for _, s := range scores {
		if !s.Passed {
			suggestions := s.Suggestions
			if suggestions == nil {
				suggestions = []string{}
			}
			fb.FailedCriteria = append(fb.FailedCriteria, FailedCriterion{
				Criterion:   s.Criterion,
				Reasoning:   s.Reasoning,
				Suggestions: suggestions,
			})
		}
		if s.Score >= strengthThreshold {
			fb.Strengths = append(fb.Strengths, s.Reasoning)
		}
		if !s.Passed || s.Score < strengthThreshold {
			needsWork = append(needsWork, s)
		}
	}

	sort.SliceStable(needsWork, func(i, j int) bool {
		wi, ok := weights[needsWork[i].Criterion]
		if !ok {
			wi = 1
		}
		wj, ok := weights[needsWork[j].Criterion]
		if !ok {
			wj = 1
		}
		return wi > wj
	})

	for _, s := range needsWork {
		fb.Suggestions = append(fb.Suggestions, s.Suggestions...)
	}

	return fb
}
