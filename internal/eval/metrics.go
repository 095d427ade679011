package eval

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/edcraft/evalgate/internal/eval"

// runnerMetrics holds the OpenTelemetry instruments recorded per evaluation.
type runnerMetrics struct {
	evaluations  metric.Int64Counter
	overallScore metric.Float64Histogram
	failures     metric.Int64Counter
}

func newRunnerMetrics() (*runnerMetrics, error) {
	meter := otel.Meter(meterName)

	evaluations, err := meter.Int64Counter(
		"eval.runs",
		metric.WithDescription("Total number of evaluation runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	overallScore, err := meter.Float64Histogram(
		"eval.overall_score",
		metric.WithDescription("Distribution of overall weighted scores"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"eval.criterion_failures",
		metric.WithDescription("Total number of failed criterion scores"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	return &runnerMetrics{
		evaluations:  evaluations,
		overallScore: overallScore,
		failures:     failures,
	}, nil
}

func (m *runnerMetrics) record(ctx context.Context, res *Result, mode string) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("eval.content_type", res.ContentType),
		attribute.String("eval.mode", mode),
		attribute.Bool("eval.passed", res.Passed),
	}

	m.evaluations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.overallScore.Record(ctx, res.OverallScore, metric.WithAttributes(attrs...))

	for _, s := range res.Scores {
		if !s.Passed {
			m.failures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("eval.content_type", res.ContentType),
				attribute.String("eval.criterion", s.Criterion),
			))
		}
	}
}
