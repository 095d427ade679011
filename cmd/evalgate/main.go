package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/edcraft/evalgate/internal/catalog"
	"github.com/edcraft/evalgate/internal/config"
	"github.com/edcraft/evalgate/internal/eval"
	"github.com/edcraft/evalgate/internal/eval/baseline"
	"github.com/edcraft/evalgate/internal/judge"
	"github.com/edcraft/evalgate/internal/render"
)

// RunReport is the JSON document written with -output: every result of one
// run keyed by item name, tagged with a run ID.
type RunReport struct {
	RunID       string                  `json:"run_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	Mode        string                  `json:"mode"`
	Results     map[string]*eval.Result `json:"results"`
}

func main() {
	var (
		contentPath  = flag.String("content", "", "Path to a single content file to evaluate")
		contentType  = flag.String("type", catalog.TypeLesson, "Content type: lesson, challenge, or review (ignored when inferable from directory layout)")
		topic        = flag.String("topic", "", "Topic the content covers (given to judged criteria as context)")
		difficulty   = flag.String("difficulty", "", "Difficulty level (given to judged criteria as context)")
		dirPath      = flag.String("dir", "", "Directory of content files to evaluate as a batch")
		quick        = flag.Bool("quick", false, "Run deterministic criteria only (fast, no API calls)")
		configPath   = flag.String("config", "", "Path to a YAML suite config with criterion overrides")
		format       = flag.String("format", "text", "Output format: text, json, or markdown")
		baselinePath = flag.String("baseline", "", "Path to a baseline file to record or compare against")
		record       = flag.Bool("record", false, "Record a new baseline instead of comparing")
		tolerance    = flag.Float64("tolerance", -1, "Score decrease tolerated before a change counts as a regression (overrides config)")
		outputPath   = flag.String("output", "", "Path to save the full run report as JSON")
		concurrency  = flag.Int("concurrency", 4, "Maximum concurrent evaluations in batch mode")
		enableOtel   = flag.Bool("otel", false, "Export OpenTelemetry traces and metrics to stdout")
		verbose      = flag.Bool("v", false, "Verbose logging")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Evaluate generated learning content against weighted criteria.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Evaluate one lesson with deterministic checks only:\n")
		fmt.Fprintf(os.Stderr, "  %s -content lesson.md -type lesson -quick\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Full evaluation including LLM-judged criteria:\n")
		fmt.Fprintf(os.Stderr, "  %s -content lesson.md -type lesson\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Record a baseline for a content directory:\n")
		fmt.Fprintf(os.Stderr, "  %s -dir content/ -record -baseline baseline.json\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Compare a run against the recorded baseline in CI:\n")
		fmt.Fprintf(os.Stderr, "  %s -dir content/ -baseline baseline.json -tolerance 0.05\n\n", os.Args[0])
	}

	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx := context.Background()

	if *enableOtel {
		shutdown, err := initTelemetry(ctx)
		if err != nil {
			slog.Error("Failed to initialize telemetry", "error", err)
			os.Exit(1)
		}
		defer shutdown()
	}

	if *contentPath == "" && *dirPath == "" {
		slog.Error("Either -content or -dir is required")
		flag.Usage()
		os.Exit(1)
	}
	if *contentPath != "" && *dirPath != "" {
		slog.Error("Cannot use both -content and -dir")
		flag.Usage()
		os.Exit(1)
	}
	if *record && *baselinePath == "" {
		slog.Error("-record requires -baseline")
		flag.Usage()
		os.Exit(1)
	}

	cat, err := catalog.Default()
	if err != nil {
		slog.Error("Failed to build criterion catalog", "error", err)
		os.Exit(1)
	}

	var cfg *config.Config
	if *configPath != "" {
		slog.Info("Loading suite config", "path", *configPath)
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		cat, err = cfg.Apply(cat)
		if err != nil {
			slog.Error("Failed to apply config overrides", "error", err)
			os.Exit(1)
		}
	}

	compareTolerance := 0.0
	if cfg != nil {
		compareTolerance = cfg.Compare.Tolerance
	}
	if *tolerance >= 0 {
		compareTolerance = *tolerance
	}

	var j eval.Judge
	if !*quick {
		j = newJudge(cfg)
	}

	runner := eval.NewRunner(cat, j)

	items, err := collectItems(*contentPath, *dirPath, *contentType, *topic, *difficulty)
	if err != nil {
		slog.Error("Failed to collect content", "error", err)
		os.Exit(1)
	}
	slog.Info("Collected content items", "count", len(items))

	results, err := evaluateAll(ctx, runner, items, *quick, *concurrency)
	if err != nil {
		slog.Error("Evaluation failed", "error", err)
		os.Exit(1)
	}

	mode := "full"
	if *quick {
		mode = "quick"
	}

	if *outputPath != "" {
		report := RunReport{
			RunID:       uuid.NewString(),
			GeneratedAt: time.Now(),
			Mode:        mode,
			Results:     results,
		}
		if err := saveReport(*outputPath, report); err != nil {
			slog.Error("Failed to save report", "error", err)
			os.Exit(1)
		}
		slog.Info("Report saved", "path", *outputPath, "run_id", report.RunID)
	}

	switch {
	case *record:
		if err := recordBaseline(*baselinePath, results, mode); err != nil {
			slog.Error("Failed to record baseline", "error", err)
			os.Exit(1)
		}
		slog.Info("Baseline recorded", "path", *baselinePath, "entries", len(results))

	case *baselinePath != "":
		base, err := baseline.Load(*baselinePath)
		if err != nil {
			slog.Error("Failed to load baseline", "error", err)
			os.Exit(1)
		}
		cmp := baseline.Compare(results, base, compareTolerance)
		renderComparison(*format, cmp)
		if !cmp.Passed {
			os.Exit(1)
		}

	default:
		failed := renderResults(*format, results)
		if failed {
			os.Exit(1)
		}
	}
}

// item is one named piece of content queued for evaluation.
type item struct {
	name  string
	input eval.Input
}

func collectItems(contentPath, dirPath, contentType, topic, difficulty string) ([]item, error) {
	if contentPath != "" {
		data, err := os.ReadFile(contentPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read content file: %w", err)
		}
		name := strings.TrimSuffix(filepath.Base(contentPath), filepath.Ext(contentPath))
		return []item{{
			name: name,
			input: eval.Input{
				Content:     string(data),
				ContentType: contentType,
				Topic:       topic,
				Difficulty:  difficulty,
			},
		}}, nil
	}

	var items []item
	err := filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".md", ".markdown", ".txt":
		default:
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		rel, err := filepath.Rel(dirPath, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))

		items = append(items, item{
			name: name,
			input: eval.Input{
				Content:     string(data),
				ContentType: inferContentType(rel, contentType),
				Topic:       topic,
				Difficulty:  difficulty,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no content files found under %s", dirPath)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].name < items[j].name })
	return items, nil
}

// inferContentType maps a top-level directory named after a content type to
// that type, so a tree like content/lessons/... needs no per-file flags.
func inferContentType(rel, fallback string) string {
	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	switch strings.TrimSuffix(first, "s") {
	case catalog.TypeLesson:
		return catalog.TypeLesson
	case catalog.TypeChallenge:
		return catalog.TypeChallenge
	case catalog.TypeReview:
		return catalog.TypeReview
	}
	return fallback
}

// evaluateAll runs the items with bounded concurrency. The bound keeps the
// number of in-flight judged calls within API rate limits; the runner itself
// imposes no such policy.
func evaluateAll(ctx context.Context, runner *eval.Runner, items []item, quick bool, concurrency int) (map[string]*eval.Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make(map[string]*eval.Result, len(items))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, it := range items {
		it := it
		g.Go(func() error {
			slog.InfoContext(gctx, "Evaluating", "name", it.name, "content_type", it.input.ContentType)

			var (
				res *eval.Result
				err error
			)
			if quick {
				res, err = runner.EvaluateQuick(gctx, it.input)
			} else {
				res, err = runner.EvaluateFull(gctx, it.input)
			}
			if err != nil {
				return fmt.Errorf("evaluating %s: %w", it.name, err)
			}

			mu.Lock()
			results[it.name] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func newJudge(cfg *config.Config) eval.Judge {
	var opts []judge.Option
	if cfg != nil {
		if cfg.Judge.Model != "" {
			opts = append(opts, judge.WithModel(openai.ChatModel(cfg.Judge.Model)))
		}
		if cfg.Judge.RequestsPerSecond > 0 {
			opts = append(opts, judge.WithRateLimit(cfg.Judge.RequestsPerSecond, 1))
		}
		if cfg.Judge.MaxRetries != nil {
			opts = append(opts, judge.WithMaxRetries(*cfg.Judge.MaxRetries))
		}
	}
	return judge.NewOpenAI(opts...)
}

func recordBaseline(path string, results map[string]*eval.Result, mode string) error {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]baseline.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, baseline.EntryFromResult(name, results[name]))
	}

	return baseline.Save(path, baseline.New(entries, baseline.Mode(mode)))
}

func renderResults(format string, results map[string]*eval.Result) (failed bool) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !results[name].Passed {
			failed = true
		}
	}

	switch format {
	case "json":
		if err := render.JSON(os.Stdout, results); err != nil {
			slog.Error("Failed to encode results", "error", err)
		}
	case "markdown":
		for _, name := range names {
			render.Markdown(os.Stdout, name, results[name])
		}
	default:
		for _, name := range names {
			render.Text(os.Stdout, name, results[name])
		}
	}
	return failed
}

func renderComparison(format string, cmp *baseline.Comparison) {
	switch format {
	case "json":
		if err := render.JSON(os.Stdout, cmp); err != nil {
			slog.Error("Failed to encode comparison", "error", err)
		}
	case "markdown":
		render.ComparisonMarkdown(os.Stdout, cmp)
	default:
		render.ComparisonText(os.Stdout, cmp)
	}
}

func saveReport(path string, report RunReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return render.JSON(f, report)
}

// initTelemetry wires stdout exporters for traces and metrics. The returned
// function flushes and shuts both providers down.
func initTelemetry(ctx context.Context) (func(), error) {
	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(10*time.Second))),
	)
	otel.SetMeterProvider(meterProvider)

	traceExporter, err := stdouttrace.New()
	if err != nil {
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
	)
	otel.SetTracerProvider(tracerProvider)

	return func() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error("Failed to shutdown tracer provider", "error", err)
		}
		if err := meterProvider.Shutdown(ctx); err != nil {
			slog.Error("Failed to shutdown meter provider", "error", err)
		}
	}, nil
}
