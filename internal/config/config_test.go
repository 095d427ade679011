package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/edcraft/evalgate/internal/eval"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
judge:
  model: gpt-5-mini
  requests_per_second: 0.5
  max_retries: 3
compare:
  tolerance: 0.05
criteria:
  - name: depth
    threshold: 0.7
    weight: 2
  - name: engagement
    skip: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Judge.Model != "gpt-5-mini" {
		t.Errorf("Judge.Model = %q, want gpt-5-mini", cfg.Judge.Model)
	}
	if cfg.Judge.RequestsPerSecond != 0.5 {
		t.Errorf("Judge.RequestsPerSecond = %v, want 0.5", cfg.Judge.RequestsPerSecond)
	}
	if cfg.Judge.MaxRetries == nil || *cfg.Judge.MaxRetries != 3 {
		t.Errorf("Judge.MaxRetries = %v, want 3", cfg.Judge.MaxRetries)
	}
	if cfg.Compare.Tolerance != 0.05 {
		t.Errorf("Compare.Tolerance = %v, want 0.05", cfg.Compare.Tolerance)
	}
	if len(cfg.Criteria) != 2 {
		t.Fatalf("got %d criterion overrides, want 2", len(cfg.Criteria))
	}
	if cfg.Criteria[0].Threshold == nil || *cfg.Criteria[0].Threshold != 0.7 {
		t.Errorf("depth threshold override = %v, want 0.7", cfg.Criteria[0].Threshold)
	}
	if !cfg.Criteria[1].Skip {
		t.Error("engagement override not marked skip")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "criteria: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("Load of malformed YAML succeeded, want error")
	}
}

func testCatalog(t *testing.T) *eval.Catalog {
	t.Helper()
	cat, err := eval.NewCatalog(
		eval.NewDeterministic(eval.DeterministicSpec{
			Name:      "halfway",
			Threshold: 1.0,
			Weight:    1.0,
			Assertions: []eval.Assertion{
				func(string) eval.Outcome {
					return eval.Outcome{Passed: false, Score: 0.5, Reasoning: "fixed half score"}
				},
			},
		}),
		eval.NewDeterministic(eval.DeterministicSpec{
			Name:   "other",
			Weight: 1.0,
		}),
	)
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	return cat
}

func TestApply_ThresholdOverrideRederivesPass(t *testing.T) {
	cfg := &Config{Criteria: []CriterionOverride{
		{Name: "halfway", Threshold: floatPtr(0.4)},
	}}

	cat, err := cfg.Apply(testCatalog(t))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	cr, ok := cat.Get("halfway")
	if !ok {
		t.Fatal("halfway missing after Apply")
	}
	if cr.Threshold != 0.4 {
		t.Errorf("Threshold = %v, want 0.4", cr.Threshold)
	}

	// At the original threshold of 1.0 the 0.5 score failed; with the
	// override it must pass.
	score, err := cr.Evaluate(context.Background(), eval.Input{Content: "x"}, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !score.Passed {
		t.Errorf("score 0.5 did not pass the overridden threshold 0.4: %+v", score)
	}
}

func TestApply_WeightAndOptionalOverrides(t *testing.T) {
	cfg := &Config{Criteria: []CriterionOverride{
		{Name: "halfway", Weight: floatPtr(3), Optional: boolPtr(true)},
	}}

	cat, err := cfg.Apply(testCatalog(t))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	cr, _ := cat.Get("halfway")
	if cr.Weight != 3 {
		t.Errorf("Weight = %v, want 3", cr.Weight)
	}
	if !cr.Optional {
		t.Error("Optional = false, want true")
	}
}

func TestApply_SkipRemovesCriterion(t *testing.T) {
	cfg := &Config{Criteria: []CriterionOverride{{Name: "halfway", Skip: true}}}

	cat, err := cfg.Apply(testCatalog(t))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if _, ok := cat.Get("halfway"); ok {
		t.Error("skipped criterion still present")
	}
	if _, ok := cat.Get("other"); !ok {
		t.Error("unrelated criterion removed")
	}
}

func TestApply_UnknownCriterionFails(t *testing.T) {
	cfg := &Config{Criteria: []CriterionOverride{{Name: "no-such-criterion"}}}

	if _, err := cfg.Apply(testCatalog(t)); err == nil {
		t.Error("Apply accepted an override for an unknown criterion")
	}
}

func floatPtr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }
