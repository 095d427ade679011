// Package config loads optional YAML suite configuration: per-criterion
// overrides, judge settings, and comparison tolerance.
package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edcraft/evalgate/internal/eval"
)

// JudgeConfig tunes the LLM judge client.
type JudgeConfig struct {
	Model             string  `yaml:"model"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	MaxRetries        *int    `yaml:"max_retries"`
}

// CompareConfig tunes baseline comparison.
type CompareConfig struct {
	Tolerance float64 `yaml:"tolerance"`
}

// CriterionOverride adjusts one catalog criterion by name. Nil fields keep
// the catalog's value; Skip removes the criterion entirely.
type CriterionOverride struct {
	Name      string   `yaml:"name"`
	Threshold *float64 `yaml:"threshold"`
	Weight    *float64 `yaml:"weight"`
	Optional  *bool    `yaml:"optional"`
	Skip      bool     `yaml:"skip"`
}

// Config is the root of a suite configuration file.
type Config struct {
	Judge    JudgeConfig         `yaml:"judge"`
	Compare  CompareConfig       `yaml:"compare"`
	Criteria []CriterionOverride `yaml:"criteria"`
}

// Load reads and parses a suite configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &cfg, nil
}

// Apply rebuilds the catalog with the config's criterion overrides applied.
// Overriding a criterion the catalog does not contain is an error, since it
// usually means a typo in the suite file.
func (c *Config) Apply(cat *eval.Catalog) (*eval.Catalog, error) {
	overrides := make(map[string]CriterionOverride, len(c.Criteria))
	for _, o := range c.Criteria {
		if _, ok := cat.Get(o.Name); !ok {
			return nil, fmt.Errorf("config overrides unknown criterion %q", o.Name)
		}
		overrides[o.Name] = o
	}

	var criteria []eval.Criterion
	for _, cr := range cat.List() {
		o, ok := overrides[cr.Name]
		if !ok {
			criteria = append(criteria, cr)
			continue
		}
		if o.Skip {
			continue
		}
		if o.Threshold != nil {
			cr = withThreshold(cr, *o.Threshold)
		}
		if o.Weight != nil {
			cr.Weight = *o.Weight
		}
		if o.Optional != nil {
			cr.Optional = *o.Optional
		}
		criteria = append(criteria, cr)
	}

	return eval.NewCatalog(criteria...)
}

// withThreshold replaces a criterion's pass threshold. The original evaluate
// function captured its threshold at construction, so the pass decision is
// re-derived here from the normalized score.
func withThreshold(cr eval.Criterion, threshold float64) eval.Criterion {
	inner := cr.Evaluate
	cr.Threshold = threshold
	cr.Evaluate = func(ctx context.Context, input eval.Input, judge eval.Judge) (eval.Score, error) {
		score, err := inner(ctx, input, judge)
		if err != nil {
			return score, err
		}
		score.Passed = score.Score >= threshold
		return score, nil
	}
	return cr
}
