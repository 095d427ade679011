package eval

import (
	"context"
	"fmt"
)

// Method distinguishes how a criterion is evaluated.
type Method string

const (
	// Deterministic criteria are pure functions of the content.
	Deterministic Method = "deterministic"
	// Judged criteria delegate to an external judge against a rubric.
	Judged Method = "judged"
)

// WildcardContentType marks a criterion as applicable to every content type.
// An empty content-type list is treated the same way.
const WildcardContentType = "*"

// EvaluateFunc produces a Score for one input. Judged criteria receive the
// runner's judge; deterministic criteria are always called with a nil judge.
type EvaluateFunc func(ctx context.Context, input Input, judge Judge) (Score, error)

// Criterion is a single named, weighted, thresholded check. Criteria are
// immutable once registered in a catalog.
type Criterion struct {
	Name         string
	Description  string
	ContentTypes []string
	Method       Method
	Threshold    float64 // normalized pass threshold in [0,1]
	Weight       float64 // positive contribution to the weighted mean
	Optional     bool    // a failing optional criterion does not fail the result
	Evaluate     EvaluateFunc
}

// AppliesTo reports whether the criterion runs for the given content type.
// Matching is case-sensitive and exact.
func (c Criterion) AppliesTo(contentType string) bool {
	if len(c.ContentTypes) == 0 {
		return true
	}
	for _, ct := range c.ContentTypes {
		if ct == WildcardContentType || ct == contentType {
			return true
		}
	}
	return false
}

// Catalog is a fixed, registration-ordered collection of criteria. Names must
// be unique: aggregation keys its weight map by criterion name, so a duplicate
// would silently collide.
type Catalog struct {
	criteria []Criterion
	byName   map[string]int
}

// NewCatalog builds a catalog from the given criteria, preserving order.
func NewCatalog(criteria ...Criterion) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int, len(criteria))}
	for _, cr := range criteria {
		if err := c.Register(cr); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register appends a criterion to the catalog. It rejects unnamed or
// duplicate criteria, non-positive weights, and thresholds outside [0,1].
func (c *Catalog) Register(cr Criterion) error {
	if cr.Name == "" {
		return fmt.Errorf("criterion has no name")
	}
	if _, exists := c.byName[cr.Name]; exists {
		return fmt.Errorf("duplicate criterion %q", cr.Name)
	}
	if cr.Weight <= 0 {
		return fmt.Errorf("criterion %q has non-positive weight %v", cr.Name, cr.Weight)
	}
	if cr.Threshold < 0 || cr.Threshold > 1 {
		return fmt.Errorf("criterion %q has threshold %v outside [0,1]", cr.Name, cr.Threshold)
	}
	if cr.Evaluate == nil {
		return fmt.Errorf("criterion %q has no evaluate function", cr.Name)
	}
	c.byName[cr.Name] = len(c.criteria)
	c.criteria = append(c.criteria, cr)
	return nil
}

// Get retrieves a criterion by name.
func (c *Catalog) Get(name string) (Criterion, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Criterion{}, false
	}
	return c.criteria[i], true
}

// List returns all criteria in registration order.
func (c *Catalog) List() []Criterion {
	out := make([]Criterion, len(c.criteria))
	copy(out, c.criteria)
	return out
}

// Applicable returns the criteria that run for the given content type, in
// registration order. Aggregation tie-breaks depend on this ordering.
func (c *Catalog) Applicable(contentType string) []Criterion {
	var out []Criterion
	for _, cr := range c.criteria {
		if cr.AppliesTo(contentType) {
			out = append(out, cr)
		}
	}
	return out
}
