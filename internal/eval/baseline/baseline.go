// Package baseline records numeric snapshots of evaluation results and
// compares later runs against them to catch quality regressions.
package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edcraft/evalgate/internal/eval"
)

// Version is the fixed format tag written into every baseline file.
const Version = "1"

// Mode records how the baseline's results were produced.
type Mode string

const (
	ModeFull  Mode = "full"
	ModeQuick Mode = "quick"
)

// Entry is a durable snapshot of one named item's result. Scores are
// flattened to criterion-name -> normalized score; reasoning and suggestions
// are dropped by design, baselines are for numeric comparison only.
type Entry struct {
	Name         string             `json:"name"`
	ContentType  string             `json:"content_type"`
	OverallScore float64            `json:"overall_score"`
	Scores       map[string]float64 `json:"scores"`
	EvaluatedAt  time.Time          `json:"evaluated_at"`
}

// File is the persisted baseline document. It is read at comparison time and
// rewritten wholesale when a new baseline is recorded.
type File struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Mode        Mode      `json:"mode"`
	Entries     []Entry   `json:"entries"`
}

// EntryFromResult flattens a result into a baseline entry.
func EntryFromResult(name string, res *eval.Result) Entry {
	scores := make(map[string]float64, len(res.Scores))
	for _, s := range res.Scores {
		scores[s.Criterion] = s.Score
	}
	return Entry{
		Name:         name,
		ContentType:  res.ContentType,
		OverallScore: res.OverallScore,
		Scores:       scores,
		EvaluatedAt:  res.EvaluatedAt,
	}
}

// New wraps entries into a baseline file with a fresh generation timestamp.
func New(entries []Entry, mode Mode) *File {
	return &File{
		Version:     Version,
		GeneratedAt: time.Now(),
		Mode:        mode,
		Entries:     entries,
	}
}

// Lookup finds an entry by exact name. Names should be unique within a file;
// when they are not, the last entry wins.
func (f *File) Lookup(name string) (Entry, bool) {
	var (
		found Entry
		ok    bool
	)
	for _, e := range f.Entries {
		if e.Name == name {
			found, ok = e, true
		}
	}
	return found, ok
}

// Load reads a baseline file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse baseline JSON: %w", err)
	}

	return &f, nil
}

// Save writes a baseline file to disk, creating parent directories as needed.
func Save(path string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}

	return nil
}
