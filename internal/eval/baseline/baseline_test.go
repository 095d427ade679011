package baseline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/edcraft/evalgate/internal/eval"
)

func TestEntryFromResult_FlattensScores(t *testing.T) {
	evaluatedAt := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	res := &eval.Result{
		OverallScore: 0.875,
		Passed:       true,
		ContentType:  "lesson",
		EvaluatedAt:  evaluatedAt,
		Scores: []eval.Score{
			{Criterion: "format", Score: 1.0, RawScore: 1, MaxScore: 1, Passed: true, Reasoning: "balanced", Suggestions: []string{"n/a"}},
			{Criterion: "depth", Score: 0.75, RawScore: 3.75, MaxScore: 5, Passed: true, Reasoning: "decent"},
		},
	}

	entry := EntryFromResult("intro-to-go", res)

	want := Entry{
		Name:         "intro-to-go",
		ContentType:  "lesson",
		OverallScore: 0.875,
		Scores:       map[string]float64{"format": 1.0, "depth": 0.75},
		EvaluatedAt:  evaluatedAt,
	}
	if diff := cmp.Diff(want, entry); diff != "" {
		t.Errorf("EntryFromResult mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_SetsVersionAndMode(t *testing.T) {
	f := New([]Entry{{Name: "a"}}, ModeQuick)

	if f.Version != Version {
		t.Errorf("Version = %q, want %q", f.Version, Version)
	}
	if f.Mode != ModeQuick {
		t.Errorf("Mode = %q, want %q", f.Mode, ModeQuick)
	}
	if f.GeneratedAt.IsZero() {
		t.Error("GeneratedAt is zero, want a fresh timestamp")
	}
}

func TestFile_LookupLastWriteWins(t *testing.T) {
	f := &File{Entries: []Entry{
		{Name: "dup", OverallScore: 0.5},
		{Name: "other", OverallScore: 0.9},
		{Name: "dup", OverallScore: 0.75},
	}}

	entry, ok := f.Lookup("dup")
	if !ok {
		t.Fatal("Lookup(dup) = false, want true")
	}
	if entry.OverallScore != 0.75 {
		t.Errorf("Lookup returned score %v, want the last entry's 0.75", entry.OverallScore)
	}

	if _, ok := f.Lookup("absent"); ok {
		t.Error("Lookup(absent) = true, want false")
	}
}

func TestSaveAndLoad(t *testing.T) {
	f := New([]Entry{
		{
			Name:         "lesson-one",
			ContentType:  "lesson",
			OverallScore: 0.9,
			Scores:       map[string]float64{"format": 1, "depth": 0.8},
			EvaluatedAt:  time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		},
	}, ModeFull)

	path := filepath.Join(t.TempDir(), "nested", "baseline.json")
	if err := Save(path, f); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Version != f.Version || loaded.Mode != f.Mode {
		t.Errorf("loaded version/mode = %s/%s, want %s/%s", loaded.Version, loaded.Mode, f.Version, f.Mode)
	}
	if diff := cmp.Diff(f.Entries, loaded.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Load of a missing file succeeded, want error")
	}
}
