package insight

import (
	"os"
	"path/filepath"
	"testing"
)

// writeRun creates a run directory with the given insights file content.
// Empty content means no insights file at all.
func writeRun(t *testing.T, root, name, insightsJSON string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if insightsJSON != "" {
		if err := os.WriteFile(filepath.Join(dir, InsightsFile), []byte(insightsJSON), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoad_CollectsScoredInsights(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "run_001", `{
		"plots/scatter.png": [
			{"avg_scores": 0.8, "insight": "strong correlation"},
			{"avg_scores": null, "insight": "unscored"}
		],
		"plots/bar.png": [
			{"avg_scores": 0.4, "insight": "uneven distribution"}
		]
	}`)

	loader := NewLoader(nil)
	insights, err := loader.Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(insights) != 2 {
		t.Fatalf("expected 2 insights (null score excluded), got %d", len(insights))
	}

	// Image keys are visited in sorted order: bar.png before scatter.png.
	first := insights[0]
	if first.Score != 0.4 {
		t.Errorf("Score = %v, want 0.4", first.Score)
	}
	if first.Text != "uneven distribution" {
		t.Errorf("Text = %q", first.Text)
	}
	if first.RunName != "run_001" {
		t.Errorf("RunName = %q, want run_001", first.RunName)
	}
	wantImg := filepath.Join(root, "run_001", "viz", "verified", "bar.png")
	if first.ImagePath != wantImg {
		t.Errorf("ImagePath = %q, want %q", first.ImagePath, wantImg)
	}
	if first.OriginalPath != "plots/bar.png" {
		t.Errorf("OriginalPath = %q, want plots/bar.png", first.OriginalPath)
	}
}

func TestLoad_SkipsNonQualifyingEntries(t *testing.T) {
	root := t.TempDir()
	valid := `{"a.png": [{"avg_scores": 1.0, "insight": "kept"}]}`

	writeRun(t, root, "run_ok", valid)

	// Wrong prefix: ignored even with a valid insights file.
	writeRun(t, root, "baseline_01", valid)

	// Error marker: run is skipped entirely.
	failedDir := writeRun(t, root, "run_failed", valid)
	if err := os.WriteFile(filepath.Join(failedDir, ErrorMarkerFile), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	// No insights file: contributes nothing.
	writeRun(t, root, "run_empty", "")

	// Plain file with a qualifying name: not a directory, ignored.
	if err := os.WriteFile(filepath.Join(root, "run_notadir"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(nil)
	insights, err := loader.Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if insights[0].RunName != "run_ok" {
		t.Errorf("RunName = %q, want run_ok", insights[0].RunName)
	}
}

func TestLoad_MalformedJSONContinues(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "run_bad", `{not json`)
	writeRun(t, root, "run_good", `{"a.png": [{"avg_scores": 0.9, "insight": "survives"}]}`)

	loader := NewLoader(nil)
	insights, err := loader.Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v, want malformed run skipped", err)
	}
	if len(insights) != 1 || insights[0].Text != "survives" {
		t.Errorf("insights = %v, want only the record from run_good", insights)
	}
}

func TestLoad_MissingRoot(t *testing.T) {
	loader := NewLoader(nil)
	if _, err := loader.Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing runs root")
	}
}

func TestLoad_RunsVisitedInNameOrder(t *testing.T) {
	root := t.TempDir()
	// Identical tie scores across runs: encounter order must follow
	// lexical run name order so the stable sort is deterministic.
	writeRun(t, root, "run_b", `{"a.png": [{"avg_scores": 0.5, "insight": "from-b"}]}`)
	writeRun(t, root, "run_a", `{"a.png": [{"avg_scores": 0.5, "insight": "from-a"}]}`)

	loader := NewLoader(nil)
	insights, err := loader.Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(insights))
	}
	if insights[0].Text != "from-a" || insights[1].Text != "from-b" {
		t.Errorf("order = [%q %q], want [from-a from-b]", insights[0].Text, insights[1].Text)
	}
}
