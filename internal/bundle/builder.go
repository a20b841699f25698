// Package bundle turns loaded insight records into the static-webpage
// payload: a score curve, an evenly sampled set of insights with copied
// images, and a single JSON document per dataset.
package bundle

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/shuyu-lab/insightviz/internal/insight"
)

const (
	// DataDir holds the emitted JSON bundles under the output base.
	DataDir = "data"

	// ImgDir holds the copied sample images under the output base.
	ImgDir = "img"
)

// Curve summarizes the full score distribution for the curve plot.
type Curve struct {
	Scores     []float64 `json:"scores"`
	TotalCount int       `json:"total_count"`
	AvgScore   float64   `json:"avg_score"`
	MinScore   float64   `json:"min_score"`
	MaxScore   float64   `json:"max_score"`
}

// SamplePoint is one interactive sample in the output bundle. Index is
// the sample's zero-based position in the score-sorted sequence.
type SamplePoint struct {
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Insight string  `json:"insight"`
	ImgURL  string  `json:"img_url"`
	RunName string  `json:"run_name"`
}

// Bundle is the JSON document consumed by the visualization page.
// Dataset and DisplayName are omitted when the bundle is built without
// a dataset key.
type Bundle struct {
	Dataset     string        `json:"dataset,omitempty"`
	DisplayName string        `json:"display_name,omitempty"`
	Curve       Curve         `json:"curve"`
	Samples     []SamplePoint `json:"samples"`
	Interval    int           `json:"interval"`
}

// Result reports what one dataset build produced.
type Result struct {
	Dataset    string  `json:"dataset"`
	Total      int     `json:"total"`
	Sampled    int     `json:"sampled"`
	AvgScore   float64 `json:"avg_score"`
	BundlePath string  `json:"bundle_path"`
}

// Builder writes dataset bundles under OutputBase:
// data/interactive_<key>.json plus img/interactive_<key>/sample_<i>.png.
type Builder struct {
	// OutputBase is the webpage root all artifacts are written under.
	OutputBase string

	logger *zap.Logger
}

// NewBuilder creates a builder rooted at outputBase. A nil logger
// disables logging.
func NewBuilder(outputBase string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{OutputBase: outputBase, logger: logger}
}

// Build sorts and samples the insights for one dataset, copies the
// sampled images into the webpage image directory, and writes the JSON
// bundle. Zero insights aborts the dataset with ErrNoInsights and
// writes nothing. A sample whose source image is missing is still
// emitted; only the copy is skipped with a warning.
func (b *Builder) Build(key, displayName string, interval int, insights []insight.Insight) (*Result, error) {
	if len(insights) == 0 {
		return nil, insight.ErrNoInsights
	}

	sampled, indices, err := insight.Sample(insights, interval)
	if err != nil {
		return nil, err
	}

	sorted := insight.SortByScore(insights)
	curve := buildCurve(sorted)

	imgSubdir := "interactive_" + key
	imgDir := filepath.Join(b.OutputBase, ImgDir, imgSubdir)
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}

	samples := make([]SamplePoint, 0, len(sampled))
	for i, ins := range sampled {
		name := fmt.Sprintf("sample_%d.png", i)
		if err := copyFile(ins.ImagePath, filepath.Join(imgDir, name)); err != nil {
			b.logger.Warn("sample image not copied",
				zap.String("src", ins.ImagePath),
				zap.Error(err))
		}
		samples = append(samples, SamplePoint{
			Index:   indices[i],
			Score:   round2(ins.Score),
			Insight: ins.Text,
			// URL path, always forward slashes.
			ImgURL:  ImgDir + "/" + imgSubdir + "/" + name,
			RunName: ins.RunName,
		})
	}

	out := &Bundle{
		Dataset:     key,
		DisplayName: displayName,
		Curve:       curve,
		Samples:     samples,
		Interval:    interval,
	}

	bundlePath := filepath.Join(b.OutputBase, DataDir, "interactive_"+key+".json")
	if err := writeJSON(bundlePath, out); err != nil {
		return nil, fmt.Errorf("write bundle: %w", err)
	}

	return &Result{
		Dataset:    key,
		Total:      curve.TotalCount,
		Sampled:    len(samples),
		AvgScore:   curve.AvgScore,
		BundlePath: bundlePath,
	}, nil
}

// buildCurve computes the curve statistics from the score-sorted
// insights.
func buildCurve(sorted []insight.Insight) Curve {
	scores := make([]float64, len(sorted))
	sum := 0.0
	for i, ins := range sorted {
		scores[i] = ins.Score
		sum += ins.Score
	}

	curve := Curve{
		Scores:     scores,
		TotalCount: len(scores),
	}
	if len(scores) > 0 {
		curve.AvgScore = sum / float64(len(scores))
		curve.MinScore = scores[0]
		curve.MaxScore = scores[len(scores)-1]
	}
	return curve
}

// round2 rounds to two decimal places for display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// copyFile copies src to dst, preserving nothing but the bytes.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close() //nolint:errcheck // read side, close best-effort
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close() //nolint:errcheck // cleanup in error path
		return err
	}

	return out.Close()
}

// writeJSON writes v as two-space indented JSON to a temp file and
// renames atomically so a failed run never leaves a partial bundle.
func writeJSON(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Create temp file in same directory for atomic rename
	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) //nolint:errcheck // cleanup in error path
		}
	}()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetEscapeHTML(false) // Don't escape < > & in insight text
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("encode json: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}
