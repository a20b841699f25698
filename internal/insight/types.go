// Package insight defines the scored insight record extracted from
// experiment run outputs, the loader that collects records from run
// directories, and the sampler that selects evenly spaced records from
// the score-sorted sequence.
package insight

import "sort"

// Insight is one scored natural-language observation tied to a source
// image. Records are immutable once loaded.
type Insight struct {
	// Score is the averaged validation score for this insight.
	Score float64 `json:"score"`

	// Text is the natural-language observation.
	Text string `json:"insight"`

	// ImagePath is the resolved path to the verified visualization image.
	ImagePath string `json:"img_path"`

	// RunName is the run directory this insight came from.
	RunName string `json:"run_name"`

	// OriginalPath is the image path as recorded in the insights file.
	OriginalPath string `json:"original_path"`
}

// SortByScore returns a copy of insights ordered by ascending score.
// The sort is stable: equal scores keep their encounter order.
func SortByScore(insights []Insight) []Insight {
	sorted := make([]Insight, len(insights))
	copy(sorted, insights)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score < sorted[j].Score
	})
	return sorted
}
