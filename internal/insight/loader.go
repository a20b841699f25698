package insight

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	// RunDirPrefix identifies qualifying run directories under a runs root.
	RunDirPrefix = "run_"

	// ErrorMarkerFile marks a failed run; its presence skips the directory.
	ErrorMarkerFile = "error.json"

	// InsightsFile is the per-run validated insights JSON file.
	InsightsFile = "insights_validated.json"
)

// scoredEntry mirrors one element of the per-image insight lists in the
// insights file. A nil AvgScores means the insight was never scored and
// is excluded from the record set.
type scoredEntry struct {
	AvgScores *float64 `json:"avg_scores"`
	Insight   string   `json:"insight"`
}

// Loader collects insight records from a runs root directory.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load scans runsRoot in lexical name order and returns every scored
// insight found. Run directories that are marked failed, missing their
// insights file, or holding malformed JSON are skipped with a warning;
// the scan continues with the remaining directories.
func (l *Loader) Load(runsRoot string) ([]Insight, error) {
	entries, err := os.ReadDir(runsRoot)
	if err != nil {
		return nil, fmt.Errorf("read runs root %s: %w", runsRoot, err)
	}

	var all []Insight
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), RunDirPrefix) {
			continue
		}

		runDir := filepath.Join(runsRoot, entry.Name())
		if _, err := os.Stat(filepath.Join(runDir, ErrorMarkerFile)); err == nil {
			l.logger.Debug("skipping failed run", zap.String("run", entry.Name()))
			continue
		}

		records, err := l.loadRunDir(runDir, entry.Name())
		if err != nil {
			l.logger.Warn("skipping run directory",
				zap.String("run", entry.Name()),
				zap.Error(err))
			continue
		}
		all = append(all, records...)
	}

	return all, nil
}

// loadRunDir parses one run directory's insights file. A missing
// insights file is not an error: the run simply contributes nothing.
func (l *Loader) loadRunDir(runDir, runName string) ([]Insight, error) {
	data, err := os.ReadFile(filepath.Join(runDir, InsightsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read insights file: %w", err)
	}

	var byImage map[string][]scoredEntry
	if err := json.Unmarshal(data, &byImage); err != nil {
		return nil, fmt.Errorf("parse %s: %w", InsightsFile, err)
	}

	// Map iteration order is randomized; visit image keys sorted so
	// tie scores keep a deterministic encounter order.
	images := make([]string, 0, len(byImage))
	for img := range byImage {
		images = append(images, img)
	}
	sort.Strings(images)

	var records []Insight
	for _, img := range images {
		for _, entry := range byImage[img] {
			if entry.AvgScores == nil {
				continue
			}
			records = append(records, Insight{
				Score:        *entry.AvgScores,
				Text:         entry.Insight,
				ImagePath:    filepath.Join(runDir, "viz", "verified", filepath.Base(img)),
				RunName:      runName,
				OriginalPath: img,
			})
		}
	}

	return records, nil
}
