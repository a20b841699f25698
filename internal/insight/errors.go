package insight

import "errors"

// Sentinel errors for the extraction pipeline. Using sentinels allows
// callers to match with errors.Is for reliable error handling.
var (
	// ErrInvalidInterval is returned when the sampling interval is less than 1.
	ErrInvalidInterval = errors.New("sampling interval must be >= 1")

	// ErrNoInsights is returned when a runs root yields zero scored insights.
	ErrNoInsights = errors.New("no insights found")
)
