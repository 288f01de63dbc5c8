// Package analysis implements the cognitive-state pipeline: band-power
// normalization, rule-based state classification, distribution and temporal
// aggregation, activity correlation, and baseline math. Everything here is
// pure computation over caller-supplied windows; no I/O.
package analysis

import (
	"fmt"
	"strings"
)

// InsufficientDataError reports an empty or too-short window for an operation.
// Aggregate callers treat it as a well-defined "no data" result, not a crash.
type InsufficientDataError struct {
	Op     string
	Needed int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data (need %d samples, got %d)", e.Op, e.Needed, e.Got)
}

// InvalidInputError reports a band value outside the range the operation
// accepts. Malformed input is rejected, never silently clamped.
type InvalidInputError struct {
	Band  string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s value %.4f: normalized bands must be in [0,1]", e.Band, e.Value)
}

// DataQualityError reports a sample missing required bands. The sample is
// excluded from classification with confidence 0; the batch continues.
type DataQualityError struct {
	MissingBands []string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("sample missing bands: %s", strings.Join(e.MissingBands, ", "))
}
