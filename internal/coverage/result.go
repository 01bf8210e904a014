// Package coverage turns the alignment engine's pass/fail behaviour into
// comparable metrics: per-combination analysis, viable-configuration
// discovery, and alternatives for failing filter specs.
package coverage

import "card-price-index/internal/filter"

// Result captures the coverage analysis of one filter combination. It is
// produced fresh per analysis call and never mutated afterwards; every
// field serializes losslessly to the preset store's JSON.
type Result struct {
	FilterSpec         filter.Spec `json:"filter_config"`
	CoveragePercentage float64     `json:"coverage_percentage"` // 0.0-1.0
	SignaturesFound    int         `json:"signatures_found"`
	SignaturesTotal    int         `json:"signatures_total"`
	OptimalStartDate   *string     `json:"optimal_start_date"` // YYYY-MM-DD, nil when none
	RecordsBeforeStart int         `json:"records_before_start"`
	RecordsAligned     int         `json:"records_aligned"`
	TimeSeriesPoints   int         `json:"time_series_points"`
	GapFillsRequired   int         `json:"gap_fills_required"`
	MissingSignatures  []string    `json:"missing_signatures"`
	FallbackRequired   bool        `json:"fallback_required"`
	QualityScore       float64     `json:"quality_score"` // 0.0-1.0
}

// emptyResult is the zero-coverage outcome for invalid or unmatchable
// filter combinations.
func emptyResult(spec filter.Spec) Result {
	return Result{
		FilterSpec:        spec,
		MissingSignatures: []string{},
	}
}

// Recommendation wraps an analyzed filter spec in a ranked suggestion.
// Rank is reassigned after sorting a batch and is not stable across calls.
type Recommendation struct {
	Rank             int         `json:"rank"`
	FilterSpec       filter.Spec `json:"filter_config"`
	Coverage         Result      `json:"coverage_result"`
	Description      string      `json:"description"`
	CommandString    string      `json:"command_string"`
	EstimatedRecords int         `json:"estimated_records"`
}

// Summary is the high-level dataset context used by the CLI.
type Summary struct {
	TotalRecords     int       `json:"total_records"`
	UniqueSignatures int       `json:"unique_signatures"`
	DateRange        [2]string `json:"date_range"`
	AvailableSets    []string  `json:"available_sets"`
	AvailableTypes   []string  `json:"available_types"`
}
