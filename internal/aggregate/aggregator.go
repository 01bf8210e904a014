// Package aggregate bridges filtered observation records to a single
// cross-signature time series: it applies filter specs, drives the
// alignment engine, and reduces aligned datasets to per-date sums.
package aggregate

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"card-price-index/internal/align"
	"card-price-index/internal/filter"
	"card-price-index/internal/model"
)

// TimeSeriesPoint is one date of the reduced index series.
type TimeSeriesPoint struct {
	Name           string
	PeriodEnd      time.Time
	AggregatePrice decimal.Decimal // sum of price across signatures
	AggregateValue decimal.Decimal // sum of price × volume across signatures
}

// Aggregator applies filters and reduces aligned datasets.
type Aggregator struct {
	aligner *align.Aligner
	logger  zerolog.Logger
}

// New constructs an Aggregator with its own alignment engine.
func New(logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		aligner: align.New(logger),
		logger:  logger.With().Str("component", "aggregator").Logger(),
	}
}

// Aligner exposes the engine for callers that need step-level access.
func (g *Aggregator) Aligner() *align.Aligner {
	return g.aligner
}

// ApplyFilters keeps the records matching the expanded set and type
// patterns and the period label. An invalid period falls back to the
// default with a warning; empty expansions are logged and yield an empty
// result rather than an error.
func (g *Aggregator) ApplyFilters(records []model.Record, spec filter.Spec) []model.Record {
	norm, adjustments := filter.Normalize(spec)
	for _, adj := range adjustments {
		g.logger.Warn().Str("adjustment", adj).Msg("filter normalized")
	}

	if len(norm.SetIn) == 0 {
		g.logger.Error().Str("pattern", spec.Sets).Msg("no valid sets match pattern")
	}
	if len(norm.TypeIn) == 0 {
		g.logger.Error().Str("pattern", spec.Types).Msg("no valid types match pattern")
	}

	filtered := make([]model.Record, 0, len(records))
	for _, r := range records {
		if _, ok := norm.SetIn[r.GroupSet]; !ok {
			continue
		}
		if _, ok := norm.TypeIn[r.ProductType]; !ok {
			continue
		}
		if r.PeriodLabel != norm.Period {
			continue
		}
		filtered = append(filtered, r)
	}

	g.logger.Info().
		Int("before", len(records)).
		Int("after", len(filtered)).
		Strs("sets", filter.Sorted(norm.SetIn)).
		Strs("types", filter.Sorted(norm.TypeIn)).
		Msg("filters applied")
	return filtered
}

// CreateSubset filters records and aligns the result. The returned dataset
// is rectangular, or empty when no viable alignment exists.
func (g *Aggregator) CreateSubset(records []model.Record, spec filter.Spec, allowFallback bool) []model.Record {
	filtered := g.ApplyFilters(records, spec)
	if len(filtered) == 0 {
		return nil
	}
	return g.aligner.Align(filtered, allowFallback).Records
}

// CreateCompleteSubset filters records and keeps only the dates on which
// every signature has a real observation. Nothing is synthesized; this is
// the ground-truth counterpart to CreateSubset's gap filling.
func (g *Aggregator) CreateCompleteSubset(records []model.Record, spec filter.Spec) []model.Record {
	filtered := g.ApplyFilters(records, spec)
	if len(filtered) == 0 {
		return nil
	}

	total := len(model.Signatures(filtered))
	onDate := make(map[time.Time]map[model.Signature]struct{})
	for _, r := range filtered {
		sigs := onDate[r.PeriodEnd]
		if sigs == nil {
			sigs = make(map[model.Signature]struct{})
			onDate[r.PeriodEnd] = sigs
		}
		sigs[r.Signature()] = struct{}{}
	}

	complete := make([]model.Record, 0, len(filtered))
	for _, r := range filtered {
		if len(onDate[r.PeriodEnd]) == total {
			complete = append(complete, r)
		}
	}
	if len(complete) == 0 {
		g.logger.Warn().Msg("no dates found with complete signature coverage")
		return nil
	}

	model.SortCanonical(complete)
	g.logger.Info().
		Int("records", len(complete)).
		Msg("complete subset created")
	return complete
}

// AggregateTimeSeries reduces an aligned dataset to one point per period
// end date: the sum of price and the sum of price × volume across all
// signatures. Summing (rather than averaging) keeps the series tracking
// total market size, which scales proportionally as aligned signatures are
// added. The optional name is attached identically to every point. Empty
// input yields an empty, non-nil series.
func (g *Aggregator) AggregateTimeSeries(aligned []model.Record, name string) []TimeSeriesPoint {
	points := make([]TimeSeriesPoint, 0, len(aligned))
	if len(aligned) == 0 {
		return points
	}

	byDate := make(map[time.Time]*TimeSeriesPoint)
	for _, r := range aligned {
		p := byDate[r.PeriodEnd]
		if p == nil {
			p = &TimeSeriesPoint{Name: name, PeriodEnd: r.PeriodEnd}
			byDate[r.PeriodEnd] = p
		}
		p.AggregatePrice = p.AggregatePrice.Add(r.Price)
		p.AggregateValue = p.AggregateValue.Add(r.Value())
	}

	for _, d := range model.Dates(aligned) {
		points = append(points, *byDate[d])
	}

	g.logger.Info().
		Int("records", len(aligned)).
		Int("points", len(points)).
		Msg("time series aggregated")
	return points
}
