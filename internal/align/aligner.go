// Package align implements completeness-only time series alignment: given
// per-signature observations on uneven calendar coverage, it picks the best
// start date and forward-fills signature gaps to produce a rectangular
// dataset (every signature present on every date).
package align

import (
	"time"

	"github.com/rs/zerolog"

	"card-price-index/internal/model"
)

// StartDate is the outcome of the start-date search (step 1).
type StartDate struct {
	Date     time.Time
	Coverage float64 // fraction of signatures present on Date, 0..1
	Found    bool
	Fallback bool // true when Date was chosen by max-coverage fallback
}

// Result is the outcome of a full alignment run.
type Result struct {
	Records    []model.Record
	Start      StartDate
	GapsFilled int
}

// Aligner runs the two-step alignment process over pre-filtered records.
type Aligner struct {
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs an Aligner.
func New(logger zerolog.Logger) *Aligner {
	return &Aligner{
		logger: logger.With().Str("component", "aligner").Logger(),
		now:    time.Now,
	}
}

// FindStartDate walks distinct period end dates in ascending order and
// returns the first one on which every signature has an observation. When
// no date reaches full coverage and allowFallback is set, it returns the
// first date with the maximum signature count instead, reporting its
// partial coverage. Otherwise the search fails and the zero StartDate is
// returned.
func (a *Aligner) FindStartDate(records []model.Record, allowFallback bool) StartDate {
	if len(records) == 0 {
		return StartDate{}
	}

	signatures := model.Signatures(records)
	total := len(signatures)

	onDate := make(map[time.Time]map[model.Signature]struct{})
	for _, r := range records {
		sigs := onDate[r.PeriodEnd]
		if sigs == nil {
			sigs = make(map[model.Signature]struct{})
			onDate[r.PeriodEnd] = sigs
		}
		sigs[r.Signature()] = struct{}{}
	}

	dates := model.Dates(records)
	for _, d := range dates {
		if len(onDate[d]) == total {
			a.logger.Info().
				Str("date", d.Format(model.DateLayout)).
				Int("signatures", total).
				Msg("first complete coverage date found")
			return StartDate{Date: d, Coverage: 1.0, Found: true}
		}
	}

	if allowFallback {
		best := StartDate{}
		bestCount := 0
		for _, d := range dates {
			if count := len(onDate[d]); count > bestCount {
				bestCount = count
				best = StartDate{
					Date:     d,
					Coverage: float64(count) / float64(total),
					Found:    true,
					Fallback: true,
				}
			}
		}
		if best.Found {
			a.logger.Warn().
				Str("date", best.Date.Format(model.DateLayout)).
				Int("signatures_on_date", bestCount).
				Int("signatures_total", total).
				Msg("no complete coverage date; using maximum-coverage fallback")
			return best
		}
	}

	a.logger.Warn().Int("signatures_total", total).
		Msg("no date with complete signature coverage; enable fallback for best-available alignment")
	return StartDate{}
}

// FillGaps ensures every signature has a record on every period end date at
// or after start. A missing observation is synthesized by copying the
// signature's most recent known record, moving the period end to the gap
// date while preserving the period's span in days, and stamping the copy's
// collection timestamp with the current time. Records before start are
// discarded. The returned records are in canonical order.
func (a *Aligner) FillGaps(records []model.Record, start time.Time) ([]model.Record, int) {
	if len(records) == 0 {
		return records, 0
	}

	window := make([]model.Record, 0, len(records))
	for _, r := range records {
		if !r.PeriodEnd.Before(start) {
			window = append(window, r)
		}
	}
	if len(window) == 0 {
		return window, 0
	}

	signatures := model.Signatures(window)
	dates := model.Dates(window)

	onDate := make(map[time.Time]map[model.Signature]model.Record)
	for _, r := range window {
		bySig := onDate[r.PeriodEnd]
		if bySig == nil {
			bySig = make(map[model.Signature]model.Record)
			onDate[r.PeriodEnd] = bySig
		}
		bySig[r.Signature()] = r
	}

	a.logger.Info().
		Int("signatures", len(signatures)).
		Int("dates", len(dates)).
		Str("start", start.Format(model.DateLayout)).
		Msg("filling signature gaps")

	latest := make(map[model.Signature]model.Record, len(signatures))
	for sig, r := range onDate[dates[0]] {
		latest[sig] = r
	}

	filled := make([]model.Record, 0)
	gaps := 0
	for _, d := range dates[1:] {
		present := onDate[d]
		for sig := range signatures {
			if _, ok := present[sig]; ok {
				continue
			}
			base, ok := latest[sig]
			if !ok {
				// No prior observation to carry forward. Step 1 keeps
				// this from happening for signatures present on the
				// start date; if it does, the gap stays open.
				continue
			}
			span := base.PeriodEnd.Sub(base.PeriodStart)
			base.PeriodEnd = d
			base.PeriodStart = d.Add(-span)
			base.CollectedAt = a.now()
			filled = append(filled, base)
			gaps++
		}
		for sig, r := range present {
			latest[sig] = r
		}
	}

	if gaps > 0 {
		a.logger.Info().Int("gaps_filled", gaps).Msg("signature gaps filled")
	} else {
		a.logger.Info().Msg("no gaps found; complete signature coverage already exists")
	}

	out := append(window, filled...)
	model.SortCanonical(out)
	return out, gaps
}

// Align runs the full two-step process: find the start date, restrict the
// input to it, and fill the remaining gaps. When no start date is found the
// result is empty regardless of the fallback setting; fallback only changes
// whether the search succeeds, never what filling does afterwards.
func (a *Aligner) Align(records []model.Record, allowFallback bool) Result {
	if len(records) == 0 {
		return Result{}
	}

	start := a.FindStartDate(records, allowFallback)
	if !start.Found {
		a.logger.Warn().Msg("no suitable alignment date found; returning empty dataset")
		return Result{Start: start}
	}

	aligned, gaps := a.FillGaps(records, start.Date)
	res := Result{Records: aligned, Start: start, GapsFilled: gaps}

	if len(aligned) > 0 {
		sigs := len(model.Signatures(aligned))
		dateCount := len(model.Dates(aligned))
		expected := sigs * dateCount
		ratio := 0.0
		if expected > 0 {
			ratio = float64(len(aligned)) / float64(expected)
		}
		// Diagnostic only; the aligned dataset is returned as-is even
		// when a signature gap could not be filled.
		a.logger.Info().
			Int("records", len(aligned)).
			Int("signatures", sigs).
			Int("dates", dateCount).
			Float64("completeness", ratio).
			Msg("alignment complete")
	}
	return res
}
