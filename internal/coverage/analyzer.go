package coverage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"card-price-index/internal/aggregate"
	"card-price-index/internal/filter"
	"card-price-index/internal/model"
)

// acceptanceThreshold is the coverage bar an alternative suggestion must
// clear before it is offered. Policy default, not a contract.
const acceptanceThreshold = 0.8

// DatasetLoader supplies the full unfiltered observation dataset.
type DatasetLoader interface {
	LoadRecords(ctx context.Context) ([]model.Record, error)
}

// LoaderFunc adapts a function to the DatasetLoader interface.
type LoaderFunc func(ctx context.Context) ([]model.Record, error)

// LoadRecords implements DatasetLoader.
func (f LoaderFunc) LoadRecords(ctx context.Context) ([]model.Record, error) {
	return f(ctx)
}

// Analyzer scores filter combinations against the alignment engine. The
// dataset and its signature set are loaded once and memoized per instance;
// the cache is a performance optimization only and is not safe for
// concurrent use. Callers needing parallel analysis should use independent
// Analyzer instances.
type Analyzer struct {
	loader     DatasetLoader
	aggregator *aggregate.Aggregator
	logger     zerolog.Logger

	dataset    []model.Record
	signatures map[string]struct{}
	loaded     bool
}

// NewAnalyzer constructs an Analyzer over a dataset loader.
func NewAnalyzer(loader DatasetLoader, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		loader:     loader,
		aggregator: aggregate.New(logger),
		logger:     logger.With().Str("component", "coverage_analyzer").Logger(),
	}
}

// AnalyzeFilterCombination runs filtering and alignment for one filter spec
// and derives its coverage metrics. Invalid patterns and empty datasets
// yield a zeroed Result, never an error; only loader I/O failures
// propagate.
func (a *Analyzer) AnalyzeFilterCombination(ctx context.Context, spec filter.Spec, allowFallback bool) (Result, error) {
	started := time.Now()
	defer func() {
		a.logger.Info().Dur("elapsed", time.Since(started)).Msg("coverage analysis completed")
	}()

	a.logger.Info().
		Str("sets", spec.Sets).
		Str("types", spec.Types).
		Str("period", spec.Period).
		Msg("analyzing filter combination")

	if len(filter.ExpandSets(spec.Sets)) == 0 || len(filter.ExpandTypes(spec.Types)) == 0 {
		a.logger.Warn().
			Str("sets", spec.Sets).
			Str("types", spec.Types).
			Msg("invalid filter patterns")
		return emptyResult(spec), nil
	}

	dataset, err := a.cachedDataset(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(dataset) == 0 {
		return emptyResult(spec), nil
	}

	filtered := a.aggregator.ApplyFilters(dataset, spec)
	if len(filtered) == 0 {
		return emptyResult(spec), nil
	}

	return a.extractMetrics(spec, filtered, allowFallback), nil
}

// extractMetrics aligns the filtered records and reads coverage statistics
// off the result without altering the engine's own logic.
func (a *Analyzer) extractMetrics(spec filter.Spec, filtered []model.Record, allowFallback bool) Result {
	originalSigs := signatureIDs(filtered)
	res := a.aggregator.Aligner().Align(filtered, allowFallback)

	if len(res.Records) == 0 {
		out := emptyResult(spec)
		out.SignaturesTotal = len(originalSigs)
		out.MissingSignatures = sortedIDs(originalSigs)
		return out
	}

	alignedSigs := signatureIDs(res.Records)
	coverage := 0.0
	if len(originalSigs) > 0 {
		coverage = float64(len(alignedSigs)) / float64(len(originalSigs))
	}

	missing := make(map[string]struct{})
	for id := range originalSigs {
		if _, ok := alignedSigs[id]; !ok {
			missing[id] = struct{}{}
		}
	}

	startStr := res.Start.Date.Format(model.DateLayout)
	points := len(model.Dates(res.Records))

	beforeStart := 0
	realInWindow := 0
	for _, r := range filtered {
		if r.PeriodEnd.Before(res.Start.Date) {
			beforeStart++
		} else {
			realInWindow++
		}
	}

	// Gap fills needed = theoretical complete record count minus the real
	// observations available in the aligned window.
	gapFills := len(alignedSigs)*points - realInWindow
	if gapFills < 0 {
		gapFills = 0
	}

	quality := coverage * 0.8
	if gapFills == 0 {
		quality = coverage * 1.0
	} else {
		quality += coverage * 0.1
	}

	return Result{
		FilterSpec:         spec,
		CoveragePercentage: coverage,
		SignaturesFound:    len(alignedSigs),
		SignaturesTotal:    len(originalSigs),
		OptimalStartDate:   &startStr,
		RecordsBeforeStart: beforeStart,
		RecordsAligned:     len(res.Records),
		TimeSeriesPoints:   points,
		GapFillsRequired:   gapFills,
		MissingSignatures:  sortedIDs(missing),
		FallbackRequired:   res.Start.Fallback,
		QualityScore:       quality,
	}
}

// DiscoverViableConfigurations evaluates a priority-ordered candidate list
// and returns the combinations meeting the coverage floor, ranked by
// coverage then estimated record count. Best-effort discovery: full
// enumeration of comma combinations is deliberately not attempted.
func (a *Analyzer) DiscoverViableConfigurations(ctx context.Context, minCoverage float64, maxResults int, includeFallback bool) ([]Recommendation, error) {
	started := time.Now()
	a.logger.Info().
		Float64("min_coverage", minCoverage).
		Int("max_results", maxResults).
		Msg("discovering viable configurations")

	recommendations := make([]Recommendation, 0, maxResults)
	for _, spec := range candidateSpecs() {
		if len(recommendations) >= maxResults {
			break
		}

		result, err := a.AnalyzeFilterCombination(ctx, spec, includeFallback)
		if err != nil {
			return nil, err
		}
		if result.CoveragePercentage < minCoverage {
			continue
		}

		recommendations = append(recommendations, Recommendation{
			Rank:             len(recommendations) + 1,
			FilterSpec:       spec,
			Coverage:         result,
			Description:      describe(spec, result.CoveragePercentage),
			CommandString:    spec.String(),
			EstimatedRecords: result.RecordsAligned,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		ci, cj := recommendations[i].Coverage.CoveragePercentage, recommendations[j].Coverage.CoveragePercentage
		if ci != cj {
			return ci > cj
		}
		return recommendations[i].EstimatedRecords > recommendations[j].EstimatedRecords
	})
	for i := range recommendations {
		recommendations[i].Rank = i + 1
	}

	a.logger.Info().
		Int("found", len(recommendations)).
		Dur("elapsed", time.Since(started)).
		Msg("configuration discovery completed")
	return recommendations, nil
}

// SuggestAlternatives proposes replacement specs for a failed combination:
// retry with fallback, narrow to one product family, narrow to one product
// type, and finally a fixed list of safe defaults when nothing else
// qualifies. Every suggestion carries a real analysis, not a guess.
func (a *Analyzer) SuggestAlternatives(ctx context.Context, failed filter.Spec, maxAlternatives int) ([]Recommendation, error) {
	a.logger.Info().
		Str("sets", failed.Sets).
		Str("types", failed.Types).
		Msg("suggesting alternatives for failed configuration")

	alternatives := make([]Recommendation, 0, maxAlternatives)

	fallbackResult, err := a.AnalyzeFilterCombination(ctx, failed, true)
	if err != nil {
		return nil, err
	}
	if fallbackResult.CoveragePercentage > 0 {
		alternatives = append(alternatives, Recommendation{
			Rank:             1,
			FilterSpec:       failed,
			Coverage:         fallbackResult,
			Description:      "Enable fallback mode",
			CommandString:    failed.String() + " --allow-fallback",
			EstimatedRecords: fallbackResult.RecordsAligned,
		})
	}

	if strings.Contains(failed.Sets, ",") || failed.Sets == "*" {
		for _, family := range filter.Families() {
			if len(alternatives) >= maxAlternatives {
				break
			}
			spec := filter.Spec{Sets: family + "*", Types: failed.Types, Period: failed.Period}
			result, err := a.AnalyzeFilterCombination(ctx, spec, false)
			if err != nil {
				return nil, err
			}
			if result.CoveragePercentage > acceptanceThreshold {
				alternatives = append(alternatives, Recommendation{
					Rank:             len(alternatives) + 1,
					FilterSpec:       spec,
					Coverage:         result,
					Description:      fmt.Sprintf("Focus on the %s generation", family),
					CommandString:    spec.String(),
					EstimatedRecords: result.RecordsAligned,
				})
			}
		}
	}

	if failed.Types == "*" && len(alternatives) < maxAlternatives {
		for _, typePattern := range []string{"Card", "*Box"} {
			if len(alternatives) >= maxAlternatives {
				break
			}
			spec := filter.Spec{Sets: failed.Sets, Types: typePattern, Period: failed.Period}
			result, err := a.AnalyzeFilterCombination(ctx, spec, false)
			if err != nil {
				return nil, err
			}
			if result.CoveragePercentage > acceptanceThreshold {
				alternatives = append(alternatives, Recommendation{
					Rank:             len(alternatives) + 1,
					FilterSpec:       spec,
					Coverage:         result,
					Description:      fmt.Sprintf("Focus on %s products only", strings.TrimPrefix(typePattern, "*")),
					CommandString:    spec.String(),
					EstimatedRecords: result.RecordsAligned,
				})
			}
		}
	}

	if len(alternatives) == 0 {
		a.logger.Info().Msg("no targeted alternatives found; offering default configurations")
		for i, def := range defaultSpecs() {
			if i >= maxAlternatives {
				break
			}
			result, err := a.AnalyzeFilterCombination(ctx, def.spec, false)
			if err != nil {
				return nil, err
			}
			if result.CoveragePercentage > 0 {
				alternatives = append(alternatives, Recommendation{
					Rank:             len(alternatives) + 1,
					FilterSpec:       def.spec,
					Coverage:         result,
					Description:      def.description,
					CommandString:    def.spec.String(),
					EstimatedRecords: result.RecordsAligned,
				})
			}
		}
	}

	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}
	return alternatives, nil
}

// DatasetSummary returns high-level statistics about the full dataset.
func (a *Analyzer) DatasetSummary(ctx context.Context) (Summary, error) {
	dataset, err := a.cachedDataset(ctx)
	if err != nil {
		return Summary{}, err
	}
	if len(dataset) == 0 {
		return Summary{AvailableSets: []string{}, AvailableTypes: []string{}}, nil
	}

	if a.signatures == nil {
		a.signatures = signatureIDs(dataset)
	}

	sets := make(map[string]struct{})
	types := make(map[string]struct{})
	minDate, maxDate := dataset[0].PeriodEnd, dataset[0].PeriodEnd
	for _, r := range dataset {
		sets[r.GroupSet] = struct{}{}
		types[r.ProductType] = struct{}{}
		if r.PeriodEnd.Before(minDate) {
			minDate = r.PeriodEnd
		}
		if r.PeriodEnd.After(maxDate) {
			maxDate = r.PeriodEnd
		}
	}

	return Summary{
		TotalRecords:     len(dataset),
		UniqueSignatures: len(a.signatures),
		DateRange: [2]string{
			minDate.Format(model.DateLayout),
			maxDate.Format(model.DateLayout),
		},
		AvailableSets:  filter.Sorted(sets),
		AvailableTypes: filter.Sorted(types),
	}, nil
}

// ClearCache drops the memoized dataset and signature set. A cleared
// analyzer must reproduce identical results to a cold one.
func (a *Analyzer) ClearCache() {
	a.dataset = nil
	a.signatures = nil
	a.loaded = false
	a.logger.Info().Msg("dataset cache cleared")
}

func (a *Analyzer) cachedDataset(ctx context.Context) ([]model.Record, error) {
	if a.loaded {
		return a.dataset, nil
	}
	a.logger.Info().Msg("loading and caching dataset")
	records, err := a.loader.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	a.dataset = records
	a.loaded = true
	return a.dataset, nil
}

func signatureIDs(records []model.Record) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, r := range records {
		ids[r.Signature().ID()] = struct{}{}
	}
	return ids
}

func sortedIDs(ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
