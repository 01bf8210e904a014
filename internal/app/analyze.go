package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"card-price-index/internal/configstore"
	"card-price-index/internal/coverage"
)

// Analyze evaluates one filter combination and prints its coverage
// metrics. When the combination yields no viable alignment, alternatives
// are suggested instead of failing with an error.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	analyzer, closeLoader, err := a.newAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer closeLoader()

	result, err := analyzer.AnalyzeFilterCombination(ctx, opts.Spec, opts.AllowFallback)
	if err != nil {
		return err
	}

	printResult(result)

	if result.OptimalStartDate == nil {
		alternatives, err := analyzer.SuggestAlternatives(ctx, opts.Spec, a.Config.Analysis.MaxAlternatives)
		if err != nil {
			return err
		}
		if len(alternatives) > 0 {
			fmt.Fprintln(os.Stdout, "\nNo viable alignment found. Alternatives:")
			printRecommendations(alternatives)
		} else {
			fmt.Fprintln(os.Stdout, "\nNo viable alignment found and no alternatives available; broaden the filters or enable fallback.")
		}
		return nil
	}

	if opts.SaveAs != "" {
		store := a.newPresetStore()
		displayName := opts.DisplayName
		if displayName == "" {
			displayName = opts.SaveAs
		}
		preset := configstore.FilterConfiguration{
			Name:               opts.SaveAs,
			DisplayName:        displayName,
			Description:        opts.Description,
			Filters:            opts.Spec,
			ValidationMetadata: result,
		}
		if err := store.Save(preset); err != nil {
			return fmt.Errorf("save preset: %w", err)
		}
		fmt.Fprintf(os.Stdout, "\nSaved preset %q\n", opts.SaveAs)
	}

	return nil
}

// Discover sweeps the candidate filter combinations and prints those that
// meet the coverage floor, ranked.
func (a *App) Discover(ctx context.Context, opts DiscoverOptions) error {
	analyzer, closeLoader, err := a.newAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer closeLoader()

	minCoverage := opts.MinCoverage
	if minCoverage <= 0 {
		minCoverage = a.Config.Analysis.MinCoverage
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = a.Config.Analysis.MaxRecommendations
	}

	recommendations, err := analyzer.DiscoverViableConfigurations(ctx, minCoverage, maxResults, opts.IncludeFallback)
	if err != nil {
		return err
	}
	if len(recommendations) == 0 {
		fmt.Fprintf(os.Stdout, "no configurations reach %.0f%% coverage\n", minCoverage*100)
		return nil
	}

	printRecommendations(recommendations)
	return nil
}

func printResult(result coverage.Result) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Filters\t%s\n", result.FilterSpec)
	fmt.Fprintf(writer, "Coverage\t%.1f%% (%d/%d signatures)\n",
		result.CoveragePercentage*100, result.SignaturesFound, result.SignaturesTotal)
	start := "none"
	if result.OptimalStartDate != nil {
		start = *result.OptimalStartDate
	}
	fmt.Fprintf(writer, "Start date\t%s\n", start)
	fmt.Fprintf(writer, "Aligned records\t%d (%d before start)\n", result.RecordsAligned, result.RecordsBeforeStart)
	fmt.Fprintf(writer, "Series points\t%d\n", result.TimeSeriesPoints)
	fmt.Fprintf(writer, "Gap fills\t%d\n", result.GapFillsRequired)
	fmt.Fprintf(writer, "Fallback used\t%t\n", result.FallbackRequired)
	fmt.Fprintf(writer, "Quality score\t%.3f\n", result.QualityScore)
	if len(result.MissingSignatures) > 0 {
		fmt.Fprintf(writer, "Missing\t%s\n", strings.Join(result.MissingSignatures, ", "))
	}
	writer.Flush()
}

func printRecommendations(recommendations []coverage.Recommendation) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Rank\tCoverage\tRecords\tQuality\tDescription\tCommand")
	for _, rec := range recommendations {
		fmt.Fprintf(writer, "%d\t%.1f%%\t%d\t%.3f\t%s\t%s\n",
			rec.Rank,
			rec.Coverage.CoveragePercentage*100,
			rec.EstimatedRecords,
			rec.Coverage.QualityScore,
			rec.Description,
			rec.CommandString,
		)
	}
	writer.Flush()
}
