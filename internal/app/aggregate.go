package app

import (
	"context"
	"fmt"
	"path/filepath"

	"card-price-index/internal/dataset"
	"card-price-index/internal/model"
)

// Aggregate filters and aligns the dataset, then reduces it to an index
// time series. Both the aligned subset and the reduced series are written
// under the configured output directory, named after opts.Name.
func (a *App) Aggregate(ctx context.Context, opts AggregateOptions) error {
	loader, closeLoader, err := a.newLoader(ctx)
	if err != nil {
		return err
	}
	defer closeLoader()

	records, err := loader.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	aggregator := a.newAggregator()

	var aligned []model.Record
	if opts.Complete {
		aligned = aggregator.CreateCompleteSubset(records, opts.Spec)
	} else {
		aligned = aggregator.CreateSubset(records, opts.Spec, opts.AllowFallback)
	}
	if len(aligned) == 0 {
		return fmt.Errorf("no viable alignment for %s; broaden the filters or enable fallback", opts.Spec)
	}

	subsetPath := filepath.Join(a.Config.Dataset.OutputDir, opts.Name+".csv")
	if err := dataset.WriteRecords(subsetPath, aligned); err != nil {
		return fmt.Errorf("write aligned subset: %w", err)
	}

	points := aggregator.AggregateTimeSeries(aligned, opts.Name)
	seriesPath := filepath.Join(a.Config.Dataset.OutputDir, opts.Name+"_time_series.csv")
	if err := dataset.WriteTimeSeries(seriesPath, points); err != nil {
		return fmt.Errorf("write time series: %w", err)
	}

	a.Logger.Info().
		Str("name", opts.Name).
		Int("aligned_records", len(aligned)).
		Int("series_points", len(points)).
		Str("subset", subsetPath).
		Str("series", seriesPath).
		Msg("aggregation complete")
	return nil
}
