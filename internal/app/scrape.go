package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"card-price-index/internal/dataset"
	"card-price-index/internal/fetcher"
	"card-price-index/internal/markdown"
	"card-price-index/internal/scrape"
)

// Scrape fetches every configured source page, parses its price-history
// table, and merges the resulting records into the dataset. Records are
// written to the CSV dataset and, when a database is configured, upserted
// into the price-history repository as well.
func (a *App) Scrape(ctx context.Context) error {
	sources, err := dataset.ReadSources(a.Config.Scrape.SourcesPath)
	if err != nil {
		return fmt.Errorf("read sources: %w", err)
	}
	if len(sources) == 0 {
		return errors.New("no scrape sources configured")
	}

	reader := fetcher.NewReader(fetcher.ReaderOptions{
		BaseURL:   a.Config.Scrape.ReaderBaseURL,
		Timeout:   a.Config.Scrape.RequestTimeout,
		UserAgent: a.Config.Scrape.UserAgent,
	}, a.Logger)
	parser := markdown.NewParser(a.Logger)
	svc := scrape.New(reader, parser, a.Logger)

	result, err := svc.ProcessAll(ctx, sources)
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return errors.New("scrape produced no records")
	}

	existing, err := dataset.ReadRecords(a.Config.Dataset.Path)
	if err != nil {
		a.Logger.Warn().Err(err).Str("path", a.Config.Dataset.Path).
			Msg("existing dataset unreadable; starting fresh")
		existing = nil
	}

	merged := dataset.MergeUnique(existing, result.Records)
	if err := dataset.WriteRecords(a.Config.Dataset.Path, merged); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer closeStore()
		if err := store.UpsertRecords(ctx, result.Records); err != nil {
			return fmt.Errorf("upsert records: %w", err)
		}
		if retention := a.Config.Database.Retention; retention > 0 {
			cutoff := time.Now().UTC().Add(-retention)
			if err := store.DeleteRecordsBefore(ctx, cutoff); err != nil {
				return fmt.Errorf("prune records: %w", err)
			}
		}
		if count, err := store.CountRecords(ctx); err == nil {
			a.Logger.Info().Int64("stored_records", count).Msg("repository updated")
		}
	}

	a.Logger.Info().
		Int("sources", result.Sources).
		Int("failed", result.Failed).
		Int("new_records", len(result.Records)).
		Int("dataset_records", len(merged)).
		Msg("scrape finished")
	return nil
}
