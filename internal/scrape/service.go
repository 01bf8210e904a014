// Package scrape turns scrape sources into observation records: fetch the
// page as markdown, parse the price-history table, convert the rows.
package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"card-price-index/internal/dataset"
	"card-price-index/internal/fetcher"
	"card-price-index/internal/markdown"
	"card-price-index/internal/model"
)

// Result summarises a pipeline run.
type Result struct {
	Sources   int
	Succeeded int
	Failed    int
	Records   []model.Record
}

// Service orchestrates fetching and parsing for scrape sources.
type Service struct {
	fetcher fetcher.PageFetcher
	parser  *markdown.Parser
	logger  zerolog.Logger
	now     func() time.Time
}

// New constructs the scrape service.
func New(pageFetcher fetcher.PageFetcher, parser *markdown.Parser, logger zerolog.Logger) *Service {
	return &Service{
		fetcher: pageFetcher,
		parser:  parser,
		logger:  logger.With().Str("component", "scrape_service").Logger(),
		now:     time.Now,
	}
}

// ProcessSource fetches and parses one source page. A page without a
// price-history table is an error; the caller decides whether to continue.
func (s *Service) ProcessSource(ctx context.Context, source dataset.Source) ([]model.Record, error) {
	if source.URL == "" {
		return nil, fmt.Errorf("source %s/%s has no url", source.GroupSet, source.ProductName)
	}

	content, err := s.fetcher.FetchPage(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source.URL, err)
	}

	rows := s.parser.ParsePriceHistory(content)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no price history table found at %s", source.URL)
	}

	records := markdown.ConvertRows(source, rows, s.now().UTC())
	s.logger.Debug().
		Str("set", source.GroupSet).
		Str("name", source.ProductName).
		Int("records", len(records)).
		Msg("source processed")
	return records, nil
}

// ProcessAll runs every source sequentially, logging and counting failures
// instead of aborting the run.
func (s *Service) ProcessAll(ctx context.Context, sources []dataset.Source) (Result, error) {
	result := Result{Sources: len(sources)}

	for i, source := range sources {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		records, err := s.ProcessSource(ctx, source)
		if err != nil {
			result.Failed++
			s.logger.Error().Err(err).Int("row", i+1).Msg("source failed")
			continue
		}
		result.Succeeded++
		result.Records = append(result.Records, records...)
	}

	s.logger.Info().
		Int("sources", result.Sources).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Int("records", len(result.Records)).
		Msg("scrape run complete")
	return result, nil
}
