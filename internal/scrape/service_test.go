package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"card-price-index/internal/dataset"
	"card-price-index/internal/markdown"
)

const samplePage = `
| Date | Holofoil | Volume |
| --- | --- | --- |
| 4/20 to 4/22 | $1,451.66 | 12 |
| 4/23 to 4/25 | $1,398.00 | 8 |
`

type fakeFetcher struct {
	pages map[string]string
	err   error
}

func (f *fakeFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	page, ok := f.pages[pageURL]
	if !ok {
		return "", errors.New("unknown page")
	}
	return page, nil
}

func newTestService(f *fakeFetcher) *Service {
	return New(f, markdown.NewParser(zerolog.Nop()), zerolog.Nop())
}

func source(name, url string) dataset.Source {
	return dataset.Source{
		GroupSet:    "SV01",
		ProductType: "Card",
		PeriodLabel: "3M",
		ProductName: name,
		URL:         url,
	}
}

func TestProcessSource(t *testing.T) {
	svc := newTestService(&fakeFetcher{pages: map[string]string{
		"https://example.com/a": samplePage,
	}})

	records, err := svc.ProcessSource(context.Background(), source("Card A", "https://example.com/a"))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].GroupSet != "SV01" || records[0].ProductName != "Card A" {
		t.Fatalf("source identity not carried: %+v", records[0])
	}
}

func TestProcessSourceNoTable(t *testing.T) {
	svc := newTestService(&fakeFetcher{pages: map[string]string{
		"https://example.com/a": "nothing tabular here",
	}})

	if _, err := svc.ProcessSource(context.Background(), source("Card A", "https://example.com/a")); err == nil {
		t.Fatal("expected error when page has no price table")
	}
}

func TestProcessSourceEmptyURL(t *testing.T) {
	svc := newTestService(&fakeFetcher{})
	if _, err := svc.ProcessSource(context.Background(), source("Card A", "")); err == nil {
		t.Fatal("expected error for missing url")
	}
}

func TestProcessAllContinuesPastFailures(t *testing.T) {
	svc := newTestService(&fakeFetcher{pages: map[string]string{
		"https://example.com/a": samplePage,
		"https://example.com/c": samplePage,
	}})

	sources := []dataset.Source{
		source("Card A", "https://example.com/a"),
		source("Card B", "https://example.com/b"), // fetch fails
		source("Card C", "https://example.com/c"),
	}

	result, err := svc.ProcessAll(context.Background(), sources)
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 succeeded and 1 failed, got %+v", result)
	}
	if len(result.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(result.Records))
	}
}

func TestProcessAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(&fakeFetcher{pages: map[string]string{"u": samplePage}})
	_, err := svc.ProcessAll(ctx, []dataset.Source{source("Card A", "u")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
