package fetcher

import "context"

// PageFetcher retrieves a price-history page rendered as markdown.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
}
