package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ReaderOptions parameterise the markdown reader-proxy fetcher.
type ReaderOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Reader fetches price-history pages through a markdown reader proxy that
// converts the upstream HTML to markdown.
type Reader struct {
	opts    ReaderOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewReader constructs a Reader fetcher.
func NewReader(opts ReaderOptions, logger zerolog.Logger) *Reader {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://r.jina.ai"
	}

	return &Reader{
		opts:    opts,
		logger:  logger.With().Str("component", "page_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchPage retrieves one page as markdown text.
func (r *Reader) FetchPage(ctx context.Context, pageURL string) (string, error) {
	if strings.TrimSpace(pageURL) == "" {
		return "", fmt.Errorf("page url required")
	}

	endpoint := r.baseURL + "/" + pageURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")
	if ua := strings.TrimSpace(r.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "cardindex/1.0")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", httpError(resp.StatusCode, payload)
	}

	r.logger.Debug().
		Str("url", pageURL).
		Int("bytes", len(payload)).
		Msg("page fetched")
	return string(payload), nil
}

func httpError(status int, payload []byte) error {
	snippet := strings.TrimSpace(string(payload))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	if snippet != "" {
		return fmt.Errorf("reader error (%d): %s", status, snippet)
	}
	return fmt.Errorf("reader error (%d)", status)
}

var _ PageFetcher = (*Reader)(nil)
