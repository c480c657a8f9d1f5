package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPFetcher downloads payloads with a single bounded attempt per item.
// Failures are classified, not retried: the next crawl cycle is the retry
// policy, because an errored run never advances the site fingerprint.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher builds a fetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch downloads url and returns the body bytes. Connection and timeout
// failures, non-2xx statuses, and empty bodies each come back as a
// *FetchError so callers can skip the item and keep crawling.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("build request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) == 0 {
		// Thank you, CA1.
		return nil, &FetchError{URL: url, Err: ErrEmptyBody}
	}
	return body, nil
}
