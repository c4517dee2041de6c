package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// FetchError reports a failed retrieval of the publication page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves the duty publication page.
type Fetcher struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewFetcher creates a fetcher for the given publication URL.
// No retries here; the expiry schedule is the retry mechanism.
func NewFetcher(url string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "text/html")

	return &Fetcher{
		client: client,
		url:    url,
		logger: logger,
	}
}

// FetchPage returns the raw page markup, or a *FetchError on network
// failure, timeout or a non-2xx status.
func (f *Fetcher) FetchPage(ctx context.Context) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(f.url)
	if err != nil {
		return "", &FetchError{URL: f.url, Err: err}
	}
	if !resp.IsSuccess() {
		return "", &FetchError{URL: f.url, StatusCode: resp.StatusCode()}
	}

	f.logger.Debug("Fetched publication page",
		zap.String("url", f.url),
		zap.Int("bytes", len(resp.Body())),
	)

	return resp.String(), nil
}
