package fetcher

import (
	"context"
	"fmt"

	"bookscraper/config"
	"bookscraper/logger"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher implements the Fetcher interface using colly
type CollyFetcher struct {
	collector *colly.Collector
	log       logger.Logger
}

// NewCollyFetcher creates a new CollyFetcher instance.
// The base collector is never visited directly: every Fetch works on a clone so
// callbacks don't pile up across requests.
func NewCollyFetcher(cfg config.FetcherConfig, log logger.Logger) *CollyFetcher {
	opts := []colly.CollectorOption{
		// The same catalog pages are fetched on every request
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(cfg.UserAgent))
	}

	c := colly.NewCollector(opts...)
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}

	return &CollyFetcher{
		collector: c,
		log:       log,
	}
}

// Fetch implements the Fetcher interface
func (cf *CollyFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	c := cf.collector.Clone()
	c.Context = ctx

	page := &Page{URL: url}
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.Body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			// HTTP error status: the page exists, it just isn't usable
			page.StatusCode = r.StatusCode
			page.Body = r.Body
			return
		}
		fetchErr = err
	})

	visitErr := c.Visit(url)
	c.Wait()

	if page.StatusCode != 0 {
		cf.log.Debug("Fetched page",
			logger.String("url", url),
			logger.Int("status", page.StatusCode),
			logger.Int("bytes", len(page.Body)),
		)
		return page, nil
	}
	if fetchErr == nil {
		fetchErr = visitErr
	}
	if fetchErr == nil {
		fetchErr = fmt.Errorf("no response")
	}
	return nil, fmt.Errorf("failed to fetch %s: %w", url, fetchErr)
}

// Close implements the Fetcher interface. Colly holds nothing that needs releasing.
func (cf *CollyFetcher) Close() error {
	return nil
}
