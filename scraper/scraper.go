package scraper

import (
	"context"
	"fmt"
	"net/url"

	"bookscraper/config"
	"bookscraper/fetcher"
	"bookscraper/logger"
	"bookscraper/metrics"
	"bookscraper/models"
	"bookscraper/pages"
	"bookscraper/parser"
)

// Scraper interface defines the contract for scraping implementations
type Scraper interface {
	// Scrape returns every book found on the configured catalog pages
	Scrape(ctx context.Context) ([]models.Book, error)
}

// CatalogScraper walks a fixed list of catalog pages one after another
type CatalogScraper struct {
	fetcher fetcher.Fetcher
	parser  *parser.Parser
	pages   []pages.PageURL
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewCatalogScraper creates a scraper for the pages described by cfg
func NewCatalogScraper(cfg config.CatalogConfig, f fetcher.Fetcher, log logger.Logger, m *metrics.Metrics) (*CatalogScraper, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog base url: %w", err)
	}

	urls, err := pages.GeneratePageURLs(cfg.PageTemplate, cfg.Pages)
	if err != nil {
		return nil, err
	}

	return &CatalogScraper{
		fetcher: f,
		parser:  parser.NewParser(base),
		pages:   urls,
		log:     log,
		metrics: m,
	}, nil
}

// Scrape implements the Scraper interface. Pages are fetched sequentially; a page that
// cannot be retrieved or does not return 200 contributes no books and is not an error.
// Markup that doesn't match the expected card structure aborts the scrape.
func (s *CatalogScraper) Scrape(ctx context.Context) ([]models.Book, error) {
	books := []models.Book{}

	for _, p := range s.pages {
		pageBooks, err := s.scrapePage(ctx, p)
		if err != nil {
			return nil, err
		}
		books = append(books, pageBooks...)
	}

	s.log.Info("Scraping completed",
		logger.Int("pages", len(s.pages)),
		logger.Int("books", len(books)),
	)
	return books, nil
}

// scrapePage fetches and parses a single catalog page
func (s *CatalogScraper) scrapePage(ctx context.Context, p pages.PageURL) ([]models.Book, error) {
	page, err := s.fetcher.Fetch(ctx, p.URL)
	if err != nil {
		// A cancelled request should stop the loop instead of "succeeding" with empty pages
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.metrics.RecordPage(0)
		s.log.Warn("Failed to retrieve page",
			logger.String("url", p.URL),
			logger.String("page", p.Label),
			logger.Error(err),
		)
		return nil, nil
	}

	s.metrics.RecordPage(page.StatusCode)
	if !page.OK() {
		s.log.Warn("Failed to retrieve page",
			logger.String("url", p.URL),
			logger.String("page", p.Label),
			logger.Int("status", page.StatusCode),
		)
		return nil, nil
	}

	books, err := s.parser.ParseCatalog(page.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p.URL, err)
	}

	s.metrics.RecordBooks(len(books))
	s.log.Debug("Scraped page",
		logger.String("url", p.URL),
		logger.String("page", p.Label),
		logger.Int("books", len(books)),
	)
	return books, nil
}
