package fetcher

import (
	"context"
	"fmt"

	"bookscraper/config"
	"bookscraper/logger"
)

// Page is the raw result of fetching one URL
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// OK reports whether the page came back with 200
func (p *Page) OK() bool {
	return p != nil && p.StatusCode == 200
}

// Fetcher interface defines the contract for fetching implementations.
// A non-2xx response is returned as a Page carrying its status, not as an error;
// errors are reserved for pages that could not be retrieved at all.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	// Close releases any resources held by the fetcher (browser processes, etc.)
	Close() error
}

// New creates the fetcher selected by cfg.Backend
func New(cfg config.FetcherConfig, log logger.Logger) (Fetcher, error) {
	switch cfg.Backend {
	case config.BackendColly, "":
		return NewCollyFetcher(cfg, log), nil
	case config.BackendRod:
		return NewRodFetcher(cfg, log)
	default:
		return nil, fmt.Errorf("unknown fetcher backend: %q", cfg.Backend)
	}
}
