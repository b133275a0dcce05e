package pages

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Placeholder is replaced with the page number in a page template
const Placeholder = "{page}"

// PageURL represents one catalog page to fetch
type PageURL struct {
	URL    string
	Number int    // 1-based
	Label  string // e.g., "page 2/3"
}

// GeneratePageURLs expands template into count page URLs, numbered from 1.
// The template must be an absolute http(s) URL containing Placeholder.
func GeneratePageURLs(template string, count int) ([]PageURL, error) {
	if count < 1 {
		return nil, fmt.Errorf("page count must be at least 1, got %d", count)
	}
	if !strings.Contains(template, Placeholder) {
		return nil, fmt.Errorf("page template %q has no %s placeholder", template, Placeholder)
	}

	// Validate with a concrete page number so the placeholder braces don't trip the parser
	sample, err := url.Parse(strings.ReplaceAll(template, Placeholder, "1"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	if sample.Scheme != "http" && sample.Scheme != "https" {
		return nil, fmt.Errorf("page template must be an http(s) URL: %q", template)
	}
	if sample.Host == "" {
		return nil, fmt.Errorf("page template has no host: %q", template)
	}

	urls := make([]PageURL, 0, count)
	for n := 1; n <= count; n++ {
		urls = append(urls, PageURL{
			URL:    strings.ReplaceAll(template, Placeholder, strconv.Itoa(n)),
			Number: n,
			Label:  fmt.Sprintf("page %d/%d", n, count),
		})
	}
	return urls, nil
}
