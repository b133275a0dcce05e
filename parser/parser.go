package parser

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"bookscraper/models"

	"github.com/PuerkitoBio/goquery"
)

// ErrMalformedItem is returned when a product card lacks one of the expected nested elements
var ErrMalformedItem = errors.New("malformed catalog item")

// Catalog selectors for books.toscrape.com product cards
const (
	itemSelector         = "article.product_pod"
	titleSelector        = "h3 a"
	priceSelector        = "p.price_color"
	availabilitySelector = "p.instock.availability"
	imageSelector        = "div.image_container img"
)

// Parser extracts book data from catalog HTML
type Parser struct {
	base *url.URL
}

// NewParser creates a new Parser. Relative image paths are resolved against base.
func NewParser(base *url.URL) *Parser {
	return &Parser{base: base}
}

// ParseCatalog extracts one Book per product card. A card missing any field fails
// the whole page with ErrMalformedItem; partial pages are never returned.
func (p *Parser) ParseCatalog(htmlContent []byte) ([]models.Book, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	books := []models.Book{}
	var itemErr error

	doc.Find(itemSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		book, err := p.extractBook(s)
		if err != nil {
			itemErr = fmt.Errorf("item %d: %w", i, err)
			return false
		}
		books = append(books, book)
		return true
	})

	if itemErr != nil {
		return nil, itemErr
	}
	return books, nil
}

// extractBook reads the four fields of a single product card
func (p *Parser) extractBook(s *goquery.Selection) (models.Book, error) {
	var book models.Book

	link := s.Find(titleSelector).First()
	title, ok := link.Attr("title")
	if !ok {
		return book, fmt.Errorf("%w: missing title", ErrMalformedItem)
	}
	book.Title = title

	price := s.Find(priceSelector).First()
	if price.Length() == 0 {
		return book, fmt.Errorf("%w: missing price", ErrMalformedItem)
	}
	book.Price = strings.TrimSpace(price.Text())

	availability := s.Find(availabilitySelector).First()
	if availability.Length() == 0 {
		return book, fmt.Errorf("%w: missing availability", ErrMalformedItem)
	}
	book.Availability = strings.TrimSpace(availability.Text())

	src, ok := s.Find(imageSelector).First().Attr("src")
	if !ok {
		return book, fmt.Errorf("%w: missing image", ErrMalformedItem)
	}
	imageURL, err := p.resolve(strings.TrimSpace(src))
	if err != nil {
		return book, fmt.Errorf("%w: bad image url %q: %v", ErrMalformedItem, src, err)
	}
	book.ImageURL = imageURL

	return book, nil
}

// resolve turns a page-relative path such as "../media/cache/x.jpg" into an absolute URL
func (p *Parser) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if p.base == nil {
		return u.String(), nil
	}
	return p.base.ResolveReference(u).String(), nil
}
