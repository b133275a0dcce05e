// Package extractor labels product attributes in raw HTML by running its text
// through a masked-language model and reading the top prediction at each
// position.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookscraper/config"
	"bookscraper/inference"
	"bookscraper/logger"
	"bookscraper/metrics"
	"bookscraper/models"
	"bookscraper/parser"
	"bookscraper/tokenizer"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// MinTokens is the number of decoded tokens needed to fill every role
const MinTokens = 5

// PlaceholderImageURL is reported for image_url; the model does not predict images
const PlaceholderImageURL = "https://example.com/product-image.jpg"

// ErrInsufficientTokens is returned when the input is too short to fill every role
var ErrInsufficientTokens = errors.New("not enough tokens to extract attributes")

// selectors are the XPath expressions reported for each role
var selectors = map[string]string{
	models.RoleProductName: "//h3[@class='product-name']",
	models.RolePrice:       "//p[@class='price_color']",
	models.RoleDescription: "//p[@class='description']",
	models.RoleImageURL:    "//div[@class='image_container']/img",
}

// Extractor turns submitted HTML into role-keyed attributes
type Extractor struct {
	tokenizer *tokenizer.Tokenizer
	model     inference.Model
	keying    string
	log       logger.Logger
	metrics   *metrics.Metrics
}

// New creates an Extractor. keying is config.KeyingRole or config.KeyingValue;
// anything else falls back to role keying.
func New(tok *tokenizer.Tokenizer, model inference.Model, keying string, log logger.Logger, m *metrics.Metrics) *Extractor {
	if keying != config.KeyingValue {
		keying = config.KeyingRole
	}
	return &Extractor{
		tokenizer: tok,
		model:     model,
		keying:    keying,
		log:       log,
		metrics:   m,
	}
}

// Extract predicts product attributes for htmlContent.
// The result always has one entry per role in models.Roles.
func (e *Extractor) Extract(ctx context.Context, htmlContent string) (models.Extraction, error) {
	result, err := e.extract(ctx, htmlContent)
	switch {
	case err == nil:
		e.metrics.RecordExtraction(metrics.OutcomeOK)
	case errors.Is(err, ErrInsufficientTokens):
		e.metrics.RecordExtraction(metrics.OutcomeInsufficientTokens)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		e.metrics.RecordExtraction(metrics.OutcomeCanceled)
	case errors.Is(err, inference.ErrModelUnavailable):
		e.metrics.RecordExtraction(metrics.OutcomeModelError)
	default:
		e.metrics.RecordExtraction(metrics.OutcomeError)
	}
	return result, err
}

func (e *Extractor) extract(ctx context.Context, htmlContent string) (models.Extraction, error) {
	doc, err := htmlquery.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	text := parser.NodeText(doc)
	enc := e.tokenizer.Encode(text)
	// Every position is decoded, [CLS] and [SEP] included, so the
	// prediction count equals the encoding length.
	if enc.Len() < MinTokens {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrInsufficientTokens, enc.Len(), MinTokens)
	}

	start := time.Now()
	logits, err := e.model.Logits(ctx, enc)
	e.metrics.ObserveInference(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to run model: %w", err)
	}

	tokens := e.tokenizer.ConvertIDsToTokens(inference.Argmax(logits))
	if len(tokens) < MinTokens {
		return nil, fmt.Errorf("%w: model returned %d positions", ErrInsufficientTokens, len(tokens))
	}

	e.log.Debug("Predicted tokens",
		logger.Int("input_tokens", enc.Len()),
		logger.Strings("tokens", tokens[:MinTokens]),
	)

	values := map[string]string{
		models.RoleProductName: tokens[0],
		models.RolePrice:       tokens[1],
		models.RoleDescription: strings.Join(tokens[2:5], " "),
		models.RoleImageURL:    PlaceholderImageURL,
	}

	return e.attributes(doc, values), nil
}

// attributes attaches a selector and its match count to each role's value
func (e *Extractor) attributes(doc *html.Node, values map[string]string) models.Extraction {
	lookup := e.selectorFor(values)
	counts := make(map[string]int, len(selectors))

	result := make(models.Extraction, len(models.Roles))
	for _, role := range models.Roles {
		attr := models.Attribute{Value: values[role]}
		if sel, ok := lookup(role); ok {
			attr.Selector = &sel
			n, seen := counts[sel]
			if !seen {
				n = countMatches(doc, sel)
				counts[sel] = n
			}
			attr.Matches = n
		}
		result[role] = attr
	}
	return result
}

// selectorFor returns the selector lookup for the configured keying.
// Value keying indexes selectors by predicted value in role order, so roles
// with equal values share the selector of the last such role.
func (e *Extractor) selectorFor(values map[string]string) func(role string) (string, bool) {
	if e.keying != config.KeyingValue {
		return func(role string) (string, bool) {
			sel, ok := selectors[role]
			return sel, ok
		}
	}

	byValue := make(map[string]string, len(models.Roles))
	for _, role := range models.Roles {
		byValue[values[role]] = selectors[role]
	}
	return func(role string) (string, bool) {
		sel, ok := byValue[values[role]]
		return sel, ok
	}
}

func countMatches(doc *html.Node, selector string) int {
	nodes, err := htmlquery.QueryAll(doc, selector)
	if err != nil {
		return 0
	}
	return len(nodes)
}
