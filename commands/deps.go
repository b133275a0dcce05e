package commands

import (
	"context"
	"fmt"

	"bookscraper/extractor"
	"bookscraper/fetcher"
	"bookscraper/inference"
	"bookscraper/logger"
	"bookscraper/metrics"
	"bookscraper/scraper"
	"bookscraper/tokenizer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func newMetrics() *metrics.Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.New(reg)
}

// newScraper wires the configured fetcher backend into a catalog scraper.
// The caller closes the returned fetcher.
func newScraper(m *metrics.Metrics) (*scraper.CatalogScraper, fetcher.Fetcher, error) {
	f, err := fetcher.New(cfg.Fetcher, log)
	if err != nil {
		return nil, nil, err
	}

	s, err := scraper.NewCatalogScraper(cfg.Catalog, f, log, m)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return s, f, nil
}

// newExtractor loads the vocabulary and checks once that the model server
// has the model loaded
func newExtractor(ctx context.Context, m *metrics.Metrics) (*extractor.Extractor, error) {
	vocab, err := tokenizer.LoadVocab(cfg.Model.VocabPath)
	if err != nil {
		return nil, err
	}
	tok := tokenizer.New(vocab, tokenizer.Options{
		Lowercase: cfg.Model.Lowercase,
		MaxLength: cfg.Model.MaxLength,
	})

	model := inference.NewRemoteModel(cfg.Model.InferenceURL, cfg.Model.Name, cfg.Model.Timeout)
	if err := model.Ready(ctx); err != nil {
		return nil, fmt.Errorf("model %s at %s: %w", cfg.Model.Name, cfg.Model.InferenceURL, err)
	}

	log.Info("Model ready",
		logger.String("model", cfg.Model.Name),
		logger.String("inference_url", cfg.Model.InferenceURL),
		logger.Int("vocab_size", vocab.Size()),
		logger.String("selector_keying", cfg.Extraction.SelectorKeying),
	)

	return extractor.New(tok, model, cfg.Extraction.SelectorKeying, log, m), nil
}
