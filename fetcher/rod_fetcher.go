package fetcher

import (
	"context"
	"fmt"
	"os"

	"bookscraper/config"
	"bookscraper/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// linuxBrowserPaths are checked in order when no browser binary is configured
var linuxBrowserPaths = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
}

// RodFetcher implements the Fetcher interface using rod (headless browser)
type RodFetcher struct {
	browser *rod.Browser
	cfg     config.FetcherConfig
	log     logger.Logger
}

// NewRodFetcher launches a headless browser and connects to it
func NewRodFetcher(cfg config.FetcherConfig, log logger.Logger) (*RodFetcher, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("mute-audio")
	if cfg.UserAgent != "" {
		l = l.Set("user-agent", cfg.UserAgent)
	}

	if bin := resolveBrowserBin(cfg.BrowserBin); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser, err := connectBrowser(controlURL, l.Kill)
	if err != nil {
		return nil, err
	}

	log.Info("Headless browser started", logger.String("control_url", controlURL))

	return &RodFetcher{
		browser: browser,
		cfg:     cfg,
		log:     log,
	}, nil
}

// connectBrowser attaches to the launched browser, calling kill when the
// connection fails so the process is not left running
func connectBrowser(controlURL string, kill func()) (*rod.Browser, error) {
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return browser, nil
}

// resolveBrowserBin returns the configured binary, or the first system browser found
func resolveBrowserBin(configured string) string {
	if configured != "" {
		return configured
	}
	for _, path := range linuxBrowserPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Fetch implements the Fetcher interface. The status code is taken from the
// network response for the main document.
func (rf *RodFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if rf.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rf.cfg.Timeout)
		defer cancel()
	}

	page, err := rf.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	statusCode := 0
	waitDocument := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		statusCode = e.Response.Status
		return true
	})

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	waitDocument()

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to wait for %s to load: %w", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML: %w", err)
	}

	rf.log.Debug("Rendered page",
		logger.String("url", url),
		logger.Int("status", statusCode),
		logger.Int("bytes", len(html)),
	)

	return &Page{
		URL:        url,
		StatusCode: statusCode,
		Body:       []byte(html),
	}, nil
}

// Close closes the browser
func (rf *RodFetcher) Close() error {
	if rf.browser != nil {
		return rf.browser.Close()
	}
	return nil
}
