package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"bookscraper/logger"
	"bookscraper/pages"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Fetcher backends
const (
	BackendColly = "colly"
	BackendRod   = "rod"
)

// Selector keying modes for the extraction endpoint
const (
	KeyingRole  = "role"
	KeyingValue = "value"
)

// Config represents the service configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Fetcher    FetcherConfig    `yaml:"fetcher"`
	Model      ModelConfig      `yaml:"model"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Logging    logger.Config    `yaml:"logging"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	Debug           bool          `yaml:"debug" env:"SERVER_DEBUG"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// CatalogConfig describes which catalog pages are scraped
type CatalogConfig struct {
	BaseURL      string `yaml:"base_url" env:"CATALOG_BASE_URL"`
	PageTemplate string `yaml:"page_template" env:"CATALOG_PAGE_TEMPLATE"`
	Pages        int    `yaml:"pages" env:"CATALOG_PAGES"`
}

// FetcherConfig configures how catalog pages are retrieved
type FetcherConfig struct {
	Backend   string        `yaml:"backend" env:"FETCHER_BACKEND"`
	UserAgent string        `yaml:"user_agent" env:"FETCHER_USER_AGENT"`
	Timeout   time.Duration `yaml:"timeout" env:"FETCHER_TIMEOUT"` // 0 means no timeout
	// BrowserBin is only used by the rod backend; empty lets rod pick a browser.
	BrowserBin string `yaml:"browser_bin" env:"FETCHER_BROWSER_BIN"`
}

// ModelConfig points at the masked-language model server and its vocabulary
type ModelConfig struct {
	InferenceURL string        `yaml:"inference_url" env:"MODEL_INFERENCE_URL"`
	Name         string        `yaml:"name" env:"MODEL_NAME"`
	VocabPath    string        `yaml:"vocab_path" env:"MODEL_VOCAB_PATH"`
	MaxLength    int           `yaml:"max_length" env:"MODEL_MAX_LENGTH"`
	Lowercase    bool          `yaml:"lowercase" env:"MODEL_LOWERCASE"`
	Timeout      time.Duration `yaml:"timeout" env:"MODEL_TIMEOUT"`
}

// ExtractionConfig configures the attribute extraction endpoint
type ExtractionConfig struct {
	SelectorKeying string `yaml:"selector_keying" env:"EXTRACTION_SELECTOR_KEYING"`
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// .env files are loaded first and environment variables override file values.
// An empty path skips the file and uses defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := GetDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(reflect.ValueOf(cfg).Elem())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetDefaultConfig returns a default configuration matching the books.toscrape.com demo
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			BaseURL:      "https://books.toscrape.com/",
			PageTemplate: "https://books.toscrape.com/catalogue/page-" + pages.Placeholder + ".html",
			Pages:        3,
		},
		Fetcher: FetcherConfig{
			Backend:   BackendColly,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Model: ModelConfig{
			InferenceURL: "http://localhost:8080",
			Name:         "bert-base-uncased",
			VocabPath:    "models/bert-base-uncased/vocab.txt",
			MaxLength:    512,
			Lowercase:    true,
			Timeout:      60 * time.Second,
		},
		Extraction: ExtractionConfig{
			SelectorKeying: KeyingRole,
		},
		Logging: logger.Config{
			Level: "info",
		},
	}
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Catalog.Pages < 1 {
		return fmt.Errorf("catalog pages must be at least 1, got %d", c.Catalog.Pages)
	}
	if !strings.Contains(c.Catalog.PageTemplate, pages.Placeholder) {
		return fmt.Errorf("catalog page template must contain %s: %q", pages.Placeholder, c.Catalog.PageTemplate)
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base url is required")
	}
	switch c.Fetcher.Backend {
	case BackendColly, BackendRod:
	default:
		return fmt.Errorf("unknown fetcher backend: %q", c.Fetcher.Backend)
	}
	if c.Model.MaxLength < 2 {
		return fmt.Errorf("model max length must be at least 2, got %d", c.Model.MaxLength)
	}
	switch c.Extraction.SelectorKeying {
	case KeyingRole, KeyingValue:
	default:
		return fmt.Errorf("unknown selector keying: %q", c.Extraction.SelectorKeying)
	}
	return nil
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local and .env when present
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

func applyEnvOverrides(v reflect.Value) {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvOverrides(field)
			continue
		}

		key := t.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		val, ok := os.LookupEnv(key)
		if !ok || val == "" {
			continue
		}
		setField(field, val)
	}
}

// setField assigns val to field; unparsable values are ignored and the previous value stays
func setField(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(val); err == nil {
			field.SetBool(b)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(val, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
}
