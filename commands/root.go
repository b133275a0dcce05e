// Package commands holds the bookscraper command line.
package commands

import (
	"context"
	"fmt"
	"os"

	"bookscraper/config"
	"bookscraper/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string

	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bookscraper",
	Short: "Scrapes the books.toscrape.com catalog and extracts product attributes from HTML.",
	Long: `bookscraper serves two HTTP endpoints: GET / scrapes the configured catalog
pages, and POST /extract_attributes labels product attributes in submitted HTML
with a masked-language model. Running without a subcommand starts the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log, err = logger.New(cfg.Logging)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file (defaults are used when empty)")
}

// ExecuteContext runs the root command and exits non-zero on failure
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
