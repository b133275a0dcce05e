package commands

import (
	"encoding/json"
	"os"

	"bookscraper/logger"

	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes the configured catalog pages once and prints the books as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, f, err := newScraper(nil)
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Warn("Failed to close fetcher", logger.Error(err))
			}
		}()

		books, err := s.Scrape(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
