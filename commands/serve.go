package commands

import (
	"context"

	"bookscraper/logger"
	"bookscraper/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP server (default).",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	m := newMetrics()

	s, f, err := newScraper(m)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("Failed to close fetcher", logger.Error(err))
		}
	}()

	ex, err := newExtractor(ctx, m)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg.Server, log, server.NewHandler(s, ex, log), m)
	return srv.Run(ctx)
}
