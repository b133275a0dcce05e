package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var extractFile string

var extractCmd = &cobra.Command{
	Use:   "extract --file <page.html>",
	Short: "Extracts product attributes from an HTML file (or stdin with -) and prints them as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		htmlContent, err := readInput(extractFile)
		if err != nil {
			return err
		}

		ex, err := newExtractor(cmd.Context(), nil)
		if err != nil {
			return err
		}

		result, err := ex.Extract(cmd.Context(), htmlContent)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "HTML file to extract from, - for stdin")
	_ = extractCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(extractCmd)
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read html file: %w", err)
	}
	return string(data), nil
}
