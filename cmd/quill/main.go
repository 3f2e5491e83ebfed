// Package main provides quill, an offline companion to the API: it
// forecasts proficiency from a score history file and previews the review
// scheduler without a server or database.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "quill",
		Short:        "Offline proficiency forecasts and review scheduling",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newForecastCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newPreviewCmd())

	return rootCmd
}
