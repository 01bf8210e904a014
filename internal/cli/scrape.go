package cli

import (
	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch configured source pages and merge records into the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Scrape(cmd.Context())
	},
}
