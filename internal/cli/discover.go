package cli

import (
	"github.com/spf13/cobra"

	"card-price-index/internal/app"
)

var (
	discoverMinCoverage float64
	discoverMaxResults  int
	discoverFallback    bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Sweep candidate filter combinations and rank the viable ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.DiscoverOptions{
			MinCoverage:     discoverMinCoverage,
			MaxResults:      discoverMaxResults,
			IncludeFallback: discoverFallback,
		}
		return getApp().Discover(cmd.Context(), opts)
	},
}

func init() {
	discoverCmd.Flags().Float64Var(&discoverMinCoverage, "min-coverage", 0, "Coverage floor, 0-1 (defaults to config)")
	discoverCmd.Flags().IntVar(&discoverMaxResults, "max-results", 0, "Maximum recommendations (defaults to config)")
	discoverCmd.Flags().BoolVar(&discoverFallback, "include-fallback", false, "Evaluate candidates with fallback enabled")
}
