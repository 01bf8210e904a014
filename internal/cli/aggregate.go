package cli

import (
	"github.com/spf13/cobra"

	"card-price-index/internal/app"
	"card-price-index/internal/filter"
)

var (
	aggregateName     string
	aggregateSets     string
	aggregateTypes    string
	aggregatePeriod   string
	aggregateFallback bool
	aggregateComplete bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Align a filtered subset and reduce it to an index time series",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.AggregateOptions{
			Name: aggregateName,
			Spec: filter.Spec{
				Sets:   aggregateSets,
				Types:  aggregateTypes,
				Period: aggregatePeriod,
			},
			AllowFallback: aggregateFallback,
			Complete:      aggregateComplete,
		}
		return getApp().Aggregate(cmd.Context(), opts)
	},
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateName, "name", "", "Series name; used for output file names and the series label")
	aggregateCmd.Flags().StringVar(&aggregateSets, "sets", "*", "Set filter pattern (wildcard, comma list, or glob)")
	aggregateCmd.Flags().StringVar(&aggregateTypes, "types", "*", "Type filter pattern (wildcard, comma list, or glob)")
	aggregateCmd.Flags().StringVar(&aggregatePeriod, "period", filter.DefaultPeriod, "Period label")
	aggregateCmd.Flags().BoolVar(&aggregateFallback, "allow-fallback", false, "Accept the best partial-coverage start date when no date has full coverage")
	aggregateCmd.Flags().BoolVar(&aggregateComplete, "complete", false, "Keep only fully-covered dates instead of gap-filling")
	_ = aggregateCmd.MarkFlagRequired("name")
}
