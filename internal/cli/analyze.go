package cli

import (
	"github.com/spf13/cobra"

	"card-price-index/internal/app"
	"card-price-index/internal/filter"
)

var (
	analyzeSets        string
	analyzeTypes       string
	analyzePeriod      string
	analyzeFallback    bool
	analyzeSaveAs      string
	analyzeDisplayName string
	analyzeDescription string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report coverage metrics for a filter combination",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.AnalyzeOptions{
			Spec: filter.Spec{
				Sets:   analyzeSets,
				Types:  analyzeTypes,
				Period: analyzePeriod,
			},
			AllowFallback: analyzeFallback,
			SaveAs:        analyzeSaveAs,
			DisplayName:   analyzeDisplayName,
			Description:   analyzeDescription,
		}
		return getApp().Analyze(cmd.Context(), opts)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSets, "sets", "*", "Set filter pattern (wildcard, comma list, or glob)")
	analyzeCmd.Flags().StringVar(&analyzeTypes, "types", "*", "Type filter pattern (wildcard, comma list, or glob)")
	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", filter.DefaultPeriod, "Period label")
	analyzeCmd.Flags().BoolVar(&analyzeFallback, "allow-fallback", false, "Accept the best partial-coverage start date when no date has full coverage")
	analyzeCmd.Flags().StringVar(&analyzeSaveAs, "save-as", "", "Save a viable combination as a named preset")
	analyzeCmd.Flags().StringVar(&analyzeDisplayName, "display-name", "", "Human-readable preset name (defaults to --save-as)")
	analyzeCmd.Flags().StringVar(&analyzeDescription, "description", "", "Preset description")
}
