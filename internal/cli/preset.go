package cli

import (
	"github.com/spf13/cobra"
)

var presetRunFallback bool

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved filter presets",
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().PresetList()
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().PresetDelete(args[0])
	},
}

var presetRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Aggregate using a saved preset's filters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().PresetRun(cmd.Context(), args[0], presetRunFallback)
	},
}

var presetBackupCmd = &cobra.Command{
	Use:   "backup <path>",
	Short: "Write a copy of the preset store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().PresetBackup(args[0])
	},
}

func init() {
	presetRunCmd.Flags().BoolVar(&presetRunFallback, "allow-fallback", false, "Accept the best partial-coverage start date when no date has full coverage")

	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetDeleteCmd)
	presetCmd.AddCommand(presetRunCmd)
	presetCmd.AddCommand(presetBackupCmd)
}
