package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
)

// PresetList prints the saved filter presets, most recently used first.
func (a *App) PresetList() error {
	presets, err := a.newPresetStore().List()
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		fmt.Fprintln(os.Stdout, "no presets saved")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Name\tCoverage\tQuality\tUses\tLast used\tFilters")
	for _, preset := range presets {
		lastUsed := preset.UsageStatistics.LastUsed
		if lastUsed == "" {
			lastUsed = "never"
		}
		fmt.Fprintf(writer, "%s\t%.1f%%\t%.3f\t%d\t%s\t%s\n",
			preset.Name,
			preset.ValidationMetadata.CoveragePercentage*100,
			preset.ValidationMetadata.QualityScore,
			preset.UsageStatistics.UseCount,
			lastUsed,
			preset.Filters,
		)
	}
	writer.Flush()
	return nil
}

// PresetDelete removes a preset by name.
func (a *App) PresetDelete(name string) error {
	return a.newPresetStore().Delete(name)
}

// PresetBackup writes a copy of the preset store to path.
func (a *App) PresetBackup(path string) error {
	return a.newPresetStore().Backup(path)
}

// PresetRun aggregates using a saved preset's filters and bumps its usage
// statistics.
func (a *App) PresetRun(ctx context.Context, name string, allowFallback bool) error {
	store := a.newPresetStore()
	preset, err := store.Load(name)
	if err != nil {
		return err
	}

	if err := a.Aggregate(ctx, AggregateOptions{
		Name:          preset.Name,
		Spec:          preset.Filters,
		AllowFallback: allowFallback,
	}); err != nil {
		return err
	}

	if err := store.UpdateUsage(name); err != nil {
		a.Logger.Warn().Err(err).Str("preset", name).Msg("usage statistics not updated")
	}
	return nil
}
