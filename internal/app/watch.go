package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"card-price-index/internal/alerting"
	"card-price-index/internal/scheduler"
)

// Watch periodically re-validates every saved preset against the current
// dataset. Presets whose coverage drops below the configured floor trigger
// an alert when a notifier is configured.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("alerting not configured; watch runs without notifications")
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watch.Interval,
		AlignToCycle: a.Config.Watch.AlignToCycle,
		StartupDelay: a.Config.Watch.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Dur("interval", a.Config.Watch.Interval).Msg("starting watch loop")
	err := sched.Run(ctx, func(ctx context.Context, cycle time.Time) error {
		return a.watchCycle(ctx, cycle, notifier)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch loop stopped")
	return nil
}

func (a *App) watchCycle(ctx context.Context, cycle time.Time, notifier alerting.Notifier) error {
	store := a.newPresetStore()
	presets, err := store.List()
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		a.Logger.Info().Msg("no presets to validate")
		return nil
	}

	analyzer, closeLoader, err := a.newAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer closeLoader()

	summary, err := analyzer.DatasetSummary(ctx)
	if err != nil {
		return err
	}

	for _, preset := range presets {
		result, err := analyzer.AnalyzeFilterCombination(ctx, preset.Filters, false)
		if err != nil {
			a.Logger.Error().Err(err).Str("preset", preset.Name).Msg("preset validation failed")
			continue
		}

		if err := store.RefreshValidation(preset.Name, result, summary.TotalRecords); err != nil {
			a.Logger.Error().Err(err).Str("preset", preset.Name).Msg("validation metadata not persisted")
		}

		if result.CoveragePercentage >= a.Config.Watch.MinCoverage {
			a.Logger.Debug().
				Str("preset", preset.Name).
				Float64("coverage", result.CoveragePercentage).
				Msg("preset healthy")
			continue
		}

		a.Logger.Warn().
			Str("preset", preset.Name).
			Float64("coverage", result.CoveragePercentage).
			Float64("min_coverage", a.Config.Watch.MinCoverage).
			Msg("preset coverage degraded")

		if notifier == nil {
			continue
		}
		note := alerting.Notification{
			Cycle:             cycle,
			Preset:            preset.Name,
			FilterSpec:        preset.Filters.String(),
			Coverage:          result.CoveragePercentage,
			QualityScore:      result.QualityScore,
			MinCoverage:       a.Config.Watch.MinCoverage,
			MissingSignatures: result.MissingSignatures,
		}
		if err := notifier.Notify(ctx, note); err != nil {
			a.Logger.Error().Err(err).Str("preset", preset.Name).Msg("alert delivery failed")
		}
	}

	return nil
}
