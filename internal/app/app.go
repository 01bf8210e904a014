package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"card-price-index/internal/aggregate"
	"card-price-index/internal/alerting"
	"card-price-index/internal/config"
	"card-price-index/internal/configstore"
	"card-price-index/internal/coverage"
	"card-price-index/internal/dataset"
	"card-price-index/internal/filter"
	"card-price-index/internal/model"
	"card-price-index/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// newLoader picks the record source: the PostgreSQL repository when a DSN
// is configured, the CSV dataset otherwise.
func (a *App) newLoader(ctx context.Context) (coverage.DatasetLoader, func(), error) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if store != nil {
		return store, closeStore, nil
	}

	path := a.Config.Dataset.Path
	loader := coverage.LoaderFunc(func(context.Context) ([]model.Record, error) {
		return dataset.ReadRecords(path)
	})
	return loader, func() {}, nil
}

func (a *App) newAnalyzer(ctx context.Context) (*coverage.Analyzer, func(), error) {
	loader, closeLoader, err := a.newLoader(ctx)
	if err != nil {
		return nil, nil, err
	}
	return coverage.NewAnalyzer(loader, a.Logger), closeLoader, nil
}

func (a *App) newAggregator() *aggregate.Aggregator {
	return aggregate.New(a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) newPresetStore() *configstore.Store {
	return configstore.NewStore(a.Config.Presets.Path, a.Logger)
}

// AggregateOptions configure the aggregate command.
type AggregateOptions struct {
	Name          string
	Spec          filter.Spec
	AllowFallback bool
	Complete      bool
}

// AnalyzeOptions configure a single coverage analysis.
type AnalyzeOptions struct {
	Spec          filter.Spec
	AllowFallback bool
	SaveAs        string
	DisplayName   string
	Description   string
}

// DiscoverOptions configure a discovery sweep.
type DiscoverOptions struct {
	MinCoverage     float64
	MaxResults      int
	IncludeFallback bool
}
