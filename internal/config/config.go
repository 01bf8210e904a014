package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"card-price-index/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Presets  PresetsConfig  `mapstructure:"presets"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Alerting AlertingConfig `mapstructure:"alerting"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates optional PostgreSQL connectivity for the
// price-history repository. When the DSN is empty, the CSV dataset is the
// only record source.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Retention       time.Duration `mapstructure:"retention"` // 0 disables pruning
}

// DatasetConfig points at the CSV record files.
type DatasetConfig struct {
	Path      string `mapstructure:"path"`
	OutputDir string `mapstructure:"output_dir"`
}

// ScrapeConfig governs source-page fetching.
type ScrapeConfig struct {
	SourcesPath    string        `mapstructure:"sources_path"`
	ReaderBaseURL  string        `mapstructure:"reader_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// AnalysisConfig tunes coverage analysis defaults.
type AnalysisConfig struct {
	MinCoverage        float64 `mapstructure:"min_coverage"`
	MaxRecommendations int     `mapstructure:"max_recommendations"`
	MaxAlternatives    int     `mapstructure:"max_alternatives"`
}

// PresetsConfig locates the saved filter preset store.
type PresetsConfig struct {
	Path string `mapstructure:"path"`
}

// WatchConfig governs the periodic preset re-validation loop.
type WatchConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	AlignToCycle bool          `mapstructure:"align_to_cycle"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
	MinCoverage  float64       `mapstructure:"min_coverage"`
}

// AlertingConfig defines coverage-degradation alert routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram alert channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CARDINDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cardindex")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("dataset.path", "data/output.csv")
	v.SetDefault("dataset.output_dir", "data")

	v.SetDefault("scrape.sources_path", "data/input.csv")
	v.SetDefault("scrape.reader_base_url", "https://r.jina.ai")
	v.SetDefault("scrape.request_timeout", "30s")
	v.SetDefault("scrape.user_agent", "cardindex/1.0")

	v.SetDefault("analysis.min_coverage", 0.9)
	v.SetDefault("analysis.max_recommendations", 10)
	v.SetDefault("analysis.max_alternatives", 3)

	v.SetDefault("presets.path", "data/presets.json")

	v.SetDefault("watch.interval", "24h")
	v.SetDefault("watch.align_to_cycle", true)
	v.SetDefault("watch.startup_delay", "0s")
	v.SetDefault("watch.min_coverage", 0.9)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset.path must be set")
	}
	if c.Analysis.MinCoverage < 0 || c.Analysis.MinCoverage > 1 {
		return fmt.Errorf("analysis.min_coverage must be within [0, 1]")
	}
	if c.Analysis.MaxRecommendations <= 0 {
		return fmt.Errorf("analysis.max_recommendations must be greater than zero")
	}
	if c.Analysis.MaxAlternatives <= 0 {
		return fmt.Errorf("analysis.max_alternatives must be greater than zero")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Watch.MinCoverage < 0 || c.Watch.MinCoverage > 1 {
		return fmt.Errorf("watch.min_coverage must be within [0, 1]")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token must be configured")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id must be configured")
		}
	}
	return nil
}
