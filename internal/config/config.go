package config

import (
	"maps"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-autopilot/internal/engine"
	"github.com/rxtech-lab/argo-autopilot/internal/forecast"
	"github.com/rxtech-lab/argo-autopilot/internal/marketdata"
	"github.com/rxtech-lab/argo-autopilot/internal/trading/venue"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/internal/version"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the autopilot configuration file.
type Config struct {
	// Version is the autopilot version the file was written for
	Version string `yaml:"version" json:"version" jsonschema:"title=Version,description=Autopilot version this file targets,default=v1.0.0" validate:"required"`

	engine.Config `yaml:",inline"`

	// PollInterval is the time between two price polls
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval" jsonschema:"title=Poll Interval,default=5s" validate:"gte=0"`
	// ForecastInterval is how long a forecast is reused
	ForecastInterval time.Duration `yaml:"forecast_interval" json:"forecast_interval" jsonschema:"title=Forecast Interval,default=5m" validate:"gte=0"`
	// MaxConcurrency bounds the symbols forecast at once
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency" jsonschema:"title=Max Concurrency,minimum=0,default=4" validate:"gte=0"`
	// Timeframe is the horizon of technical forecasts
	Timeframe string `yaml:"timeframe" json:"timeframe" jsonschema:"title=Timeframe,enum=1m,enum=5m,enum=15m,enum=1h,enum=4h,enum=1d,default=1h" validate:"timeframe"`
	// WindowSize is the number of samples kept per symbol
	WindowSize int `yaml:"window_size" json:"window_size" jsonschema:"title=Window Size,minimum=20,default=100" validate:"gte=20"`
	// Backfill is the number of samples generated per symbol before the first tick
	Backfill int `yaml:"backfill" json:"backfill" jsonschema:"title=Backfill,minimum=0,default=60" validate:"gte=0"`
	// StatsPath is where the stats YAML is written. Empty disables it.
	StatsPath string `yaml:"stats_path" json:"stats_path" jsonschema:"title=Stats Path"`
	// MetricsAddr is the listen address of the metrics server. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr" jsonschema:"title=Metrics Address,default=:9090"`
	// LogLevel is one of debug, info, warn or error
	LogLevel string `yaml:"log_level" json:"log_level" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"oneof=debug info warn error"`

	Forecast forecast.ProviderConfig        `yaml:"forecast" json:"forecast" jsonschema:"title=Forecast Provider"`
	Venue    venue.SimulatedConfig          `yaml:"venue" json:"venue" jsonschema:"title=Venue"`
	Feed     marketdata.SimulatedFeedConfig `yaml:"feed" json:"feed" jsonschema:"title=Feed"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Version:          version.GetVersion(),
		Config:           engine.DefaultConfig(),
		PollInterval:     5 * time.Second,
		ForecastInterval: forecast.DefaultCacheTTL,
		MaxConcurrency:   4,
		Timeframe:        forecast.DefaultTimeframe,
		WindowSize:       marketdata.DefaultWindowSize,
		Backfill:         60,
		MetricsAddr:      ":9090",
		LogLevel:         "info",
		Forecast:         forecast.DefaultProviderConfig(),
		Venue:            venue.DefaultSimulatedConfig(),
		Feed:             marketdata.DefaultSimulatedFeedConfig(),
	}
}

// Load reads the YAML file at path over the defaults and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeConfigReadFailed, err, "failed to read config file %s", path)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Fields
// missing from data keep their default.
func Parse(data []byte) (Config, error) {
	config := Default()
	// The defaults' maps must not be merged with the file's
	config.Feed.Prices = nil

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeConfigParseFailed, "failed to parse config", err)
	}

	if len(config.Feed.Prices) == 0 {
		config.Feed.Prices = marketdata.DefaultPrices()
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate validates the Config struct and checks its version against the
// running autopilot.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("timeframe", func(fl validator.FieldLevel) bool {
		return forecast.IsKnownTimeframe(fl.Field().String())
	}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, "failed to register validation", err)
	}

	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, "invalid config", err)
	}

	if err := c.Config.Validate(); err != nil {
		return err
	}

	if err := version.CheckVersionCompatibility(version.GetVersion(), c.Version); err != nil {
		return err
	}

	return nil
}

// Symbols returns the feed's symbols that the risk settings allow.
func (c Config) Symbols() []string {
	symbols := make([]string, 0, len(c.Settings.AllowedSymbols))

	for _, symbol := range c.Settings.AllowedSymbols {
		if _, ok := c.Feed.Prices[symbol]; ok {
			symbols = append(symbols, symbol)
		}
	}

	return symbols
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	cloned := c
	cloned.Settings = c.Settings.Clone()
	cloned.Feed.Prices = maps.Clone(c.Feed.Prices)

	return cloned
}

// ApplySettings merges a partial risk settings update into the config.
func (c Config) ApplySettings(update types.RiskSettingsUpdate) (Config, error) {
	cloned := c.Clone()
	cloned.Settings = update.Apply(c.Settings)

	if err := cloned.Settings.Validate(); err != nil {
		return c, err
	}

	return cloned, nil
}
