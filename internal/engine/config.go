package engine

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

const (
	DefaultInitialBalance     = 100000.0
	DefaultNotionalCapPercent = 10.0
)

// Config holds the configuration for the order engine.
type Config struct {
	// InitialBalance funds the simulated portfolio
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance" jsonschema:"title=Initial Balance,description=Starting cash balance,default=100000" validate:"gt=0"`

	// NotionalCapPercent caps a single order's value as a share of the balance
	NotionalCapPercent float64 `json:"notional_cap_percent" yaml:"notional_cap_percent" jsonschema:"title=Notional Cap Percent,description=Maximum order value as a percent of the balance,minimum=0,maximum=100,default=10" validate:"gt=0,lte=100"`

	// Settings are the initial risk settings
	Settings types.RiskSettings `json:"risk" yaml:"risk" jsonschema:"title=Risk Settings"`
}

// DefaultConfig returns the configuration the dashboard shipped with.
func DefaultConfig() Config {
	return Config{
		InitialBalance:     DefaultInitialBalance,
		NotionalCapPercent: DefaultNotionalCapPercent,
		Settings:           types.DefaultRiskSettings(),
	}
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, "invalid engine config", err)
	}

	return c.Settings.Validate()
}
