package types

import (
	"math"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

// RiskSettings bounds what the engine may do with a forecast. A snapshot is
// taken per evaluation and never changes while that evaluation runs.
type RiskSettings struct {
	// MaxRiskPerTradePercent is the share of the balance lost if the stop is hit
	MaxRiskPerTradePercent float64 `yaml:"max_risk_per_trade_percent" json:"max_risk_per_trade_percent" jsonschema:"title=Max Risk Per Trade Percent,minimum=0,maximum=100,default=2" validate:"gte=0,lte=100"`
	// MaxDailyLossPercent stops new entries once the day's loss reaches it. Zero disables the check.
	MaxDailyLossPercent float64 `yaml:"max_daily_loss_percent" json:"max_daily_loss_percent" jsonschema:"title=Max Daily Loss Percent,minimum=0,maximum=100,default=5" validate:"gte=0,lte=100"`
	MinConfidenceLevel  float64 `yaml:"min_confidence_level" json:"min_confidence_level" jsonschema:"title=Minimum Confidence,minimum=0,maximum=100,default=75" validate:"gte=0,lte=100"`
	AutoTradingEnabled  bool    `yaml:"auto_trading_enabled" json:"auto_trading_enabled" jsonschema:"title=Auto Trading Enabled,default=true"`
	StopLossPercent     float64 `yaml:"stop_loss_percent" json:"stop_loss_percent" jsonschema:"title=Stop Loss Percent,minimum=0,maximum=100,default=2" validate:"gte=0,lt=100"`
	TakeProfitPercent   float64 `yaml:"take_profit_percent" json:"take_profit_percent" jsonschema:"title=Take Profit Percent,minimum=0,default=4" validate:"gte=0"`
	// AllowedSymbols is the set of symbols the engine may trade
	AllowedSymbols []string `yaml:"allowed_symbols" json:"allowed_symbols" jsonschema:"title=Allowed Symbols" validate:"dive,required"`
}

// DefaultRiskSettings are the settings the dashboard shipped with.
func DefaultRiskSettings() RiskSettings {
	return RiskSettings{
		MaxRiskPerTradePercent: 2,
		MaxDailyLossPercent:    5,
		MinConfidenceLevel:     75,
		AutoTradingEnabled:     true,
		StopLossPercent:        2,
		TakeProfitPercent:      4,
		AllowedSymbols:         []string{"AAPL", "TSLA", "NVDA", "GOOGL", "AMZN"},
	}
}

// Validate validates the RiskSettings struct.
func (s *RiskSettings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, "invalid risk settings", err)
	}

	for _, v := range []float64{s.MaxRiskPerTradePercent, s.MaxDailyLossPercent, s.MinConfidenceLevel, s.StopLossPercent, s.TakeProfitPercent} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidSettings, "risk settings must be finite")
		}
	}

	return nil
}

// AllowsSymbol reports whether symbol is in the allowed set.
func (s RiskSettings) AllowsSymbol(symbol string) bool {
	return slices.Contains(s.AllowedSymbols, symbol)
}

// Clone returns a deep copy of the settings.
func (s RiskSettings) Clone() RiskSettings {
	cloned := s
	cloned.AllowedSymbols = slices.Clone(s.AllowedSymbols)

	return cloned
}

// RiskSettingsUpdate is a partial update. Only the fields that are set
// replace the corresponding field of the current settings.
type RiskSettingsUpdate struct {
	MaxRiskPerTradePercent optional.Option[float64]  `yaml:"max_risk_per_trade_percent" json:"max_risk_per_trade_percent"`
	MaxDailyLossPercent    optional.Option[float64]  `yaml:"max_daily_loss_percent" json:"max_daily_loss_percent"`
	MinConfidenceLevel     optional.Option[float64]  `yaml:"min_confidence_level" json:"min_confidence_level"`
	AutoTradingEnabled     optional.Option[bool]     `yaml:"auto_trading_enabled" json:"auto_trading_enabled"`
	StopLossPercent        optional.Option[float64]  `yaml:"stop_loss_percent" json:"stop_loss_percent"`
	TakeProfitPercent      optional.Option[float64]  `yaml:"take_profit_percent" json:"take_profit_percent"`
	AllowedSymbols         optional.Option[[]string] `yaml:"allowed_symbols" json:"allowed_symbols"`
}

// Apply merges the update over base and returns the merged settings.
// base is not modified.
func (u RiskSettingsUpdate) Apply(base RiskSettings) RiskSettings {
	merged := base.Clone()

	if u.MaxRiskPerTradePercent.IsSome() {
		merged.MaxRiskPerTradePercent = u.MaxRiskPerTradePercent.Unwrap()
	}

	if u.MaxDailyLossPercent.IsSome() {
		merged.MaxDailyLossPercent = u.MaxDailyLossPercent.Unwrap()
	}

	if u.MinConfidenceLevel.IsSome() {
		merged.MinConfidenceLevel = u.MinConfidenceLevel.Unwrap()
	}

	if u.AutoTradingEnabled.IsSome() {
		merged.AutoTradingEnabled = u.AutoTradingEnabled.Unwrap()
	}

	if u.StopLossPercent.IsSome() {
		merged.StopLossPercent = u.StopLossPercent.Unwrap()
	}

	if u.TakeProfitPercent.IsSome() {
		merged.TakeProfitPercent = u.TakeProfitPercent.Unwrap()
	}

	if u.AllowedSymbols.IsSome() {
		merged.AllowedSymbols = slices.Clone(u.AllowedSymbols.Unwrap())
	}

	return merged
}
