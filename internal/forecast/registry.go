package forecast

import (
	"slices"
	"time"

	"github.com/rxtech-lab/argo-autopilot/internal/indicator"
	"github.com/rxtech-lab/argo-autopilot/internal/logger"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

type ProviderType string

const (
	// ProviderTechnical forecasts from indicator consensus only
	ProviderTechnical ProviderType = "technical"
	// ProviderSimulated enriches simulated model forecasts with technical signals
	ProviderSimulated ProviderType = "simulated"
)

// ProviderConfig selects and configures the primary forecast provider.
type ProviderConfig struct {
	Type      ProviderType    `yaml:"type" json:"type" jsonschema:"title=Provider,enum=technical,enum=simulated,default=simulated" validate:"oneof=technical simulated"`
	Simulated SimulatedConfig `yaml:"simulated" json:"simulated" jsonschema:"title=Simulated Provider"`
}

// DefaultProviderConfig returns the default provider selection.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Type:      ProviderSimulated,
		Simulated: DefaultSimulatedConfig(),
	}
}

// GetSupportedProviders returns the names of every provider type, sorted.
func GetSupportedProviders() []string {
	providers := []string{string(ProviderTechnical), string(ProviderSimulated)}
	slices.Sort(providers)

	return providers
}

// NewProvider builds the provider chain for config. Every chain ends in the
// technical fallback; a primary provider is wrapped in an Enricher.
func NewProvider(config ProviderConfig, timeframe string, now func() time.Time, log *logger.Logger) (Provider, error) {
	aggregator := indicator.NewAggregator(nil)
	technical := NewTechnicalProvider(aggregator, timeframe)

	if now != nil {
		technical.WithClock(now)
	}

	switch config.Type {
	case ProviderTechnical:
		return NewEnricher(nil, technical, aggregator, log), nil
	case ProviderSimulated:
		simulated, err := NewSimulatedProvider(config.Simulated, timeframe)
		if err != nil {
			return nil, err
		}

		if now != nil {
			simulated.WithClock(now)
		}

		return NewEnricher(simulated, technical, aggregator, log), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported forecast provider: %s", config.Type)
	}
}
