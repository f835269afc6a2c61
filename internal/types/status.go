package types

import (
	"time"

	"github.com/moznion/go-optional"
)

type Health string

const (
	HealthHealthy Health = "HEALTHY"
	HealthWarning Health = "WARNING"
	HealthError   Health = "ERROR"
)

// BotStatus is the engine's self-reported state. Health and ErrorMessage are
// only written by the engine's fault reporting.
type BotStatus struct {
	IsActive              bool      `yaml:"is_active" json:"is_active"`
	LastUpdate            time.Time `yaml:"last_update" json:"last_update"`
	ActivePredictionCount int       `yaml:"active_prediction_count" json:"active_prediction_count"`
	// PendingOrderCount is the number of orders submitted to the venue and not yet executed or failed
	PendingOrderCount int                     `yaml:"pending_order_count" json:"pending_order_count"`
	Health            Health                  `yaml:"health" json:"health"`
	ErrorMessage      optional.Option[string] `yaml:"error_message" json:"error_message"`
}

// Clone returns a copy of the status that shares no optional values with s.
func (s BotStatus) Clone() BotStatus {
	cloned := s
	cloned.ErrorMessage = cloneOption(s.ErrorMessage)

	return cloned
}
