package venue

import (
	"slices"

	"github.com/rxtech-lab/argo-autopilot/internal/trading"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

type VenueType string

const (
	VenueSimulated VenueType = "simulated"
)

type VenueInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description"`
	IsPaperTrading bool   `json:"isPaperTrading"`
}

var venueRegistry = map[VenueType]VenueInfo{
	VenueSimulated: {
		Name:           string(VenueSimulated),
		DisplayName:    "Simulated",
		Description:    "In-memory venue that fills every order after a fixed latency",
		IsPaperTrading: true,
	},
}

// GetSupportedVenues returns the names of every registered venue, sorted.
func GetSupportedVenues() []string {
	venues := make([]string, 0, len(venueRegistry))
	for venueType := range venueRegistry {
		venues = append(venues, string(venueType))
	}

	slices.Sort(venues)

	return venues
}

// GetVenueInfo returns metadata for a specific venue.
func GetVenueInfo(name string) (VenueInfo, error) {
	info, exists := venueRegistry[VenueType(name)]
	if !exists {
		return VenueInfo{}, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported venue: %s", name)
	}

	return info, nil
}

// NewVenue creates a venue of the given type from its config.
func NewVenue(venueType VenueType, config any) (trading.ExecutionVenue, error) {
	switch venueType {
	case VenueSimulated:
		cfg, ok := config.(SimulatedConfig)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "invalid config type for simulated venue")
		}

		simulated, err := NewSimulatedVenue(cfg)
		if err != nil {
			return nil, err
		}

		return simulated, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported venue: %s", venueType)
	}
}
