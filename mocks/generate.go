package mocks

//go:generate mockgen -destination=./mock_execution_venue.go -package=mocks github.com/rxtech-lab/argo-autopilot/internal/trading ExecutionVenue
//go:generate mockgen -destination=./mock_forecast_provider.go -package=mocks github.com/rxtech-lab/argo-autopilot/internal/forecast Provider
//go:generate mockgen -destination=./mock_feed.go -package=mocks github.com/rxtech-lab/argo-autopilot/internal/marketdata Feed
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-autopilot/internal/indicator Indicator
