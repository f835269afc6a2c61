package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-autopilot/internal/engine"
	"github.com/rxtech-lab/argo-autopilot/internal/metrics"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
)

// newRouter serves the prometheus registry on /metrics and the engine's
// status on /healthz. /healthz answers 503 while the engine is in ERROR.
func newRouter(eng *engine.Engine, m *metrics.Metrics) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		status := eng.Status()

		w.Header().Set("Content-Type", "application/json")

		if status.Health == types.HealthError {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(status)
	}).Methods(http.MethodGet)

	return router
}
