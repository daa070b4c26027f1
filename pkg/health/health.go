// Package health aggregates component health checks and serves them over a
// dedicated HTTP endpoint for liveness monitoring.
package health

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/WennovateHQ/teachgage-survey/pkg/logger"
)

type (
	// Healther is implemented by any component that can report whether it
	// is ready to serve. Implementations should answer quickly; the check
	// runs on every probe.
	Healther interface {
		IsHealthy() bool
	}

	// HealthChecker aggregates multiple Healther implementations and
	// reports overall service health.
	HealthChecker struct {
		logger    *logger.Logger
		healthers []Healther
	}
)

// NewHealthChecker creates a health checker over the given components.
func NewHealthChecker(logger *logger.Logger, healthers ...Healther) *HealthChecker {
	return &HealthChecker{
		healthers: healthers,
		logger:    logger,
	}
}

// HealthCheck handles a probe request: 200 "OK" when every registered
// component is healthy, 500 "Not OK" otherwise. Every component is checked
// so each failure gets logged.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ok := true

	for _, healther := range h.healthers {
		if !healther.IsHealthy() {
			ok = false
			h.logger.Error("health check failed")
		}
	}

	if ok {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	} else {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Not OK"))
	}
}

// StartHealthCheckServer serves GET /health on the given port. It blocks,
// so run it in its own goroutine.
func (h *HealthChecker) StartHealthCheckServer(port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.HealthCheck)

	h.logger.Info("Starting health check server", zap.String("port", port))

	if err := http.ListenAndServe(port, mux); err != nil {
		h.logger.Error("Failed to start health check server", zap.Error(err))
	}
}
