package handlers

import (
	"context"
	"net/http"
	"time"

	"academic-records/internal/infrastructure/flatfile"

	"github.com/gin-gonic/gin"
)

// HealthChecker is the part of the session cache the health check pings.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	version string
	stats   func(ctx context.Context) ([]flatfile.Stats, error)
	cache   HealthChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, stats func(ctx context.Context) ([]flatfile.Stats, error), cache HealthChecker) *HealthHandler {
	return &HealthHandler{
		version: version,
		stats:   stats,
		cache:   cache,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

func (h *HealthHandler) services(ctx context.Context) (map[string]string, bool) {
	services := make(map[string]string)
	healthy := true

	if _, err := h.stats(ctx); err != nil {
		services["storage"] = "unhealthy: " + err.Error()
		healthy = false
	} else {
		services["storage"] = "healthy"
	}

	if h.cache != nil {
		if err := h.cache.Health(ctx); err != nil {
			services["cache"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			services["cache"] = "healthy"
		}
	}

	return services, healthy
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	services, healthy := h.services(c.Request.Context())

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   h.version,
		Services:  services,
	}

	status := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	_, healthy := h.services(c.Request.Context())

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"ready":     healthy,
		"timestamp": time.Now(),
	})
}

// LivenessCheck handles GET /live
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"alive":     true,
		"timestamp": time.Now(),
	})
}
