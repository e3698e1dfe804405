package handler

import (
	"net/http"
	"time"

	"ga-bridge/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Service   string    `json:"service"`
	Redis     string    `json:"redis"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	redisStatus := "not_configured"
	if client := h.container.GetRedisClient(); client != nil {
		redisStatus = "healthy"
		if err := client.Health(r.Context()); err != nil {
			logger.WithError(err).Warn("Redis health check failed")
			redisStatus = "unhealthy"
		}
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Service:   "ga-bridge",
		Redis:     redisStatus,
	}

	writeJSON(w, http.StatusOK, response)
}
