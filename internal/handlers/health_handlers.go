package handlers

import (
	"net/http"
	"runtime"
	"time"

	"sandwichworks/internal/caching"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db       *pgxpool.Pool
	redisSvc caching.CacheService
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db *pgxpool.Pool, redisSvc caching.CacheService) *HealthHandlers {
	return &HealthHandlers{
		db:       db,
		redisSvc: redisSvc,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// HealthCheck reports the reachability of every backing service
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   "1.0.0",
	}

	if _, err := h.db.Exec(ctx, "SELECT 1"); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.redisSvc.Ping(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, health)
}

// ReadinessCheck determines if the application is ready to serve traffic
//
// Redis is optional: reads fall back to the database when the cache is
// down, so only the database gates readiness.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := h.db.Exec(ctx, "SELECT 1"); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running (basic liveness probe)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetMetrics provides basic runtime metrics
func (h *HealthHandlers) GetMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"version":    "1.0.0",
		"goroutines": runtime.NumGoroutine(),
		"database_connections": map[string]interface{}{
			"max":      h.db.Config().MaxConns,
			"acquired": h.db.Stat().AcquiredConns(),
			"idle":     h.db.Stat().IdleConns(),
		},
	})
}
