package handlers

import (
	"net/http"
	"strconv"

	"sandwichworks/internal/caching"
	"sandwichworks/internal/jobs"
	"sandwichworks/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobHandlers exposes the background jobs and cache maintenance operations.
type JobHandlers struct {
	scheduler *background.JobScheduler
	alertSvc  *jobs.StockAlertService
	cache     caching.CacheService
}

func NewJobHandlers(scheduler *background.JobScheduler, alertSvc *jobs.StockAlertService, cache caching.CacheService) *JobHandlers {
	return &JobHandlers{
		scheduler: scheduler,
		alertSvc:  alertSvc,
		cache:     cache,
	}
}

// GetJobStatus handler
func (h *JobHandlers) GetJobStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.GetJobStatus())
}

// RunStockAlerts handler runs the low-stock scan on demand instead of
// waiting for the next scheduled pass.
func (h *JobHandlers) RunStockAlerts(c echo.Context) error {
	ctx := c.Request().Context()

	threshold := 0.0 // service applies its default
	if thresholdParam := c.QueryParam("threshold"); thresholdParam != "" {
		if t, err := strconv.ParseFloat(thresholdParam, 64); err == nil {
			threshold = t
		}
	}

	alerts, err := h.alertSvc.CheckLowStock(ctx, threshold)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check stock alerts")
	}

	h.alertSvc.LogLowStockAlerts(ctx, alerts)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts": alerts,
	})
}

// InvalidateCache handler drops every cached entry so the next reads
// repopulate from storage.
func (h *JobHandlers) InvalidateCache(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.cache.InvalidateAllCache(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to invalidate cache")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Cache invalidated",
	})
}
