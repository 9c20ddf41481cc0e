package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const reportDateLayout = "2006-01-02"

// DailySales reports sales totals for one calendar day, today by default.
// GET /v1/reports/daily-sales?date=YYYY-MM-DD
func (h *Handler) DailySales(c echo.Context) error {
	ctx := c.Request().Context()

	day := time.Now()
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.ParseInLocation(reportDateLayout, raw, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		}
		day = parsed
	}

	report, err := h.service.DailySales(ctx, day)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}

// ProfitLoss reports revenue, cost and profit over an inclusive range,
// today by default.
// GET /v1/reports/profit-loss?start_date=...&end_date=...
func (h *Handler) ProfitLoss(c echo.Context) error {
	ctx := c.Request().Context()

	now := time.Now()
	start := now
	end := now
	if raw := c.QueryParam("start_date"); raw != "" {
		parsed, err := time.ParseInLocation(reportDateLayout, raw, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
		}
		start = parsed
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		parsed, err := time.ParseInLocation(reportDateLayout, raw, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "end_date must be YYYY-MM-DD"})
		}
		end = parsed
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "end_date must not be before start_date"})
	}

	report, err := h.service.ProfitLoss(ctx, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}
