package handlers

import (
	"net/http"

	"keimadura-pos/internal/services"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/sales/stats ---
// ?period=today (default) | week | month | year | all
func (h *Handler) GetSalesStats(c *gin.Context) {
	period, err := services.ParsePeriod(c.Query("period"), services.PeriodToday)
	if err != nil {
		h.fail(c, err)
		return
	}
	stats, err := h.svc.Reports.Dashboard(c.Request.Context(), period)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}

// --- GET: /api/reports/valuation ---
// GetStockValuation calculates the selling value of all physical inventory
func (h *Handler) GetStockValuation(c *gin.Context) {
	valuation, err := h.svc.Reports.StockValuation(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, valuation)
}
