package handlers

import (
	"net/http"

	"keimadura-pos/internal/middleware"
	"keimadura-pos/internal/services"

	"github.com/gin-gonic/gin"
)

type StockAdjustRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=in out adjust"`
	Quantity  int    `json:"quantity" binding:"gte=0"`
	Reason    string `json:"reason" binding:"required"`
	Note      string `json:"note"`
}

// --- POST: Manual stock entry, exit or count ---
func (h *Handler) AdjustStock(c *gin.Context) {
	var req StockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badInput(c, err)
		return
	}

	result, err := h.svc.Stock.Adjust(c.Request.Context(), middleware.CurrentIdentity(c), services.StockAdjustment{
		ProductID: req.ProductID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Note:      req.Note,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, result)
}

// --- GET: The ledger, newest first ---
// ?period=week&type=out
func (h *Handler) GetStockMovements(c *gin.Context) {
	period, err := services.ParsePeriod(c.Query("period"), services.PeriodAll)
	if err != nil {
		h.fail(c, err)
		return
	}
	movements, err := h.svc.Stock.ListMovements(c.Request.Context(), period, c.Query("type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, movements)
}
