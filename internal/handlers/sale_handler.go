package handlers

import (
	"net/http"

	"keimadura-pos/internal/middleware"
	"keimadura-pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SaleItemRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleRequest defines what the register sends us
type SaleRequest struct {
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	Table           string            `json:"table" binding:"max=10"`
	Items           []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Subtotal        *decimal.Decimal  `json:"subtotal"`
	LoyaltyDiscount decimal.Decimal   `json:"loyalty_discount"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	LoyaltyTier     string            `json:"loyalty_tier"`
	Total           *decimal.Decimal  `json:"total"`
	ConsumptionCode string            `json:"consumption_code" binding:"max=7"`
	CashSessionID   *uint             `json:"cash_session_id"`
}

// --- POST: Register a sale ---
// Sale row, stock exits, session tally and loyalty points commit together or not at all.
func (h *Handler) ProcessSale(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badInput(c, err)
		return
	}

	lines := make([]services.SaleLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.SaleLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Category:  item.Category,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	saleID, err := h.svc.Sales.Register(c.Request.Context(), middleware.CurrentIdentity(c), services.NewSale{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Table:           req.Table,
		Items:           lines,
		Subtotal:        req.Subtotal,
		LoyaltyDiscount: req.LoyaltyDiscount,
		DiscountPercent: req.DiscountPercent,
		LoyaltyTier:     req.LoyaltyTier,
		Total:           req.Total,
		ConsumptionCode: req.ConsumptionCode,
		CashSessionID:   req.CashSessionID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{"sale_id": saleID})
}

// --- GET: Sales history ---
// ?period=all|today|week|month|year (default all)
func (h *Handler) GetSales(c *gin.Context) {
	period, err := services.ParsePeriod(c.Query("period"), services.PeriodAll)
	if err != nil {
		h.fail(c, err)
		return
	}
	sales, err := h.svc.Sales.List(c.Request.Context(), period)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, sales)
}

// --- GET: Loyalty account shown at checkout ---
func (h *Handler) GetCustomerByPhone(c *gin.Context) {
	customer, err := h.svc.Customers.FindByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, customer)
}
