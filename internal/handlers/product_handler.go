package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"keimadura-pos/internal/middleware"
	"keimadura-pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- GET: List products, optionally filtered ---
// ?category=Bebidas&status=low&q=cuca
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.svc.Catalog.List(c.Request.Context(), services.ProductFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("q"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, products)
}

func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.svc.Catalog.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, categories)
}

type ProductRequest struct {
	Category      string          `json:"category" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" binding:"gte=0"`
	MinimumStock  int             `json:"minimum_stock" binding:"gte=0"`
	ImageURL      string          `json:"image_url"`
}

// --- POST: Add a new product ---
func (h *Handler) AddProduct(c *gin.Context) {
	var req ProductRequest

	// 1. Parse JSON Input
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badInput(c, err)
		return
	}

	// 2. Save it, with its opening stock on the ledger
	product, err := h.svc.Catalog.Add(c.Request.Context(), middleware.CurrentIdentity(c), services.NewProduct{
		Category:      req.Category,
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		MinimumStock:  req.MinimumStock,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{"id": product.ID, "product": product})
}

// ProductUpdateRequest only carries the fields being changed.
type ProductUpdateRequest struct {
	Category      *string          `json:"category"`
	Name          *string          `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	MinimumStock  *int             `json:"minimum_stock"`
	ImageURL      *string          `json:"image_url"`
	StockQuantity *int             `json:"stock_quantity"`
}

// --- PUT: Update product details ---
func (h *Handler) UpdateProduct(c *gin.Context) {
	// 1. Get ID from URL (e.g., /products/5)
	id, err := paramID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badInput(c, err)
		return
	}
	// Stock only moves through the ledger
	if req.StockQuantity != nil {
		message(c, http.StatusBadRequest, "stock_quantity cannot be edited here, use /api/stock/adjust")
		return
	}

	// 2. Partial update
	product, err := h.svc.Catalog.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, services.ProductPatch{
		Category:     req.Category,
		Name:         req.Name,
		Price:        req.Price,
		MinimumStock: req.MinimumStock,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusOK, product)
}

// --- DELETE: Remove a product ---
// Soft delete: sales and the ledger keep pointing at it.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Catalog.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id})
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// --- UPLOAD: Handle product image files ---
func (h *Handler) UploadImage(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		message(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	// 2. Only allow images
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		message(c, http.StatusBadRequest, "Only image files are accepted")
		return
	}

	// 3. Generate a unique filename and save it to the uploads folder
	filename := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		message(c, http.StatusInternalServerError, "Failed to save file")
		return
	}

	ok(c, http.StatusCreated, gin.H{"url": h.baseURL + "/uploads/" + filename})
}
