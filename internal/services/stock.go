package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/models"

	"gorm.io/gorm"
)

// Ledger reasons written by the system itself
const (
	ReasonSale         = "sale"
	ReasonInitialStock = "initial_stock"
)

type StockService struct {
	db  *gorm.DB
	now Clock
}

func NewStockService(db *gorm.DB, now Clock) *StockService {
	return &StockService{db: db, now: now}
}

// StockAdjustment is one manual stock change.
type StockAdjustment struct {
	ProductID uint
	Type      string
	Quantity  int
	Reason    string
	Note      string
}

// AdjustResult reports the ledger entry written and the stock it left behind.
type AdjustResult struct {
	MovementID uint `json:"movement_id"`
	StockAfter int  `json:"stock_after"`
}

// nextStock applies a movement. "out" clamps at zero, "adjust" sets an absolute level.
func nextStock(movementType string, current, quantity int) (int, error) {
	if quantity < 0 {
		return 0, apperr.Validation("quantity cannot be negative")
	}
	switch movementType {
	case models.MovementIn:
		return current + quantity, nil
	case models.MovementOut:
		return max(0, current-quantity), nil
	case models.MovementAdjust:
		return quantity, nil
	}
	return 0, apperr.Validation(fmt.Sprintf("unknown movement type %q", movementType))
}

func validMovementType(t string) bool {
	return t == models.MovementIn || t == models.MovementOut || t == models.MovementAdjust
}

// recordMovement appends the ledger line and moves the product to stockAfter, inside tx.
func recordMovement(tx *gorm.DB, product *models.Product, movementType string, quantity, stockAfter int, reason, note, actor string, at time.Time) (*models.StockMovement, error) {
	movement := models.StockMovement{
		ProductID:   product.ID,
		ProductName: product.Name,
		Category:    product.Category,
		Type:        movementType,
		Quantity:    quantity,
		StockBefore: product.StockQuantity,
		StockAfter:  stockAfter,
		Reason:      reason,
		Note:        note,
		Actor:       actor,
		OccurredAt:  at,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(product).Update("stock_quantity", stockAfter).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// Adjust writes one movement and the new product stock as a single unit.
func (s *StockService) Adjust(ctx context.Context, actor auth.Identity, adj StockAdjustment) (*AdjustResult, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	adj.Reason = strings.TrimSpace(adj.Reason)
	if adj.Reason == "" {
		return nil, apperr.Validation("reason is required")
	}
	if _, err := nextStock(adj.Type, 0, adj.Quantity); err != nil {
		return nil, err
	}

	var result AdjustResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(forUpdate).First(&product, adj.ProductID).Error; err != nil {
			return lookupErr("product not found", "failed to load product", err)
		}

		after, err := nextStock(adj.Type, product.StockQuantity, adj.Quantity)
		if err != nil {
			return err
		}

		movement, err := recordMovement(tx, &product, adj.Type, adj.Quantity, after, adj.Reason, adj.Note, actor.Username, s.now())
		if err != nil {
			return err
		}
		result = AdjustResult{MovementID: movement.ID, StockAfter: after}
		return nil
	})
	if err != nil {
		return nil, storageErr("failed to adjust stock", err)
	}
	return &result, nil
}

// ListMovements returns the ledger newest first. An empty movementType means every type.
func (s *StockService) ListMovements(ctx context.Context, period Period, movementType string) ([]models.StockMovement, error) {
	q := s.db.WithContext(ctx).Model(&models.StockMovement{})
	if start, ok := period.Since(s.now()); ok {
		q = q.Where("occurred_at >= ?", start)
	}
	if movementType != "" {
		if !validMovementType(movementType) {
			return nil, apperr.Validation(fmt.Sprintf("unknown movement type %q", movementType))
		}
		q = q.Where("type = ?", movementType)
	}

	movements := []models.StockMovement{}
	if err := q.Order("occurred_at desc").Order("id desc").Find(&movements).Error; err != nil {
		return nil, apperr.Persistence("failed to fetch stock movements", err)
	}
	return movements, nil
}
