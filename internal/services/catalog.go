package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock status filters
const (
	StockLow      = "low"      // 0 < stock <= minimum
	StockNormal   = "normal"   // stock > minimum
	StockDepleted = "depleted" // stock = 0
)

type CatalogService struct {
	db  *gorm.DB
	now Clock
}

func NewCatalogService(db *gorm.DB, now Clock) *CatalogService {
	return &CatalogService{db: db, now: now}
}

// ProductFilter narrows a product listing. Empty fields don't restrict.
type ProductFilter struct {
	Category string
	Status   string
	Search   string // matches name substring or exact id
}

// List returns the products matching f, ordered by name.
func (s *CatalogService) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	switch f.Status {
	case "":
	case StockLow:
		q = q.Where("stock_quantity <= minimum_stock AND stock_quantity > 0")
	case StockNormal:
		q = q.Where("stock_quantity > minimum_stock")
	case StockDepleted:
		q = q.Where("stock_quantity = 0")
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown stock status %q", f.Status))
	}

	if term := strings.TrimSpace(f.Search); term != "" {
		id, _ := strconv.ParseUint(term, 10, 64)
		q = q.Where("name LIKE ? OR id = ?", "%"+term+"%", id)
	}

	products := []models.Product{}
	if err := q.Order("name asc").Order("id asc").Find(&products).Error; err != nil {
		return nil, apperr.Persistence("failed to fetch products", err)
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, lookupErr("product not found", "failed to fetch product", err)
	}
	return &product, nil
}

// NewProduct is the payload of a catalog insert.
type NewProduct struct {
	Category      string
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	MinimumStock  int
	ImageURL      string
}

func (p *NewProduct) validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	switch {
	case p.Name == "":
		return apperr.Validation("name is required")
	case p.Category == "":
		return apperr.Validation("category is required")
	case p.Price.IsNegative():
		return apperr.Validation("price cannot be negative")
	case p.StockQuantity < 0:
		return apperr.Validation("stock cannot be negative")
	case p.MinimumStock < 0:
		return apperr.Validation("minimum stock cannot be negative")
	}
	return nil
}

// Add inserts a product. Opening stock goes through the ledger as an "in" movement.
func (s *CatalogService) Add(ctx context.Context, actor auth.Identity, in NewProduct) (*models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := models.Product{
		Category:     in.Category,
		Name:         in.Name,
		Price:        in.Price,
		MinimumStock: in.MinimumStock,
		ImageURL:     in.ImageURL,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if in.StockQuantity == 0 {
			return nil
		}
		_, err := recordMovement(tx, &product, models.MovementIn, in.StockQuantity, in.StockQuantity, ReasonInitialStock, "", actor.Username, s.now())
		return err
	})
	if err != nil {
		return nil, storageErr("failed to create product", err)
	}
	product.StockQuantity = in.StockQuantity
	return &product, nil
}

// ProductPatch changes only the fields that are set. Stock is not patchable;
// it moves through StockService.Adjust so the ledger stays complete.
type ProductPatch struct {
	Category     *string
	Name         *string
	Price        *decimal.Decimal
	MinimumStock *int
	ImageURL     *string
}

func (s *CatalogService) Update(ctx context.Context, actor auth.Identity, id uint, patch ProductPatch) (*models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		updates["name"] = name
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			return nil, apperr.Validation("category cannot be empty")
		}
		updates["category"] = category
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, apperr.Validation("price cannot be negative")
		}
		updates["price"] = *patch.Price
	}
	if patch.MinimumStock != nil {
		if *patch.MinimumStock < 0 {
			return nil, apperr.Validation("minimum stock cannot be negative")
		}
		updates["minimum_stock"] = *patch.MinimumStock
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return product, nil
	}
	if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		return nil, apperr.Persistence("failed to update product", err)
	}
	return s.Get(ctx, id)
}

// Delete hides the product from the catalog. Ledger and sales keep their references.
func (s *CatalogService) Delete(ctx context.Context, actor auth.Identity, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return apperr.Persistence("failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name asc").Find(&categories).Error; err != nil {
		return nil, apperr.Persistence("failed to fetch categories", err)
	}
	return categories, nil
}
