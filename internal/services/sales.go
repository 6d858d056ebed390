package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/models"
	"keimadura-pos/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlaceholderCustomer is the name the register uses for walk-in customers.
// It never opens a loyalty account.
const PlaceholderCustomer = "Cliente"

type SalesService struct {
	db  *gorm.DB
	now Clock
}

func NewSalesService(db *gorm.DB, now Clock) *SalesService {
	return &SalesService{db: db, now: now}
}

type SaleLine struct {
	ProductID uint
	Name      string
	Category  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// NewSale is a checkout as sent by the register. Subtotal and Total are optional
// cross-checks; the stored values are always derived from the lines and discount.
type NewSale struct {
	CustomerName    string
	CustomerPhone   string
	Table           string
	Items           []SaleLine
	Subtotal        *decimal.Decimal
	LoyaltyDiscount decimal.Decimal
	DiscountPercent decimal.Decimal
	LoyaltyTier     string
	Total           *decimal.Decimal
	ConsumptionCode string
	CashSessionID   *uint
}

// build validates the checkout and produces the row to insert.
func (in *NewSale) build(operator string) (*models.Sale, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("a sale needs at least one item")
	}

	items := make([]models.SaleItem, 0, len(in.Items))
	subtotal := decimal.Zero
	for i, line := range in.Items {
		switch {
		case line.ProductID == 0:
			return nil, apperr.Validation(fmt.Sprintf("item %d: product_id is required", i+1))
		case line.Quantity <= 0:
			return nil, apperr.Validation(fmt.Sprintf("item %d: quantity must be positive", i+1))
		case line.UnitPrice.IsNegative():
			return nil, apperr.Validation(fmt.Sprintf("item %d: unit price cannot be negative", i+1))
		}
		total := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(total)
		items = append(items, models.SaleItem{
			ProductID: line.ProductID,
			Name:      strings.TrimSpace(line.Name),
			Category:  strings.TrimSpace(line.Category),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Total:     total,
		})
	}

	if in.Subtotal != nil && !in.Subtotal.Equal(subtotal) {
		return nil, apperr.Validation(fmt.Sprintf("subtotal %s does not match items (%s)", in.Subtotal, subtotal))
	}
	if in.LoyaltyDiscount.IsNegative() || in.LoyaltyDiscount.GreaterThan(subtotal) {
		return nil, apperr.Validation("loyalty discount must be between 0 and the subtotal")
	}
	total := subtotal.Sub(in.LoyaltyDiscount)
	if in.Total != nil && !in.Total.Equal(total) {
		return nil, apperr.Validation(fmt.Sprintf("total %s does not match subtotal minus discount (%s)", in.Total, total))
	}

	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		name = PlaceholderCustomer
	}

	return &models.Sale{
		CustomerName:    name,
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		Table:           strings.TrimSpace(in.Table),
		Items:           items,
		Subtotal:        subtotal,
		LoyaltyDiscount: in.LoyaltyDiscount,
		DiscountPercent: in.DiscountPercent,
		LoyaltyTier:     in.LoyaltyTier,
		Total:           total,
		Operator:        operator,
		ConsumptionCode: strings.TrimSpace(in.ConsumptionCode),
		CashSessionID:   in.CashSessionID,
	}, nil
}

// Register records a sale and its effects as one unit: the sale row, one "out"
// movement per known product, the cash session tally and the customer's points.
// Any failure rolls all of it back.
func (s *SalesService) Register(ctx context.Context, operator auth.Identity, in NewSale) (uint, error) {
	if err := requireAuthenticated(operator); err != nil {
		return 0, err
	}
	sale, err := in.build(operator.Username)
	if err != nil {
		return 0, err
	}

	now := s.now()
	sale.SoldAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return apperr.Persistence("failed to register sale", err)
		}

		for _, item := range sale.Items {
			if err := s.takeFromStock(tx, sale, item); err != nil {
				return err
			}
		}

		if sale.CashSessionID != nil {
			if err := s.addToSession(tx, sale); err != nil {
				return err
			}
		}

		if sale.CustomerPhone != "" {
			return s.accrueLoyalty(tx, sale)
		}
		return nil
	})
	if err != nil {
		return 0, storageErr("failed to register sale", err)
	}
	return sale.ID, nil
}

func (s *SalesService) takeFromStock(tx *gorm.DB, sale *models.Sale, item models.SaleItem) error {
	var product models.Product
	err := tx.Clauses(forUpdate).First(&product, item.ProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("⚠️ sale #%d: product %d no longer exists, stock left untouched", sale.ID, item.ProductID)
		return nil
	}
	if err != nil {
		return err
	}

	after := max(0, product.StockQuantity-item.Quantity)
	_, err = recordMovement(tx, &product, models.MovementOut, item.Quantity, after, ReasonSale, fmt.Sprintf("sale #%d", sale.ID), sale.Operator, sale.SoldAt)
	return err
}

func (s *SalesService) addToSession(tx *gorm.DB, sale *models.Sale) error {
	var session models.CashSession
	err := tx.Clauses(forUpdate).First(&session, *sale.CashSessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if session.Status != models.SessionOpen {
		log.Printf("⚠️ sale #%d: cash session %d is %s, not tallied", sale.ID, session.ID, session.Status)
		return nil
	}

	session.SaleIDs = append(session.SaleIDs, sale.ID)
	session.TotalSales = session.TotalSales.Add(sale.Total)
	session.LastActivityAt = sale.SoldAt
	return tx.Model(&session).Select("sale_ids", "total_sales", "last_activity_at").Updates(&session).Error
}

func (s *SalesService) accrueLoyalty(tx *gorm.DB, sale *models.Sale) error {
	earned := models.PointsFor(sale.Subtotal)
	today := utils.StartOfDay(sale.SoldAt)

	var customer models.Customer
	err := tx.Clauses(forUpdate).Where("phone = ?", sale.CustomerPhone).First(&customer).Error
	switch {
	case err == nil:
		customer.Points += earned
		customer.Tier = models.TierFor(customer.Points)
		customer.LifetimeSpend = customer.LifetimeSpend.Add(sale.Total)
		customer.LastPurchaseOn = &today
		return tx.Model(&customer).Select("points", "tier", "lifetime_spend", "last_purchase_on").Updates(&customer).Error

	case errors.Is(err, gorm.ErrRecordNotFound):
		if sale.CustomerName == "" || sale.CustomerName == PlaceholderCustomer {
			return nil
		}
		return tx.Create(&models.Customer{
			Name:           sale.CustomerName,
			Phone:          sale.CustomerPhone,
			Points:         earned,
			Tier:           models.TierFor(earned),
			LifetimeSpend:  sale.Total,
			LastPurchaseOn: &today,
		}).Error

	default:
		return err
	}
}

// List returns the sales inside period, newest first.
func (s *SalesService) List(ctx context.Context, period Period) ([]models.Sale, error) {
	q := s.db.WithContext(ctx).Model(&models.Sale{})
	if start, ok := period.Since(s.now()); ok {
		q = q.Where("sold_at >= ?", start)
	}
	sales := []models.Sale{}
	if err := q.Order("sold_at desc").Order("id desc").Find(&sales).Error; err != nil {
		return nil, apperr.Persistence("failed to fetch sales", err)
	}
	return sales, nil
}

func (s *SalesService) Get(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.WithContext(ctx).First(&sale, id).Error; err != nil {
		return nil, lookupErr("sale not found", "failed to fetch sale", err)
	}
	return &sale, nil
}
