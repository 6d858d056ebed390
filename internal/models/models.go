package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrImmutable is returned when something tries to rewrite an audit record.
var ErrImmutable = errors.New("audit records cannot be modified")

// Permission tiers
const (
	TierAdmin = "admin"
	TierStaff = "staff"
)

// User - Staff member operating the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Role         string         `gorm:"size:100" json:"role"` // job title, e.g. 'Caixa'
	Email        string         `gorm:"size:100" json:"email"`
	Phone        string         `gorm:"size:20" json:"phone"`
	Color        string         `gorm:"size:10;default:'#0499e2'" json:"color"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never return this in JSON
	Tier         string         `gorm:"size:10;not null;default:'staff';index" json:"tier"`
	LastAccessAt *time.Time     `json:"last_access_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsAdmin() bool { return u.Tier == TierAdmin }

// Category - Seeded product groupings
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string `json:"description"`
}

// Product - The Inventory
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Category      string          `gorm:"size:100;not null;index" json:"category"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	MinimumStock  int             `gorm:"not null;default:0" json:"minimum_stock"`
	ImageURL      string          `json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Movement types
const (
	MovementIn     = "in"
	MovementOut    = "out"
	MovementAdjust = "adjust"
)

// StockMovement - One ledger line. Written once, never changed.
type StockMovement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"size:100;not null" json:"product_name"`
	Category    string    `gorm:"size:100;not null" json:"category"`
	Type        string    `gorm:"size:10;not null;index" json:"type"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	StockBefore int       `gorm:"not null" json:"stock_before"`
	StockAfter  int       `gorm:"not null" json:"stock_after"`
	Reason      string    `gorm:"size:50;not null" json:"reason"`
	Note        string    `json:"note"`
	Actor       string    `gorm:"size:50;not null" json:"actor"`
	OccurredAt  time.Time `gorm:"not null;index" json:"occurred_at"`
}

func (*StockMovement) BeforeUpdate(*gorm.DB) error { return ErrImmutable }
func (*StockMovement) BeforeDelete(*gorm.DB) error { return ErrImmutable }

// SaleItem - A line on the ticket, embedded in the sale row
type SaleItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// Sale - The Transaction Header with its items serialized in order
type Sale struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	SoldAt          time.Time       `gorm:"not null;index" json:"sold_at"`
	CustomerName    string          `gorm:"size:100;not null" json:"customer_name"`
	CustomerPhone   string          `gorm:"size:20;index" json:"customer_phone"`
	Table           string          `gorm:"column:table_label;size:10" json:"table"`
	Items           []SaleItem      `gorm:"type:json;serializer:json;not null" json:"items"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	LoyaltyDiscount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"loyalty_discount"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	LoyaltyTier     string          `gorm:"size:20" json:"loyalty_tier"`
	Total           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Operator        string          `gorm:"size:50;not null" json:"operator"`
	ConsumptionCode string          `gorm:"size:7" json:"consumption_code"`
	CashSessionID   *uint           `gorm:"index" json:"cash_session_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (*Sale) BeforeUpdate(*gorm.DB) error { return ErrImmutable }
func (*Sale) BeforeDelete(*gorm.DB) error { return ErrImmutable }

// Cash session states
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// CashSession - One operator's shift at the register
type CashSession struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	OperatorID     uint             `gorm:"not null;index" json:"operator_id"`
	StartedAt      time.Time        `gorm:"not null" json:"started_at"`
	EndedAt        *time.Time       `json:"ended_at"`
	SaleIDs        []uint           `gorm:"type:json;serializer:json" json:"sale_ids"`
	TotalSales     decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"total_sales"`
	Status         string           `gorm:"size:10;not null;default:'open';index" json:"status"`
	Duration       string           `gorm:"size:16" json:"duration"`
	DurationMS     int64            `json:"duration_ms"`
	DeclaredAmount *decimal.Decimal `gorm:"type:decimal(10,2)" json:"declared_amount"`
	Notes          string           `json:"notes"`
	LastActivityAt time.Time        `json:"last_activity_at"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Customer - Loyalty account keyed by phone number
type Customer struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Phone          string          `gorm:"size:20;index" json:"phone"`
	Email          string          `gorm:"size:100" json:"email"`
	Points         int             `gorm:"not null;default:0" json:"points"`
	Tier           string          `gorm:"size:10;not null;default:'bronze'" json:"tier"`
	LifetimeSpend  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"lifetime_spend"`
	LastPurchaseOn *time.Time      `gorm:"type:date" json:"last_purchase_on"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// All lists every table, in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&StockMovement{},
		&CashSession{},
		&Sale{},
		&Customer{},
	}
}
