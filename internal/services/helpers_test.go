package services

import (
	"testing"
	"time"

	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/database"
	"keimadura-pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testClock is a settable wall clock.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *testClock {
	return &testClock{t: time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)}
}

func dec(s string) decimal.Decimal     { return decimal.RequireFromString(s) }
func decPtr(s string) *decimal.Decimal { d := dec(s); return &d }
func strPtr(s string) *string          { return &s }
func intPtr(i int) *int                { return &i }
func uintPtr(u uint) *uint             { return &u }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestServices(t *testing.T) (*Services, *gorm.DB, *testClock) {
	t.Helper()
	db := newTestDB(t)
	clock := newClock()
	return New(db, clock.Now), db, clock
}

func createUser(t *testing.T, db *gorm.DB, username, tier string) auth.Identity {
	t.Helper()
	hash, err := auth.HashPassword(username + "-pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{Username: username, Name: username, PasswordHash: hash, Tier: tier}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return auth.IdentityOf(&user)
}

func createProduct(t *testing.T, db *gorm.DB, name, category string, price string, stock, minimum int) models.Product {
	t.Helper()
	product := models.Product{
		Name:          name,
		Category:      category,
		Price:         dec(price),
		StockQuantity: stock,
		MinimumStock:  minimum,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return product
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) models.Product {
	t.Helper()
	var p models.Product
	if err := db.Unscoped().First(&p, id).Error; err != nil {
		t.Fatalf("reload product %d: %v", id, err)
	}
	return p
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
