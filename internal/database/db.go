package database

import (
	"fmt"
	"log"
	"time"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/config"
	"keimadura-pos/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// retryDelay is the pause between connection attempts (Wait for DB to be ready)
var retryDelay = 2 * time.Second

func dialector(driver, dsn string) gorm.Dialector {
	if driver == "sqlite" {
		return sqlite.Open(dsn)
	}
	return mysql.Open(dsn)
}

// Connect opens the database, retrying while it comes up, then syncs the schema.
// An unreachable server is reported as a connectivity error.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}

	var db *gorm.DB
	var err error
	for i := 0; i < cfg.DBAttempts; i++ {
		db, err = gorm.Open(dialector(cfg.DBDriver, cfg.DBDSN), &gorm.Config{
			Logger:  logger.Default.LogMode(logLevel),
			NowFunc: func() time.Time { return time.Now().In(cfg.Location) },
		})
		if err == nil {
			err = ping(db)
		}
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in %s... (%d/%d)", retryDelay, i+1, cfg.DBAttempts)
		if i < cfg.DBAttempts-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, apperr.Connectivity(fmt.Sprintf("database unreachable after %d attempts", cfg.DBAttempts), err)
	}

	if cfg.DBDriver == "sqlite" {
		// one connection keeps an in-memory database alive and serializes writers
		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(1)
	}

	log.Printf("✅ Successfully connected to %s!", cfg.DBDriver)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := Seed(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return nil, err
	}
	return db, nil
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Ping reports whether the database still answers.
func Ping(db *gorm.DB) error {
	if err := ping(db); err != nil {
		return apperr.Connectivity("database unreachable", err)
	}
	return nil
}

// Migrate syncs every table with the models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return apperr.Persistence("failed to sync database schema", err)
	}
	log.Println("✅ Database Schema Synced!")
	return nil
}

var defaultCategories = []models.Category{
	{Name: "Comidas", Description: "Alimentos e refeições"},
	{Name: "Bebidas", Description: "Bebidas alcoólicas e não alcoólicas"},
	{Name: "Acessorios", Description: "Itens e acessórios diversos"},
	{Name: "Outros", Description: "Outros produtos"},
}

// Seed installs the default categories and, on an empty user table, the bootstrap admin.
func Seed(db *gorm.DB, adminUsername, adminPassword string) error {
	var categories int64
	if err := db.Model(&models.Category{}).Count(&categories).Error; err != nil {
		return apperr.Persistence("failed to count categories", err)
	}
	if categories == 0 {
		seed := append([]models.Category(nil), defaultCategories...)
		if err := db.Create(&seed).Error; err != nil {
			return apperr.Persistence("failed to seed categories", err)
		}
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return apperr.Persistence("failed to count users", err)
	}
	if users > 0 {
		return nil
	}
	if adminPassword == "" {
		log.Println("⚠️ WARNING: no users exist and ADMIN_PASSWORD is empty, skipping admin bootstrap")
		return nil
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return apperr.Persistence("failed to hash bootstrap password", err)
	}
	admin := models.User{
		Username:     adminUsername,
		Name:         "Administrador",
		Role:         "Gerente Geral",
		PasswordHash: hash,
		Tier:         models.TierAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return apperr.Persistence("failed to seed admin user", err)
	}
	log.Printf("🔑 Bootstrap admin %q created", adminUsername)
	return nil
}
