package services

import (
	"context"
	"strings"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/models"

	"gorm.io/gorm"
)

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// FindByPhone looks up the loyalty account the register shows at checkout.
func (s *CustomerService) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, apperr.Validation("phone is required")
	}
	var customer models.Customer
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&customer).Error; err != nil {
		return nil, lookupErr("customer not found", "failed to fetch customer", err)
	}
	return &customer, nil
}
