// Package services holds the POS operations. Every operation receives its storage handle
// by injection and, where it matters, the caller's auth.Identity.
package services

import (
	"errors"
	"time"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Clock returns the current wall-clock time in the shop's time zone.
type Clock func() time.Time

// SystemClock reads time.Now in loc.
func SystemClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// Services groups every service sharing one database and clock.
type Services struct {
	Catalog   *CatalogService
	Stock     *StockService
	Sales     *SalesService
	Sessions  *CashSessionService
	Users     *UserService
	Customers *CustomerService
	Reports   *ReportService
}

func New(db *gorm.DB, now Clock) *Services {
	return &Services{
		Catalog:   NewCatalogService(db, now),
		Stock:     NewStockService(db, now),
		Sales:     NewSalesService(db, now),
		Sessions:  NewCashSessionService(db, now),
		Users:     NewUserService(db, now),
		Customers: NewCustomerService(db),
		Reports:   NewReportService(db, now),
	}
}

// forUpdate locks the selected rows until the surrounding transaction ends.
var forUpdate = clause.Locking{Strength: "UPDATE"}

func requireAuthenticated(actor auth.Identity) error {
	if !actor.IsAuthenticated() {
		return apperr.PermissionDenied("authentication required")
	}
	return nil
}

func requireAdmin(actor auth.Identity) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperr.PermissionDenied("admin permission required")
	}
	return nil
}

// storageErr keeps application errors as they are and wraps anything else as a persistence failure.
func storageErr(msg string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Persistence(msg, err)
}

// lookupErr turns a missing row into NotFound.
func lookupErr(notFoundMsg, failMsg string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return storageErr(failMsg, err)
}
