package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/models"
	"keimadura-pos/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashSessionService struct {
	db  *gorm.DB
	now Clock
}

func NewCashSessionService(db *gorm.DB, now Clock) *CashSessionService {
	return &CashSessionService{db: db, now: now}
}

// Open returns the operator's open session, creating one when there is none.
// The operator row is locked first so two registers can't both open a session.
func (s *CashSessionService) Open(ctx context.Context, operator auth.Identity) (*models.CashSession, error) {
	if err := requireAuthenticated(operator); err != nil {
		return nil, err
	}

	var session models.CashSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(forUpdate).First(&user, operator.UserID).Error; err != nil {
			return lookupErr("operator not found", "failed to load operator", err)
		}

		err := tx.Where("operator_id = ? AND status = ?", user.ID, models.SessionOpen).First(&session).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := s.now()
		session = models.CashSession{
			OperatorID:     user.ID,
			StartedAt:      now,
			SaleIDs:        []uint{},
			TotalSales:     decimal.Zero,
			Status:         models.SessionOpen,
			Duration:       utils.FormatDuration(0),
			LastActivityAt: now,
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, storageErr("failed to open cash session", err)
	}
	return &session, nil
}

// Current returns the operator's open session.
func (s *CashSessionService) Current(ctx context.Context, operator auth.Identity) (*models.CashSession, error) {
	if err := requireAuthenticated(operator); err != nil {
		return nil, err
	}
	var session models.CashSession
	err := s.db.WithContext(ctx).
		Where("operator_id = ? AND status = ?", operator.UserID, models.SessionOpen).
		First(&session).Error
	if err != nil {
		return nil, lookupErr("no open cash session", "failed to fetch cash session", err)
	}
	return &session, nil
}

func (s *CashSessionService) Get(ctx context.Context, id uint) (*models.CashSession, error) {
	var session models.CashSession
	if err := s.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, lookupErr("cash session not found", "failed to fetch cash session", err)
	}
	return &session, nil
}

// closingColumns are the fields a caller may supply when closing, and how to read them.
var closingColumns = map[string]func(any) (any, error){
	"notes":           asString,
	"duration":        asString,
	"declared_amount": asDecimal,
	"total_sales":     asDecimal,
	"duration_ms":     asInt64,
}

// Close ends the session now. The elapsed time is computed here and nowhere else;
// caller-supplied closing fields are applied on top and win on collision.
func (s *CashSessionService) Close(ctx context.Context, actor auth.Identity, id uint, extra map[string]any) (*models.CashSession, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}

	overrides := make(map[string]any, len(extra))
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		convert, ok := closingColumns[key]
		if !ok {
			return nil, apperr.Validation(fmt.Sprintf("field %q cannot be set when closing a session", key))
		}
		v, err := convert(extra[key])
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("field %q: %v", key, err))
		}
		overrides[key] = v
	}

	var closed models.CashSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.CashSession
		if err := tx.Clauses(forUpdate).First(&session, id).Error; err != nil {
			return lookupErr("cash session not found", "failed to load cash session", err)
		}
		if session.OperatorID != actor.UserID && !actor.IsAdmin() {
			return apperr.PermissionDenied("only the operator or an admin can close this session")
		}
		if session.Status == models.SessionClosed {
			return apperr.Validation("cash session is already closed")
		}

		now := s.now()
		elapsed := now.Sub(session.StartedAt).Truncate(time.Second)
		updates := map[string]any{
			"ended_at":         now,
			"status":           models.SessionClosed,
			"duration":         utils.FormatDuration(elapsed),
			"duration_ms":      elapsed.Milliseconds(),
			"last_activity_at": now,
		}
		for key, v := range overrides {
			updates[key] = v
		}

		if err := tx.Model(&session).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&closed, session.ID).Error
	})
	if err != nil {
		return nil, storageErr("failed to close cash session", err)
	}
	return &closed, nil
}

func asString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.New("must be a string")
	}
	return s, nil
}

func asDecimal(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(n)
	case decimal.Decimal:
		return n, nil
	}
	return nil, errors.New("must be a number")
}

func asInt64(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		return n.Int64()
	}
	return nil, errors.New("must be an integer")
}
