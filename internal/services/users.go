package services

import (
	"context"
	"errors"
	"strings"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/models"

	"gorm.io/gorm"
)

type UserService struct {
	db  *gorm.DB
	now Clock
}

func NewUserService(db *gorm.DB, now Clock) *UserService {
	return &UserService{db: db, now: now}
}

var errBadCredentials = apperr.PermissionDenied("invalid username or password")

// Authenticate checks the credentials and stamps the last access time.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, apperr.Persistence("failed to load user", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errBadCredentials
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_access_at", now).Error; err != nil {
		return nil, apperr.Persistence("failed to record access", err)
	}
	user.LastAccessAt = &now
	return &user, nil
}

// List returns every staff member, ordered by name.
func (s *UserService) List(ctx context.Context, actor auth.Identity) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("name asc").Find(&users).Error; err != nil {
		return nil, apperr.Persistence("failed to fetch users", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupErr("user not found", "failed to fetch user", err)
	}
	return &user, nil
}

// UsernameExists also sees deleted accounts, whose usernames stay reserved.
func (s *UserService) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Count(&count).Error
	if err != nil {
		return false, apperr.Persistence("failed to check username", err)
	}
	return count > 0, nil
}

type NewUser struct {
	Username string
	Name     string
	Role     string
	Email    string
	Phone    string
	Color    string
	Password string
	Tier     string
}

func validTier(tier string) bool {
	return tier == models.TierAdmin || tier == models.TierStaff
}

func (s *UserService) Add(ctx context.Context, actor auth.Identity, in NewUser) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if in.Tier == "" {
		in.Tier = models.TierStaff
	}
	switch {
	case in.Username == "":
		return nil, apperr.Validation("username is required")
	case in.Name == "":
		return nil, apperr.Validation("name is required")
	case in.Password == "":
		return nil, apperr.Validation("password is required")
	case !validTier(in.Tier):
		return nil, apperr.Validation("tier must be admin or staff")
	}

	exists, err := s.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Validation("username already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Persistence("failed to hash password", err)
	}
	user := models.User{
		Username:     in.Username,
		Name:         in.Name,
		Role:         in.Role,
		Email:        in.Email,
		Phone:        in.Phone,
		Color:        in.Color,
		PasswordHash: hash,
		Tier:         in.Tier,
	}
	if user.Color == "" {
		user.Color = "#0499e2"
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperr.Persistence("failed to create user", err)
	}
	return &user, nil
}

// UserPatch changes only the fields that are set.
type UserPatch struct {
	Name     *string
	Role     *string
	Email    *string
	Phone    *string
	Color    *string
	Password *string
	Tier     *string
}

func (p UserPatch) updates() (map[string]any, error) {
	updates := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		updates["name"] = name
	}
	if p.Role != nil {
		updates["role"] = *p.Role
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.Color != nil {
		updates["color"] = *p.Color
	}
	if p.Password != nil {
		if *p.Password == "" {
			return nil, apperr.Validation("password cannot be empty")
		}
		hash, err := auth.HashPassword(*p.Password)
		if err != nil {
			return nil, apperr.Persistence("failed to hash password", err)
		}
		updates["password_hash"] = hash
	}
	if p.Tier != nil {
		if !validTier(*p.Tier) {
			return nil, apperr.Validation("tier must be admin or staff")
		}
		updates["tier"] = *p.Tier
	}
	return updates, nil
}

// Update edits another account. Demoting the last admin is refused.
func (s *UserService) Update(ctx context.Context, actor auth.Identity, id uint, patch UserPatch) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	updates, err := patch.updates()
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&user, id).Error; err != nil {
			return lookupErr("user not found", "failed to load user", err)
		}
		if user.IsAdmin() && patch.Tier != nil && *patch.Tier != models.TierAdmin {
			if err := ensureAnotherAdmin(tx); err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, storageErr("failed to update user", err)
	}
	return &user, nil
}

// Delete removes a staff account. Nobody deletes themselves, and the last admin stays.
func (s *UserService) Delete(ctx context.Context, actor auth.Identity, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.UserID == id {
		return apperr.PermissionDenied("you cannot delete your own account")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(forUpdate).First(&user, id).Error; err != nil {
			return lookupErr("user not found", "failed to load user", err)
		}
		if user.IsAdmin() {
			if err := ensureAnotherAdmin(tx); err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return storageErr("failed to delete user", err)
	}
	return nil
}

// ensureAnotherAdmin locks the admin rows and refuses when only one is left.
func ensureAnotherAdmin(tx *gorm.DB) error {
	var admins []models.User
	if err := tx.Clauses(forUpdate).Where("tier = ?", models.TierAdmin).Find(&admins).Error; err != nil {
		return err
	}
	if len(admins) <= 1 {
		return apperr.PermissionDenied("at least one admin must remain")
	}
	return nil
}

// ProfilePatch is what a user may change on their own account.
type ProfilePatch struct {
	Name            *string
	Email           *string
	Phone           *string
	Color           *string
	CurrentPassword string
	NewPassword     *string
}

// UpdateProfile edits the caller's own account. A new password needs the current one.
func (s *UserService) UpdateProfile(ctx context.Context, actor auth.Identity, patch ProfilePatch) (*models.User, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	user, err := s.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if patch.NewPassword != nil && !auth.CheckPassword(user.PasswordHash, patch.CurrentPassword) {
		return nil, apperr.PermissionDenied("current password is incorrect")
	}

	updates, err := UserPatch{
		Name:     patch.Name,
		Email:    patch.Email,
		Phone:    patch.Phone,
		Color:    patch.Color,
		Password: patch.NewPassword,
	}.updates()
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperr.Persistence("failed to update profile", err)
	}
	return s.Get(ctx, actor.UserID)
}
