package auth

import "keimadura-pos/internal/models"

// Identity is the authenticated caller passed explicitly to every operation that needs it.
type Identity struct {
	UserID   uint
	Username string
	Tier     string
}

func (i Identity) IsAuthenticated() bool { return i.UserID != 0 }

func (i Identity) IsAdmin() bool { return i.IsAuthenticated() && i.Tier == models.TierAdmin }

// IdentityOf builds the identity for a stored user.
func IdentityOf(u *models.User) Identity {
	return Identity{UserID: u.ID, Username: u.Username, Tier: u.Tier}
}
