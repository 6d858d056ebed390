package services

import (
	"context"
	"testing"
	"time"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/models"
)

func TestAuthenticate(t *testing.T) {
	svc, db, clock := newTestServices(t)
	ctx := context.Background()
	createUser(t, db, "keimaduracaixa", models.TierStaff)

	user, err := svc.Users.Authenticate(ctx, " keimaduracaixa ", "keimaduracaixa-pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.LastAccessAt == nil || !user.LastAccessAt.Equal(clock.Now()) {
		t.Errorf("LastAccessAt = %v", user.LastAccessAt)
	}
	stored, _ := svc.Users.Get(ctx, user.ID)
	if stored.LastAccessAt == nil {
		t.Error("last access not stored")
	}

	for _, creds := range [][2]string{{"keimaduracaixa", "wrong"}, {"nobody", "keimaduracaixa-pw"}} {
		if _, err := svc.Users.Authenticate(ctx, creds[0], creds[1]); !apperr.Is(err, apperr.KindPermissionDenied) {
			t.Errorf("Authenticate(%q, %q): err = %v", creds[0], creds[1], err)
		}
	}
}

func TestAddUser(t *testing.T) {
	svc, db, _ := newTestServices(t)
	ctx := context.Background()
	admin := createUser(t, db, "Keimadura", models.TierAdmin)
	staff := createUser(t, db, "keimaduracaixa", models.TierStaff)

	user, err := svc.Users.Add(ctx, admin, NewUser{Username: "keimaduracozinha", Name: "Cozinha", Role: "Cozinheiro", Password: "s3nha"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if user.Tier != models.TierStaff || user.Color != "#0499e2" || user.PasswordHash == "s3nha" {
		t.Errorf("user = %+v", user)
	}
	if _, err := svc.Users.Authenticate(ctx, "keimaduracozinha", "s3nha"); err != nil {
		t.Errorf("new user cannot log in: %v", err)
	}

	cases := map[string]struct {
		actor auth.Identity
		in    NewUser
		kind  apperr.Kind
	}{
		"duplicate":    {admin, NewUser{Username: "keimaduracozinha", Name: "X", Password: "p"}, apperr.KindValidation},
		"no password":  {admin, NewUser{Username: "novo", Name: "X"}, apperr.KindValidation},
		"bad tier":     {admin, NewUser{Username: "novo", Name: "X", Password: "p", Tier: "owner"}, apperr.KindValidation},
		"staff caller": {staff, NewUser{Username: "novo", Name: "X", Password: "p"}, apperr.KindPermissionDenied},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Users.Add(ctx, tc.actor, tc.in); apperr.KindOf(err) != tc.kind {
				t.Fatalf("err = %v, want %v", err, tc.kind)
			}
		})
	}

	exists, err := svc.Users.UsernameExists(ctx, "keimaduracozinha")
	if err != nil || !exists {
		t.Errorf("UsernameExists = %v, %v", exists, err)
	}
}

func TestDeletedUsernameStaysReserved(t *testing.T) {
	svc, db, _ := newTestServices(t)
	ctx := context.Background()
	admin := createUser(t, db, "Keimadura", models.TierAdmin)
	staff := createUser(t, db, "keimaduracaixa", models.TierStaff)

	if err := svc.Users.Delete(ctx, admin, staff.UserID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Users.Get(ctx, staff.UserID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Get deleted: err = %v", err)
	}
	if _, err := svc.Users.Authenticate(ctx, "keimaduracaixa", "keimaduracaixa-pw"); !apperr.Is(err, apperr.KindPermissionDenied) {
		t.Errorf("deleted user logged in: err = %v", err)
	}
	if exists, _ := svc.Users.UsernameExists(ctx, "keimaduracaixa"); !exists {
		t.Error("deleted username should stay reserved")
	}
	if _, err := svc.Users.Add(ctx, admin, NewUser{Username: "keimaduracaixa", Name: "X", Password: "p"}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("reuse of deleted username: err = %v", err)
	}
}

func TestAdminSafeguards(t *testing.T) {
	svc, db, _ := newTestServices(t)
	ctx := context.Background()
	owner := createUser(t, db, "Keimadura", models.TierAdmin)
	manager := createUser(t, db, "keimaduragerente", models.TierAdmin)

	if err := svc.Users.Delete(ctx, owner, owner.UserID); !apperr.Is(err, apperr.KindPermissionDenied) {
		t.Errorf("self delete: err = %v", err)
	}

	if err := svc.Users.Delete(ctx, owner, manager.UserID); err != nil {
		t.Fatalf("deleting one of two admins: %v", err)
	}

	// The manager's token still carries the admin tier; the account behind it is gone,
	// and the owner is now the only admin.
	if err := svc.Users.Delete(ctx, manager, owner.UserID); !apperr.Is(err, apperr.KindPermissionDenied) {
		t.Errorf("deleting the last admin: err = %v", err)
	}
	if _, err := svc.Users.Update(ctx, owner, owner.UserID, UserPatch{Tier: strPtr(models.TierStaff)}); !apperr.Is(err, apperr.KindPermissionDenied) {
		t.Errorf("demoting the last admin: err = %v", err)
	}
	if _, err := svc.Users.Get(ctx, owner.UserID); err != nil {
		t.Errorf("owner should still exist: %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	svc, db, _ := newTestServices(t)
	ctx := context.Background()
	admin := createUser(t, db, "Keimadura", models.TierAdmin)
	staff := createUser(t, db, "keimaduracaixa", models.TierStaff)

	updated, err := svc.Users.Update(ctx, admin, staff.UserID, UserPatch{
		Name: strPtr("Caixa Principal"), Tier: strPtr(models.TierAdmin), Password: strPtr("nova"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Caixa Principal" || updated.Tier != models.TierAdmin {
		t.Errorf("updated = %+v", updated)
	}
	if _, err := svc.Users.Authenticate(ctx, "keimaduracaixa", "nova"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	// Two admins now, so demoting one is fine.
	if _, err := svc.Users.Update(ctx, admin, staff.UserID, UserPatch{Tier: strPtr(models.TierStaff)}); err != nil {
		t.Errorf("demote with another admin left: %v", err)
	}
	if _, err := svc.Users.Update(ctx, admin, 999, UserPatch{Name: strPtr("X")}); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing user: err = %v", err)
	}
	if _, err := svc.Users.Update(ctx, staff, admin.UserID, UserPatch{Name: strPtr("X")}); !apperr.Is(err, apperr.KindPermissionDenied) {
		t.Errorf("staff caller: err = %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, db, clock := newTestServices(t)
	ctx := context.Background()
	me := createUser(t, db, "keimaduracaixa", models.TierStaff)
	clock.Advance(time.Minute)

	user, err := svc.Users.UpdateProfile(ctx, me, ProfilePatch{Name: strPtr("Joana"), Color: strPtr("#ff0000")})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.Name != "Joana" || user.Color != "#ff0000" || user.Tier != models.TierStaff {
		t.Errorf("profile = %+v", user)
	}

	if _, err := svc.Users.UpdateProfile(ctx, me, ProfilePatch{CurrentPassword: "wrong", NewPassword: strPtr("x")}); !apperr.Is(err, apperr.KindPermissionDenied) {
		t.Errorf("wrong current password: err = %v", err)
	}
	if _, err := svc.Users.UpdateProfile(ctx, me, ProfilePatch{CurrentPassword: "keimaduracaixa-pw", NewPassword: strPtr("nova")}); err != nil {
		t.Fatalf("password change: %v", err)
	}
	if _, err := svc.Users.Authenticate(ctx, "keimaduracaixa", "nova"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestListUsersRequiresAdmin(t *testing.T) {
	svc, db, _ := newTestServices(t)
	ctx := context.Background()
	admin := createUser(t, db, "Keimadura", models.TierAdmin)
	staff := createUser(t, db, "keimaduracaixa", models.TierStaff)

	users, err := svc.Users.List(ctx, admin)
	if err != nil || len(users) != 2 {
		t.Fatalf("List = %d users, %v", len(users), err)
	}
	if users[0].Username != "Keimadura" {
		t.Errorf("users not ordered by name: %s first", users[0].Username)
	}
	if _, err := svc.Users.List(ctx, staff); !apperr.Is(err, apperr.KindPermissionDenied) {
		t.Errorf("staff List: err = %v", err)
	}
}
