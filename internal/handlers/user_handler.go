package handlers

import (
	"net/http"

	"keimadura-pos/internal/middleware"
	"keimadura-pos/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetUsers(c *gin.Context) {
	users, err := h.svc.Users.List(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, users)
}

// --- GET: /api/users/exists?username=... ---
func (h *Handler) UsernameExists(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		message(c, http.StatusBadRequest, "username is required")
		return
	}
	exists, err := h.svc.Users.UsernameExists(c.Request.Context(), username)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"exists": exists})
}

type UserRequest struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Color    string `json:"color"`
	Password string `json:"password" binding:"required"`
	Tier     string `json:"tier" binding:"omitempty,oneof=admin staff"`
}

func (h *Handler) AddUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badInput(c, err)
		return
	}
	user, err := h.svc.Users.Add(c.Request.Context(), middleware.CurrentIdentity(c), services.NewUser{
		Username: req.Username,
		Name:     req.Name,
		Role:     req.Role,
		Email:    req.Email,
		Phone:    req.Phone,
		Color:    req.Color,
		Password: req.Password,
		Tier:     req.Tier,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, user)
}

type UserUpdateRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Color    *string `json:"color"`
	Password *string `json:"password"`
	Tier     *string `json:"tier"`
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badInput(c, err)
		return
	}
	user, err := h.svc.Users.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, services.UserPatch{
		Name:     req.Name,
		Role:     req.Role,
		Email:    req.Email,
		Phone:    req.Phone,
		Color:    req.Color,
		Password: req.Password,
		Tier:     req.Tier,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Users.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id})
}

type ProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Color           *string `json:"color"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     *string `json:"new_password"`
}

// --- PUT: The caller edits their own account ---
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badInput(c, err)
		return
	}
	user, err := h.svc.Users.UpdateProfile(c.Request.Context(), middleware.CurrentIdentity(c), services.ProfilePatch{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Color:           req.Color,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}
