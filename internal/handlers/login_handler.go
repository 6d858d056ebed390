package handlers

import (
	"net/http"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badInput(c, err)
		return
	}

	// 2. Check the credentials (bcrypt) and stamp the last access
	user, err := h.svc.Users.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. Generate JWT Token
	token, err := h.tokens.GenerateToken(auth.IdentityOf(user))
	if err != nil {
		h.fail(c, apperr.Persistence("failed to generate token", err))
		return
	}

	// 4. Success! Return Token and the account (the hash never leaves the server)
	ok(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}
