package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/config"
	"keimadura-pos/internal/middleware"
	"keimadura-pos/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Assistant answers free-text questions about the shop.
type Assistant interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Handler carries everything the HTTP layer needs. Nothing is read from globals.
type Handler struct {
	svc       *services.Services
	tokens    *auth.TokenManager
	db        *gorm.DB
	assistant Assistant // nil when GEMINI_API_KEY is not set
	debug     bool
	baseURL   string
	uploadDir string
}

func New(cfg *config.Config, db *gorm.DB, svc *services.Services, tokens *auth.TokenManager, assistant Assistant) *Handler {
	return &Handler{
		svc:       svc,
		tokens:    tokens,
		db:        db,
		assistant: assistant,
		debug:     cfg.Debug,
		baseURL:   cfg.BaseURL,
		uploadDir: "./uploads",
	}
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}

// fail maps an application error onto its status. A permission failure without
// a caller identity is reported as 401.
func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if kind == apperr.KindPermissionDenied && !middleware.CurrentIdentity(c).IsAuthenticated() {
		status = http.StatusUnauthorized
	}
	if status >= http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	message(c, status, apperr.PublicMessage(err, h.debug))
}

// badInput reports a body that could not be bound.
func (h *Handler) badInput(c *gin.Context, err error) {
	msg := "Invalid input"
	if h.debug {
		msg += ": " + err.Error()
	}
	message(c, http.StatusBadRequest, msg)
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return uint(id), nil
}
