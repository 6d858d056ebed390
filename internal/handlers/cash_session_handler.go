package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"keimadura-pos/internal/middleware"

	"github.com/gin-gonic/gin"
)

// --- POST: Open (or resume) the caller's cash session ---
func (h *Handler) OpenCashSession(c *gin.Context) {
	session, err := h.svc.Sessions.Open(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, session)
}

func (h *Handler) GetCurrentCashSession(c *gin.Context) {
	session, err := h.svc.Sessions.Current(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, session)
}

// --- POST: Close a session ---
// The body is optional: {"notes": "...", "declared_amount": 15250.50}
func (h *Handler) CloseCashSession(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}

	extra := map[string]any{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&extra); err != nil && !errors.Is(err, io.EOF) {
		h.badInput(c, err)
		return
	}

	session, err := h.svc.Sessions.Close(c.Request.Context(), middleware.CurrentIdentity(c), id, extra)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, session)
}
