package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Message is required")
		return
	}

	// 1. The assistant only exists when GEMINI_API_KEY is configured
	if h.assistant == nil {
		message(c, http.StatusServiceUnavailable, "Assistant is not configured")
		return
	}

	// 2. Run the AI Agent
	reply, err := h.assistant.Ask(c.Request.Context(), req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. Return the Answer
	ok(c, http.StatusOK, gin.H{"reply": reply})
}
