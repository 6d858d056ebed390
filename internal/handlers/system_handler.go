package handlers

import (
	"net/http"

	"keimadura-pos/internal/database"

	"github.com/gin-gonic/gin"
)

// Ping reports whether the service and its database answer. The register polls it
// to tell "server down" apart from "bad request".
func (h *Handler) Ping(c *gin.Context) {
	if err := database.Ping(h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "database unreachable",
			"data":    gin.H{"status": "degraded", "database": false},
		})
		return
	}
	ok(c, http.StatusOK, gin.H{"status": "online", "database": true})
}
