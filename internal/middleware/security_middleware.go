package middleware

import (
	"net/http"
	"strings"

	"keimadura-pos/internal/auth"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

func deny(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get the token from the "Authorization" header
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			deny(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		// 2. Remove the "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			deny(c, http.StatusUnauthorized, "Authorization header must start with Bearer")
			return
		}

		// 3. Validate the token
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			deny(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// 4. Store the caller for the handlers (and the AI Agent) to pass on
		c.Set(identityKey, claims.Identity())
		c.Next()
	}
}

// CurrentIdentity returns the caller stored by AuthMiddleware, or the zero identity.
func CurrentIdentity(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Identity{}
}

// RequireAdmin is a secondary guard for the management routes
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if !id.IsAuthenticated() {
			deny(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !id.IsAdmin() {
			deny(c, http.StatusForbidden, "You do not have permission to access this resource")
			return
		}
		c.Next()
	}
}
