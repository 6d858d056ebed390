package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/models"

	"github.com/gin-gonic/gin"
)

func newRouter(tokens *auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", AuthMiddleware(tokens))
	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": CurrentIdentity(c).Username})
	})
	api.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	r := newRouter(tokens)

	staff, _ := tokens.GenerateToken(auth.Identity{UserID: 2, Username: "keimaduracaixa", Tier: models.TierStaff})
	admin, _ := tokens.GenerateToken(auth.Identity{UserID: 1, Username: "Keimadura", Tier: models.TierAdmin})
	forged, _ := auth.NewTokenManager("other-secret", time.Hour).GenerateToken(auth.Identity{UserID: 1, Tier: models.TierAdmin})

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/api/me", "", http.StatusUnauthorized},
		{"no bearer prefix", "/api/me", staff, http.StatusUnauthorized},
		{"forged token", "/api/me", "Bearer " + forged, http.StatusUnauthorized},
		{"staff", "/api/me", "Bearer " + staff, http.StatusOK},
		{"staff on admin route", "/api/admin", "Bearer " + staff, http.StatusForbidden},
		{"admin on admin route", "/api/admin", "Bearer " + admin, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestCurrentIdentityWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if CurrentIdentity(c).IsAuthenticated() {
		t.Error("empty context should carry no identity")
	}
}
