package handlers

import (
	"time"

	"keimadura-pos/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route onto a gin engine.
func NewRouter(h *Handler, allowOrigins []string) *gin.Engine {
	r := gin.Default()

	// --- The Bridge Configuration (React register) ---
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.Ping)
	r.POST("/login", h.Login)
	r.Static("/uploads", h.uploadDir)

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.GET("/ping", h.Ping)
	api.Use(middleware.AuthMiddleware(h.tokens))
	{
		// PUBLIC TO STAFF & ADMIN
		api.GET("/products", h.GetProducts)
		api.GET("/categories", h.GetCategories)

		api.POST("/stock/adjust", h.AdjustStock)
		api.GET("/stock/movements", h.GetStockMovements)

		api.POST("/sales", h.ProcessSale)
		api.GET("/sales", h.GetSales)
		api.GET("/sales/stats", h.GetSalesStats)
		api.GET("/customers/:phone", h.GetCustomerByPhone)

		api.POST("/cash-sessions/open", h.OpenCashSession)
		api.GET("/cash-sessions/current", h.GetCurrentCashSession)
		api.POST("/cash-sessions/:id/close", h.CloseCashSession)

		api.GET("/users/exists", h.UsernameExists)
		api.PUT("/profile", h.UpdateProfile)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/ask", h.AskAI)

			admin.POST("/upload", h.UploadImage)
			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.GET("/reports/valuation", h.GetStockValuation)

			admin.GET("/users", h.GetUsers)
			admin.POST("/users", h.AddUser)
			admin.PUT("/users/:id", h.UpdateUser)
			admin.DELETE("/users/:id", h.DeleteUser)
		}
	}

	// --- DEPLOYMENT: Serve the React register ---
	r.Static("/assets", "./web/assets")
	r.StaticFile("/vite.svg", "./web/vite.svg")

	// SPA Catch-All: a refresh on "/dashboard" serves index.html so React can route it.
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	return r
}
