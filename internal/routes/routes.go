package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ocaso/ocaso-api/internal/auth"
	"github.com/ocaso/ocaso-api/internal/handlers"
	"github.com/ocaso/ocaso-api/internal/middleware"
)

// Deps holds what the router needs besides the handlers.
type Deps struct {
	Tokens     *auth.TokenService
	Limiter    middleware.Limiter
	CORSOrigin string
	Logger     *slog.Logger
}

// CORSMiddleware tells the browser that origin may call the API.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Only the configured frontend.
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)

		// 2. Credentials.
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		// 3. Headers we actually use ("Authorization" for JWT tokens).
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")

		// 4. Methods.
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// 5. Preflight.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))

	// --- APPLY THE CORS GUARD ---
	router.Use(CORSMiddleware(deps.CORSOrigin))

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", h.Ping)

		// --- Public Category Routes ---
		v1.GET("/categories", h.GetCategoryTree)
		v1.GET("/categories/:slug", h.GetCategoryBySlug)
		v1.GET("/categories/:slug/:sub", h.GetSubcategoryBySlug)

		// --- Public Search & Listing Routes ---
		v1.GET("/search", middleware.RateLimit(deps.Limiter, "search"), h.SearchListings)
		v1.GET("/listings/:id", h.GetListing)
		v1.GET("/listings/:id/bids", h.GetBidSummary)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(deps.Tokens))
		{
			auth.POST("/listings", h.CreateListing)
			auth.PATCH("/listings/:id/status", h.SetListingStatus)
			auth.POST("/listings/:id/sold", h.MarkListingSold)
			auth.POST("/listings/:id/bids", middleware.RateLimit(deps.Limiter, "bid"), h.PlaceBid)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(deps.Tokens))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/categories", h.GetAdminCategoryTree)
			admin.POST("/categories", h.CreateCategory)
			admin.POST("/categories/:id/subcategories", h.CreateSubcategory)
			admin.PATCH("/categories/:id/active", h.SetCategoryActive)
			admin.PATCH("/categories/:id/order", h.ReorderCategory)
			admin.PATCH("/subcategories/:id/active", h.SetSubcategoryActive)
			admin.PATCH("/subcategories/:id/order", h.ReorderSubcategory)

			admin.POST("/categories/import", h.ImportCategories)
			admin.POST("/categories/validate", h.ValidateCategories)
		}
	}

	return router
}
