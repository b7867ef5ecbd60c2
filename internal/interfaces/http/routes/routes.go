// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// Handlers groups every handler mounted under /api/v1
type Handlers struct {
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Seller   *handlers.SellerHandler
	Cart     *handlers.CartHandler
	Orders   *handlers.OrderHandler
	Webhooks *handlers.WebhookHandler
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)

		protected := auth.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.GET("/me", h.Me)
		}
	}
}

// SetupProductRoutes sets up the public catalog and comment routes
func SetupProductRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.GET("", h.GetProducts)
		products.GET("/:id", h.GetProduct)
		products.GET("/:id/comments", h.GetComments)
		products.POST("/:id/comments", h.AddComment)
	}
}

// SetupSellerRoutes sets up catalog management routes
func SetupSellerRoutes(rg *gin.RouterGroup, h *handlers.SellerHandler) {
	seller := rg.Group("/seller/products")
	seller.Use(middleware.RequireSeller())
	{
		seller.GET("", h.ListProducts)
		seller.POST("", h.CreateProduct)
		seller.PUT("/:id", h.UpdateProduct)
		seller.DELETE("/:id", h.DeleteProduct)
		seller.PUT("/:id/promotion", h.SetPromotion)
		seller.DELETE("/:id/promotion", h.ClearPromotion)
	}
}

// SetupCartRoutes sets up cart routes
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler) {
	cart := rg.Group("/cart")
	cart.Use(middleware.RequireAuth())
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:productId", h.UpdateItem)
		cart.DELETE("/items/:productId", h.RemoveItem)
	}
}

// SetupOrderRoutes sets up checkout and order routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler) {
	authed := rg.Group("")
	authed.Use(middleware.RequireAuth())
	{
		authed.POST("/checkout", h.Checkout)
		authed.GET("/orders", h.GetOrders)
		authed.GET("/orders/:id", h.GetOrder)
		authed.GET("/orders/:id/receipt", h.DownloadReceipt)
	}
}

// SetupWebhookRoutes sets up provider callbacks. They carry no session.
func SetupWebhookRoutes(rg *gin.RouterGroup, h *handlers.WebhookHandler) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/billing", h.Billing)
	}
}

// SetupRoutes mounts every route group
func SetupRoutes(rg *gin.RouterGroup, h Handlers) {
	SetupAuthRoutes(rg, h.Auth)
	SetupProductRoutes(rg, h.Products)
	SetupSellerRoutes(rg, h.Seller)
	SetupCartRoutes(rg, h.Cart)
	SetupOrderRoutes(rg, h.Orders)
	SetupWebhookRoutes(rg, h.Webhooks)
}
