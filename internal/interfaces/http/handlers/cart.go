// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	carts *cart.Service
	log   logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

// respondWithCart answers with the caller's freshly priced cart
func (h *CartHandler) respondWithCart(c *gin.Context, status int, message string) {
	view, err := h.carts.View(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, status, message, view)
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	h.respondWithCart(c, http.StatusOK, "Cart retrieved successfully")
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.carts.AddItem(c.Request.Context(), middleware.CallerFrom(c), req.ProductID, req.Quantity); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondWithCart(c, http.StatusOK, "Item added to cart successfully")
}

// UpdateItem handles PUT /cart/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req cart.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.carts.UpdateQuantity(c.Request.Context(), middleware.CallerFrom(c), c.Param("productId"), req.Quantity); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondWithCart(c, http.StatusOK, "Cart item updated successfully")
}

// RemoveItem handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	if err := h.carts.RemoveItem(c.Request.Context(), middleware.CallerFrom(c), c.Param("productId")); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondWithCart(c, http.StatusOK, "Item removed from cart successfully")
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), middleware.CallerFrom(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Cart cleared successfully", nil)
}
