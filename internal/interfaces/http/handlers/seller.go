// internal/interfaces/http/handlers/seller.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// SellerHandler handles catalog management for sellers
type SellerHandler struct {
	products *product.Service
	log      logrus.FieldLogger
}

// NewSellerHandler creates a new seller handler
func NewSellerHandler(products *product.Service, log logrus.FieldLogger) *SellerHandler {
	return &SellerHandler{products: products, log: log}
}

// ListProducts handles GET /seller/products[?search=]
func (h *SellerHandler) ListProducts(c *gin.Context) {
	listings, err := h.products.ListMine(c.Request.Context(), middleware.CallerFrom(c), c.Query("search"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Products retrieved successfully", listings)
}

// CreateProduct handles POST /seller/products
func (h *SellerHandler) CreateProduct(c *gin.Context) {
	var req product.ProductCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	listing, err := h.products.Create(c.Request.Context(), middleware.CallerFrom(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, "Product created successfully", listing)
}

// UpdateProduct handles PUT /seller/products/:id
func (h *SellerHandler) UpdateProduct(c *gin.Context) {
	var req product.ProductUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	listing, err := h.products.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Product updated successfully", listing)
}

// DeleteProduct handles DELETE /seller/products/:id
func (h *SellerHandler) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Product deleted successfully", nil)
}

// SetPromotion handles PUT /seller/products/:id/promotion
func (h *SellerHandler) SetPromotion(c *gin.Context) {
	var req product.PromotionRequest
	if !bindJSON(c, &req) {
		return
	}

	listing, err := h.products.SetPromotion(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Promotion saved successfully", listing)
}

// ClearPromotion handles DELETE /seller/products/:id/promotion
func (h *SellerHandler) ClearPromotion(c *gin.Context) {
	listing, err := h.products.ClearPromotion(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Promotion removed successfully", listing)
}
