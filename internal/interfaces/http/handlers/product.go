// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// ProductHandler handles the public catalog endpoints
type ProductHandler struct {
	products *product.Service
	reviews  *review.Service
	log      logrus.FieldLogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service, reviews *review.Service, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{products: products, reviews: reviews, log: log}
}

// GetProducts handles GET /products[?search=]
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var (
		listings []*product.Listing
		err      error
	)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		listings, err = h.products.Search(c.Request.Context(), search)
	} else {
		listings, err = h.products.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Products retrieved successfully", listings)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	listing, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Product retrieved successfully", listing)
}

// GetComments handles GET /products/:id/comments
func (h *ProductHandler) GetComments(c *gin.Context) {
	reviews, err := h.reviews.ListByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Comments retrieved successfully", reviews)
}

// AddComment handles POST /products/:id/comments. Visitors without a session may comment.
func (h *ProductHandler) AddComment(c *gin.Context) {
	var req review.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.reviews.Add(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), req.Comment)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, "Comment added successfully", r)
}
