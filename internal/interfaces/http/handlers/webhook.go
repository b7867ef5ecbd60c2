// internal/interfaces/http/handlers/webhook.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// WebhookVerifier authenticates provider callbacks
type WebhookVerifier interface {
	VerifyWebhook(body []byte, signature string) error
}

// WebhookHandler receives payment provider callbacks
type WebhookHandler struct {
	verifier WebhookVerifier
	orders   *order.Service
	log      logrus.FieldLogger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(verifier WebhookVerifier, orders *order.Service, log logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, orders: orders, log: log}
}

// Billing handles POST /webhooks/billing. Unknown billings and other events
// are acknowledged so the provider stops retrying them.
func (h *WebhookHandler) Billing(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body", "code": "invalid_request"})
		return
	}

	if err := h.verifier.VerifyWebhook(body, c.GetHeader(payment.SignatureHeader)); err != nil {
		h.log.WithField("client_ip", c.ClientIP()).Warn("🚫 Billing webhook rejected: bad signature")
		respondError(c, h.log, err)
		return
	}

	event, err := payment.ParseWebhook(body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	log := h.log.WithFields(logrus.Fields{"event": event.Event, "billing_id": event.BillingID()})
	if !event.IsPaid() {
		log.Debug("Billing webhook ignored")
		respond(c, http.StatusOK, "Event ignored", nil)
		return
	}

	o, err := h.orders.MarkPaid(c.Request.Context(), event.BillingID())
	if errors.Is(err, apperr.ErrOrderNotFound) {
		log.Warn("Billing webhook for an unknown order")
		respond(c, http.StatusOK, "Unknown billing", nil)
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Payment recorded", gin.H{"order_id": o.ID, "status": o.Status})
}
