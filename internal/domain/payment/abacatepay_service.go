// internal/domain/payment/abacatepay_service.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// SignatureHeader carries the webhook signature
const SignatureHeader = "X-Webhook-Signature"

// EventBillingPaid is the only webhook event acted upon
const EventBillingPaid = "billing.paid"

var (
	ErrBillingUnavailable = apperr.New(apperr.KindBillingUnavailable, "payment provider is unavailable, try again later")
	ErrInvalidSignature   = apperr.New(apperr.KindNotAuthenticated, "invalid webhook signature").WithCode("invalid_signature")
)

// AbacatePayService creates one-time billings on AbacatePay
type AbacatePayService struct {
	apiKey        string
	baseURL       string
	webhookSecret string
	returnURL     string
	completionURL string
	methods       []string
	httpClient    *http.Client
	log           logrus.FieldLogger
}

// NewAbacatePayService creates a new AbacatePay service
func NewAbacatePayService(cfg *config.Config, log logrus.FieldLogger) *AbacatePayService {
	return &AbacatePayService{
		apiKey:        cfg.Billing.APIKey,
		baseURL:       strings.TrimRight(cfg.Billing.BaseURL, "/"),
		webhookSecret: cfg.Billing.WebhookSecret,
		returnURL:     cfg.Billing.ReturnURL,
		completionURL: cfg.Billing.CompletionURL,
		methods:       cfg.Billing.Methods,
		httpClient: &http.Client{
			Timeout: cfg.Billing.Timeout,
		},
		log: log,
	}
}

// CreateBilling registers a payable billing and returns its id and checkout URL
func (s *AbacatePayService) CreateBilling(ctx context.Context, req *BillingRequest) (*Billing, error) {
	if len(req.Products) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "billing needs at least one product")
	}

	payload := createBillingRequest{
		Frequency:     "ONE_TIME",
		Methods:       s.methods,
		Products:      req.Products,
		ReturnURL:     s.returnURL,
		CompletionURL: s.completionURL,
		Customer:      req.Customer,
	}

	body, err := s.makeAPICall(ctx, http.MethodPost, "/billing/create", payload)
	if err != nil {
		return nil, err
	}

	var resp createBillingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Wrap(apperr.KindBillingUnavailable, err, "failed to parse billing response")
	}
	if resp.Error != nil {
		return nil, apperr.Wrap(apperr.KindBillingUnavailable, fmt.Errorf("%v", resp.Error), "payment provider rejected the billing")
	}
	if resp.Data.ID == "" || resp.Data.URL == "" {
		return nil, apperr.Wrap(apperr.KindBillingUnavailable, fmt.Errorf("empty billing in response"), "payment provider returned no billing")
	}

	s.log.WithFields(logrus.Fields{"billing_id": resp.Data.ID, "amount": resp.Data.Amount}).Info("billing created")

	return &Billing{ID: resp.Data.ID, URL: resp.Data.URL, Amount: resp.Data.Amount}, nil
}

// makeAPICall makes HTTP calls to the AbacatePay API
func (s *AbacatePayService) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	if s.apiKey == "" {
		return nil, ErrBillingUnavailable.WithMessage("payment provider is not configured")
	}

	var reqBody []byte
	if data != nil {
		var err error
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, err, "failed to marshal request data")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBillingUnavailable, err, ErrBillingUnavailable.Message)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBillingUnavailable, err, "failed to read billing response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		s.log.WithFields(logrus.Fields{"status": resp.StatusCode, "endpoint": endpoint}).Warn("payment provider returned an error")
		return nil, apperr.Wrap(apperr.KindBillingUnavailable,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
			ErrBillingUnavailable.Message)
	}

	return respBody, nil
}

// SignaturesRequired reports whether webhook calls must be signed
func (s *AbacatePayService) SignaturesRequired() bool {
	return s.webhookSecret != ""
}

// VerifyWebhook checks the base64 HMAC-SHA256 of the raw body. Without a
// configured secret every call passes.
func (s *AbacatePayService) VerifyWebhook(body []byte, signature string) error {
	if !s.SignaturesRequired() {
		return nil
	}

	given, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(given) == 0 {
		return ErrInvalidSignature
	}

	if !hmac.Equal(given, Sign(s.webhookSecret, body)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign computes the HMAC-SHA256 of body
func Sign(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// ParseWebhook decodes a webhook payload
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err, "malformed webhook payload")
	}
	return &event, nil
}
