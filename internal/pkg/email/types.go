// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypePaymentConfirmation EmailType = "payment_confirmation"
)

// Email represents an email message
type Email struct {
	To          []string               `json:"to"`
	Subject     string                 `json:"subject"`
	HTMLContent string                 `json:"html_content"`
	Type        EmailType              `json:"type"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName  string `json:"site_name"`
	SiteURL   string `json:"site_url"`
	UserEmail string `json:"user_email"`
	Year      int    `json:"year"`
}

// OrderLine represents an item in the order
type OrderLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

// PaymentConfirmationData contains data for the payment confirmation email
type PaymentConfirmationData struct {
	EmailTemplateData
	OrderID   string      `json:"order_id"`
	BillingID string      `json:"billing_id"`
	Total     string      `json:"total"`
	PaidAt    string      `json:"paid_at"`
	OrderURL  string      `json:"order_url"`
	Items     []OrderLine `json:"items"`
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, userEmail string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:  siteName,
		SiteURL:   siteURL,
		UserEmail: userEmail,
		Year:      time.Now().Year(),
	}
}
