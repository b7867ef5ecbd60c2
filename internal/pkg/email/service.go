// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// Providers understood by EMAIL_PROVIDER
const (
	ProviderSMTP = "smtp"
	ProviderLog  = "log"
)

// EmailService handles all email operations
type EmailService struct {
	config    config.EmailConfig
	siteName  string
	siteURL   string
	templates map[string]*template.Template
	log       logrus.FieldLogger
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, log logrus.FieldLogger) *EmailService {
	return &EmailService{
		config:   cfg.Email,
		siteName: cfg.Receipt.CompanyName,
		siteURL:  cfg.App.FrontendURL,
		templates: map[string]*template.Template{
			string(EmailTypePaymentConfirmation): template.Must(template.New("payment_confirmation").Parse(paymentConfirmationTemplate)),
		},
		log: log,
	}
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.Provider {
	case ProviderSMTP:
		return s.sendSMTPEmail(email)
	case ProviderLog, "":
		s.log.WithFields(logrus.Fields{
			"to":      email.To,
			"subject": email.Subject,
			"type":    email.Type,
		}).Info("email not sent, log provider configured")
		return nil
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}
}

// SendPaymentConfirmation tells a customer their order was paid
func (s *EmailService) SendPaymentConfirmation(ctx context.Context, data PaymentConfirmationData) error {
	data.EmailTemplateData = GetBaseTemplateData(s.siteName, s.siteURL, data.UserEmail)
	if data.OrderURL == "" {
		data.OrderURL = fmt.Sprintf("%s/orders/%s", s.siteURL, data.OrderID)
	}

	htmlContent, err := s.renderTemplate(string(EmailTypePaymentConfirmation), data)
	if err != nil {
		return fmt.Errorf("failed to render payment confirmation template: %w", err)
	}

	email := &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Pagamento confirmado - pedido %s", data.OrderID),
		HTMLContent: htmlContent,
		Type:        EmailTypePaymentConfirmation,
		Data: map[string]interface{}{
			"order_id":   data.OrderID,
			"billing_id": data.BillingID,
			"total":      data.Total,
		},
	}

	return s.SendEmail(ctx, email)
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := s.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

const paymentConfirmationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
        <p>Olá,</p>
        <p>Recebemos o pagamento do pedido <strong>{{.OrderID}}</strong> em {{.PaidAt}}.</p>
        <table style="width: 100%; border-collapse: collapse;">
            <tr><th align="left">Produto</th><th>Qtd.</th><th align="right">Preço</th><th align="right">Total</th></tr>
            {{range .Items}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">{{.Price}}</td><td align="right">{{.Total}}</td></tr>
            {{end}}
        </table>
        <p style="font-size: 18px;"><strong>Total: {{.Total}}</strong></p>
        <p><a href="{{.OrderURL}}">Ver pedido</a></p>
        <hr>
        <p style="font-size: 12px; color: #666;">
            © {{.Year}} {{.SiteName}}. Cobrança {{.BillingID}}.
        </p>
    </div>
</body>
</html>`
