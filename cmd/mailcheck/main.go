// cmd/mailcheck/main.go

// Command mailcheck sends a sample payment confirmation through the configured
// email provider, to check SMTP settings before going live.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/money"
)

func main() {
	to := flag.String("to", "", "recipient address")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logger.New(cfg.Logging)

	if *to == "" {
		log.Fatal("Usage: mailcheck -to someone@example.com")
	}

	price := decimal.RequireFromString("59.90")
	data := email.PaymentConfirmationData{
		EmailTemplateData: email.GetBaseTemplateData(cfg.App.Name, cfg.App.FrontendURL, *to),
		OrderID:           "000000000000000000000000",
		BillingID:         "bill_test",
		Total:             money.FormatBRL(price.Mul(decimal.NewFromInt(2))),
		PaidAt:            time.Now().Format("02/01/2006 15:04"),
		Items: []email.OrderLine{{
			Name:     "Produto de teste",
			Quantity: 2,
			Price:    money.FormatBRL(price),
			Total:    money.FormatBRL(price.Mul(decimal.NewFromInt(2))),
		}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := email.NewEmailService(cfg, log).SendPaymentConfirmation(ctx, data); err != nil {
		log.Fatalf("Sending failed: %v", err)
	}
	log.WithFields(logrus.Fields{"to": *to, "provider": cfg.Email.Provider}).Info("✅ Test email sent")
}
