// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
)

// Service handles PDF generation
type Service struct {
	company CompanyInfo
	tmpl    *template.Template
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		company: CompanyInfo{
			Name:    cfg.Receipt.CompanyName,
			Email:   cfg.Receipt.CompanyEmail,
			Website: cfg.App.FrontendURL,
		},
		tmpl: template.Must(template.New("receipt").Parse(receiptTemplate)),
	}
}

// ReceiptData represents the data passed to the receipt template.
// Amounts are already formatted for display.
type ReceiptData struct {
	OrderID       string        `json:"order_id"`
	BillingID     string        `json:"billing_id"`
	CustomerEmail string        `json:"customer_email"`
	Status        string        `json:"status"`
	OrderDate     string        `json:"order_date"`
	PaidAt        string        `json:"paid_at"`
	Items         []ReceiptLine `json:"items"`
	Total         string        `json:"total"`
	Company       CompanyInfo   `json:"company"`
}

// ReceiptLine is one product on the receipt
type ReceiptLine struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// GenerateReceipt renders an order receipt as PDF
func (s *Service) GenerateReceipt(data *ReceiptData) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderReceiptHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Title.Set("Recibo " + data.OrderID)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Encoding.Set("utf-8")

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderReceiptHTML renders the receipt template
func (s *Service) RenderReceiptHTML(data *ReceiptData) ([]byte, error) {
	if data.Company.Name == "" {
		data.Company = s.company
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Recibo {{.OrderID}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #2e7d32; padding-bottom: 12px; margin-bottom: 20px; }
        .company { font-size: 22px; font-weight: bold; color: #2e7d32; }
        .meta td { padding: 2px 12px 2px 0; }
        table.items { width: 100%; border-collapse: collapse; margin-top: 20px; }
        table.items th { background: #f1f8e9; text-align: left; padding: 8px; }
        table.items td { border-bottom: 1px solid #eee; padding: 8px; }
        .num { text-align: right; }
        .total { font-size: 18px; font-weight: bold; text-align: right; margin-top: 16px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company">{{.Company.Name}}</div>
        <div>{{.Company.Email}} · {{.Company.Website}}</div>
    </div>
    <table class="meta">
        <tr><td>Pedido</td><td>{{.OrderID}}</td></tr>
        <tr><td>Cliente</td><td>{{.CustomerEmail}}</td></tr>
        <tr><td>Data</td><td>{{.OrderDate}}</td></tr>
        <tr><td>Situação</td><td>{{.Status}}</td></tr>
        {{if .PaidAt}}<tr><td>Pago em</td><td>{{.PaidAt}}</td></tr>{{end}}
        {{if .BillingID}}<tr><td>Cobrança</td><td>{{.BillingID}}</td></tr>{{end}}
    </table>
    <table class="items">
        <tr><th>Produto</th><th class="num">Qtd.</th><th class="num">Preço</th><th class="num">Total</th></tr>
        {{range .Items}}
        <tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Total}}</td></tr>
        {{end}}
    </table>
    <div class="total">Total: {{.Total}}</div>
</body>
</html>`
