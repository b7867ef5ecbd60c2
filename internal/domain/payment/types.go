// internal/domain/payment/types.go
package payment

// Product is one billed line. Price is the unit price in cents.
type Product struct {
	ExternalID  string `json:"externalId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// Customer identifies the payer when known
type Customer struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Cellphone string `json:"cellphone,omitempty"`
	TaxID     string `json:"taxId,omitempty"`
}

// BillingRequest represents the billing to create
type BillingRequest struct {
	Products []Product
	Customer *Customer
}

// Billing is the provider's answer to a created billing
type Billing struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Amount int64  `json:"amount"`
}

type createBillingRequest struct {
	Frequency     string    `json:"frequency"`
	Methods       []string  `json:"methods"`
	Products      []Product `json:"products"`
	ReturnURL     string    `json:"returnUrl"`
	CompletionURL string    `json:"completionUrl"`
	Customer      *Customer `json:"customer,omitempty"`
}

type createBillingResponse struct {
	Data struct {
		ID     string `json:"id"`
		URL    string `json:"url"`
		Amount int64  `json:"amount"`
		Status string `json:"status"`
	} `json:"data"`
	Error interface{} `json:"error"`
}

// WebhookEvent is the payload the provider posts on billing changes
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Billing struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Amount int64  `json:"amount"`
		} `json:"billing"`
	} `json:"data"`
	DevMode bool `json:"devMode"`
}

// BillingID returns the billing the event refers to
func (e *WebhookEvent) BillingID() string {
	return e.Data.Billing.ID
}

// IsPaid reports whether the event confirms a payment
func (e *WebhookEvent) IsPaid() bool {
	return e.Event == EventBillingPaid && e.BillingID() != ""
}
