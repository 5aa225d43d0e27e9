// Package email provides email templates.
package email

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"
)

// OrderInfo contains the information needed for order email templates.
type OrderInfo struct {
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	StoreName       string
	Items           []ItemInfo
	Subtotal        string
	Shipping        string
	WalletDiscount  string
	Total           string
	CoinsEarned     int
	ShippingAddress string
	TrackingNumber  string
	TrackingURL     string
	TrackingCarrier string
	OrderDate       string
}

// ItemInfo is a single order line in an email.
type ItemInfo struct {
	Name       string
	Quantity   int
	UnitPrice  string
	TotalPrice string
}

// ReturnInfo carries the fields for return request status emails.
type ReturnInfo struct {
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	StoreName       string
	ItemName        string
	RequestType     string
	Approved        bool
	RejectionReason string
}

// Renderer renders the built-in email templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the built-in templates.
func NewRenderer() (*Renderer, error) {
	texts := map[string]string{
		"order_confirmation": orderConfirmationText,
		"order_shipped":      orderShippedText,
		"order_delivered":    orderDeliveredText,
		"return_update":      returnUpdateText,
	}

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("January 2, 2006")
		},
	}

	tmpl := template.New("email").Funcs(funcMap)
	for key, body := range texts {
		if _, err := tmpl.New(key).Parse(body); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", key, err)
		}
	}

	return &Renderer{templates: tmpl}, nil
}

// RenderOrder renders one of the order templates into a sendable email.
func (r *Renderer) RenderOrder(templateName string, data *OrderInfo) (*Email, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", templateName, err)
	}

	subject := ""
	switch templateName {
	case "order_confirmation":
		subject = fmt.Sprintf("Order Confirmed - #%s - %s", data.OrderNumber, data.StoreName)
	case "order_shipped":
		subject = fmt.Sprintf("Your Order Has Shipped - #%s - %s", data.OrderNumber, data.StoreName)
	case "order_delivered":
		subject = fmt.Sprintf("Your Order Has Been Delivered - #%s", data.OrderNumber)
	}

	return &Email{
		To:      data.CustomerEmail,
		Subject: subject,
		Text:    buf.String(),
	}, nil
}

// RenderReturnUpdate renders the approval/rejection notice for a return or
// replacement request.
func (r *Renderer) RenderReturnUpdate(data *ReturnInfo) (*Email, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "return_update", data); err != nil {
		return nil, fmt.Errorf("failed to render return update: %w", err)
	}

	verdict := "Approved"
	if !data.Approved {
		verdict = "Rejected"
	}

	return &Email{
		To:      data.CustomerEmail,
		Subject: fmt.Sprintf("Return Request %s - Order #%s", verdict, data.OrderNumber),
		Text:    buf.String(),
	}, nil
}

// SendOrderConfirmation sends an order confirmation email.
func SendOrderConfirmation(ctx context.Context, p Provider, orderInfo *OrderInfo) error {
	return sendOrderTemplate(ctx, p, "order_confirmation", orderInfo)
}

// SendOrderShipped sends an order shipped email.
func SendOrderShipped(ctx context.Context, p Provider, orderInfo *OrderInfo) error {
	return sendOrderTemplate(ctx, p, "order_shipped", orderInfo)
}

// SendOrderDelivered sends an order delivered email.
func SendOrderDelivered(ctx context.Context, p Provider, orderInfo *OrderInfo) error {
	return sendOrderTemplate(ctx, p, "order_delivered", orderInfo)
}

// SendReturnUpdate notifies a customer that their return request was
// decided.
func SendReturnUpdate(ctx context.Context, p Provider, returnInfo *ReturnInfo) error {
	if p == nil {
		return nil
	}

	renderer, err := NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	email, err := renderer.RenderReturnUpdate(returnInfo)
	if err != nil {
		return err
	}

	return p.SendEmail(ctx, email)
}

func sendOrderTemplate(ctx context.Context, p Provider, templateName string, orderInfo *OrderInfo) error {
	if p == nil {
		return nil
	}

	renderer, err := NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	email, err := renderer.RenderOrder(templateName, orderInfo)
	if err != nil {
		return err
	}

	return p.SendEmail(ctx, email)
}

const orderConfirmationText = `Thank you for your order!

Hi {{.CustomerName}},

Your order #{{.OrderNumber}} from {{.StoreName}} has been confirmed.

Items:
{{range .Items}}  {{.Name}} x{{.Quantity}} — ₹{{.TotalPrice}}
{{end}}
Subtotal: ₹{{.Subtotal}}
Shipping: ₹{{.Shipping}}
{{if .WalletDiscount}}Wallet discount: -₹{{.WalletDiscount}}
{{end}}Total: ₹{{.Total}}

{{if .ShippingAddress}}Shipping to:
{{.ShippingAddress}}

{{end}}We'll let you know as soon as it ships.

— {{.StoreName}}
`

const orderShippedText = `Good news, {{.CustomerName}}!

Your order #{{.OrderNumber}} from {{.StoreName}} is on its way.
{{if .TrackingNumber}}
Carrier: {{.TrackingCarrier}}
Tracking number: {{.TrackingNumber}}
{{if .TrackingURL}}Track it here: {{.TrackingURL}}
{{end}}{{end}}
— {{.StoreName}}
`

const orderDeliveredText = `Hi {{.CustomerName}},

Your order #{{.OrderNumber}} has been delivered. We hope you love it!
{{if .CoinsEarned}}
You earned {{.CoinsEarned}} coins on this order. They're already in your
wallet and ready to spend on your next purchase.
{{end}}
If anything isn't right, you can request a return or replacement from your
orders page.

— {{.StoreName}}
`

const returnUpdateText = `Hi {{.CustomerName}},

Your {{.RequestType}} request for "{{.ItemName}}" on order #{{.OrderNumber}}
has been {{if .Approved}}approved{{else}}rejected{{end}}.
{{if not .Approved}}
Reason: {{.RejectionReason}}
{{end}}
— {{.StoreName}}
`
