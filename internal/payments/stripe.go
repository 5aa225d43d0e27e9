// Package payments wraps the Stripe API for card checkout.
package payments

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

// Client creates payment intents for card orders. Amounts are rupees and
// converted to paise on the wire.
type Client struct {
	client *stripe.Client
}

func NewClient(secretKey string) *Client {
	return &Client{client: stripe.NewClient(secretKey)}
}

// IntentParams holds the parameters for creating a payment intent.
type IntentParams struct {
	OrderID       uuid.UUID
	OrderNumber   int
	StoreID       uuid.UUID
	AmountRupees  float64
	CustomerEmail string
}

// Intent is the subset of a Stripe payment intent the checkout flow needs.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// CreateIntent creates a payment intent for an order.
func (c *Client) CreateIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if params.AmountRupees <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	amountPaise := int64(math.Round(params.AmountRupees * 100))

	createParams := &stripe.PaymentIntentCreateParams{
		Amount:       stripe.Int64(amountPaise),
		Currency:     stripe.String(string(stripe.CurrencyINR)),
		ReceiptEmail: stripe.String(params.CustomerEmail),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_id":     params.OrderID.String(),
			"order_number": fmt.Sprintf("%d", params.OrderNumber),
			"store_id":     params.StoreID.String(),
		},
	}

	intent, err := c.client.V1PaymentIntents.Create(ctx, createParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}
