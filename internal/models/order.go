package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPlaced    OrderStatus = "placed"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// OrderItem is a priced cart line snapshotted onto the order at checkout.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	ID                    uuid.UUID       `json:"id"`
	OrderNumber           int             `json:"order_number"`
	StoreID               uuid.UUID       `json:"store_id"`
	UserID                uuid.UUID       `json:"user_id"`
	CustomerEmail         string          `json:"customer_email"`
	CustomerName          string          `json:"customer_name"`
	Items                 []OrderItem     `json:"items"`
	ShippingAddress       *Address        `json:"shipping_address"`
	Subtotal              float64         `json:"subtotal"`
	ShippingFee           float64         `json:"shipping_fee"`
	CoinsRedeemed         int             `json:"coins_redeemed"`
	WalletDiscount        float64         `json:"wallet_discount"`
	Total                 float64         `json:"total"`
	CoinsEarned           int             `json:"coins_earned"`
	CouponApplied         bool            `json:"coupon_applied"`
	PaymentMethod         PaymentMethod   `json:"payment_method"`
	PaymentStatus         PaymentStatus   `json:"payment_status"`
	Paid                  bool            `json:"paid"`
	StripePaymentIntentID string          `json:"stripe_payment_intent_id,omitempty"`
	TrackingNumber        string          `json:"tracking_number,omitempty"`
	TrackingURL           string          `json:"tracking_url,omitempty"`
	Carrier               string          `json:"carrier,omitempty"`
	Status                OrderStatus     `json:"status"`
	Returns               []ReturnRequest `json:"returns"`
	CreatedAt             time.Time       `json:"created_at"`
	PaidAt                time.Time       `json:"paid_at"`
	ConfirmedAt           time.Time       `json:"confirmed_at"`
	ShippedAt             time.Time       `json:"shipped_at"`
	DeliveredAt           time.Time       `json:"delivered_at"`
	CancelledAt           time.Time       `json:"cancelled_at"`
}

// IsGuest reports whether the order was placed without an account.
func (o *Order) IsGuest() bool {
	return o != nil && o.UserID == uuid.Nil
}

// OwnedBy reports whether the given identity may act on this order as its
// customer. Guest orders are matched by email.
func (o *Order) OwnedBy(userID uuid.UUID, email string) bool {
	if o == nil {
		return false
	}
	if o.UserID != uuid.Nil {
		return o.UserID == userID
	}
	return email != "" && o.CustomerEmail == email
}
