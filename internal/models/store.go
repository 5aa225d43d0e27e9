package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a seller's shop. Shipping settings feed the shipping fee
// calculator; the email settings select and configure the store's
// transactional email provider (API key held encrypted at rest).
type Store struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	OwnerEmail      string         `json:"owner_email"`
	ShippingFlatFee float64        `json:"shipping_flat_fee"`
	FreeShippingMin float64        `json:"free_shipping_min"`
	EmailProvider   string         `json:"email_provider"`
	EmailFrom       string         `json:"email_from"`
	EmailConfig     map[string]any `json:"email_config,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type Product struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UnitPrice   float64   `json:"unit_price"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	ImageURLs   []string  `json:"image_urls,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleSeller   UserRole = "seller"
)

// User mirrors the identity asserted by the bearer token. Rows are created
// lazily on first authenticated access (get-or-create on the email key).
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	StoreID   uuid.UUID `json:"store_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
