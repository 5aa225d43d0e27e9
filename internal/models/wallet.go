package models

import (
	"time"

	"github.com/google/uuid"
)

type WalletTransactionType string

const (
	WalletEarn   WalletTransactionType = "earn"
	WalletRedeem WalletTransactionType = "redeem"
)

// Wallet holds a user's coin balance. Coins convert to rupees at a fixed
// rate (see checkout.CoinValue). The balance equals the signed sum of the
// wallet's transactions; debits and credits always write both in one
// database transaction.
type Wallet struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Coins        int       `json:"coins"`
	BonusClaimed bool      `json:"bonus_claimed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type WalletTransaction struct {
	ID        uuid.UUID             `json:"id"`
	WalletID  uuid.UUID             `json:"wallet_id"`
	Type      WalletTransactionType `json:"type"`
	Coins     int                   `json:"coins"`
	Rupees    float64               `json:"rupees"`
	OrderID   uuid.UUID             `json:"order_id,omitempty"`
	Note      string                `json:"note,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}
