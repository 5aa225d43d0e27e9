package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/db"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/payments"
)

// The services accept narrow store interfaces so tests can substitute fakes;
// the concrete implementations live in internal/db.

type orderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Order, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]*models.Order, error)
	UpdateRedemption(ctx context.Context, orderID uuid.UUID, coinsRedeemed int, walletDiscount, total float64) error
	SetPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error
	MarkConfirmed(ctx context.Context, orderID uuid.UUID) error
	MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber, trackingURL, carrier string) error
	MarkDelivered(ctx context.Context, orderID uuid.UUID, coinsEarned int) error
	MarkCancelled(ctx context.Context, orderID uuid.UUID) error
}

type productStore interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, storeID, productID uuid.UUID) error
	GetByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetByIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, activeOnly bool) ([]*models.Product, error)
}

type storeStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type walletStore interface {
	GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	GrantWelcomeBonus(ctx context.Context, userID uuid.UUID, coins int) (*models.Wallet, error)
	Redeem(ctx context.Context, walletID uuid.UUID, coins int, rupees float64, orderID uuid.UUID) error
	Earn(ctx context.Context, walletID uuid.UUID, coins int, rupees float64, orderID uuid.UUID) error
	Transactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error)
}

type returnStore interface {
	Create(ctx context.Context, request *models.ReturnRequest) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ReturnRequest, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]models.ReturnRequest, error)
	Approve(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID, reason string) error
}

type dealStore interface {
	Create(ctx context.Context, deal *models.Deal) error
	Update(ctx context.Context, deal *models.Deal) error
	Delete(ctx context.Context, storeID, dealID uuid.UUID) error
	GetByID(ctx context.Context, dealID uuid.UUID) (*models.Deal, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]*models.Deal, error)
}

type campaignStore interface {
	Create(ctx context.Context, storeID uuid.UUID, subject, body string) (uuid.UUID, error)
	RecordSend(ctx context.Context, send db.CampaignSend) error
}

type campaignRecipients interface {
	DistinctCustomerEmails(ctx context.Context, storeID uuid.UUID) ([]string, error)
}

type locationStats interface {
	LocationStats(ctx context.Context, storeID uuid.UUID) ([]db.LocationStat, error)
}

// PaymentClient opens payment intents for card checkout. A nil client
// disables the card payment method.
type PaymentClient interface {
	CreateIntent(ctx context.Context, params payments.IntentParams) (*payments.Intent, error)
}
