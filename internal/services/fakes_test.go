package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/db"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/payments"
)

type fakeOrderStore struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]*models.Order
	nextNumber int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[uuid.UUID]*models.Order{}, nextNumber: 1000}
}

func (s *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = uuid.New()
	s.nextNumber++
	order.OrderNumber = s.nextNumber
	stored := *order
	s.orders[order.ID] = &stored
	return nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *fakeOrderStore) ListByUser(_ context.Context, userID uuid.UUID, _ int) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			copied := *order
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) ListByStore(_ context.Context, storeID uuid.UUID, _ int) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, order := range s.orders {
		if order.StoreID == storeID {
			copied := *order
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateRedemption(_ context.Context, orderID uuid.UUID, coinsRedeemed int, walletDiscount, total float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return db.ErrNotFound
	}
	if order.Status != models.StatusPlaced {
		return db.ErrInvalidStatusTransition
	}
	order.CoinsRedeemed = coinsRedeemed
	order.WalletDiscount = walletDiscount
	order.Total = total
	return nil
}

func (s *fakeOrderStore) SetPaymentIntent(_ context.Context, orderID uuid.UUID, paymentIntentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return db.ErrNotFound
	}
	order.StripePaymentIntentID = paymentIntentID
	return nil
}

func (s *fakeOrderStore) transition(orderID uuid.UUID, to models.OrderStatus, from ...models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return db.ErrNotFound
	}
	for _, status := range from {
		if order.Status == status {
			order.Status = to
			return nil
		}
	}
	return db.ErrInvalidStatusTransition
}

func (s *fakeOrderStore) MarkConfirmed(_ context.Context, orderID uuid.UUID) error {
	return s.transition(orderID, models.StatusConfirmed, models.StatusPlaced)
}

func (s *fakeOrderStore) MarkShipped(_ context.Context, orderID uuid.UUID, trackingNumber, trackingURL, carrier string) error {
	if err := s.transition(orderID, models.StatusShipped, models.StatusConfirmed); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order := s.orders[orderID]
	order.TrackingNumber = trackingNumber
	order.TrackingURL = trackingURL
	order.Carrier = carrier
	return nil
}

func (s *fakeOrderStore) MarkDelivered(_ context.Context, orderID uuid.UUID, coinsEarned int) error {
	if err := s.transition(orderID, models.StatusDelivered, models.StatusShipped); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[orderID].CoinsEarned = coinsEarned
	return nil
}

func (s *fakeOrderStore) MarkCancelled(_ context.Context, orderID uuid.UUID) error {
	return s.transition(orderID, models.StatusCancelled, models.StatusPlaced, models.StatusConfirmed)
}

type fakeProductStore struct {
	products map[uuid.UUID]*models.Product
}

func newFakeProductStore(products ...*models.Product) *fakeProductStore {
	s := &fakeProductStore{products: map[uuid.UUID]*models.Product{}}
	for _, product := range products {
		s.products[product.ID] = product
	}
	return s
}

func (s *fakeProductStore) Create(_ context.Context, product *models.Product) error {
	product.ID = uuid.New()
	s.products[product.ID] = product
	return nil
}

func (s *fakeProductStore) Update(_ context.Context, product *models.Product) error {
	existing, ok := s.products[product.ID]
	if !ok || existing.StoreID != product.StoreID {
		return db.ErrNotFound
	}
	s.products[product.ID] = product
	return nil
}

func (s *fakeProductStore) Delete(_ context.Context, storeID, productID uuid.UUID) error {
	existing, ok := s.products[productID]
	if !ok || existing.StoreID != storeID {
		return db.ErrNotFound
	}
	delete(s.products, productID)
	return nil
}

func (s *fakeProductStore) GetByID(_ context.Context, productID uuid.UUID) (*models.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return product, nil
}

func (s *fakeProductStore) GetByIDs(_ context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	found := map[uuid.UUID]*models.Product{}
	for _, id := range productIDs {
		if product, ok := s.products[id]; ok {
			found[id] = product
		}
	}
	return found, nil
}

func (s *fakeProductStore) ListByStore(_ context.Context, storeID uuid.UUID, activeOnly bool) ([]*models.Product, error) {
	var out []*models.Product
	for _, product := range s.products {
		if product.StoreID != storeID {
			continue
		}
		if activeOnly && !product.Active {
			continue
		}
		out = append(out, product)
	}
	return out, nil
}

type fakeStoreStore struct {
	store *models.Store
}

func (s *fakeStoreStore) GetByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	if s.store == nil || s.store.ID != id {
		return nil, db.ErrNotFound
	}
	return s.store, nil
}

// fakeWalletStore is a single-user wallet. drainOnRedeem simulates a
// concurrent spend: each of the first N Redeem calls fails and removes
// coins from the balance before the caller re-reads it.
type fakeWalletStore struct {
	wallet        models.Wallet
	transactions  []models.WalletTransaction
	drainOnRedeem int
	drainAmount   int
}

func newFakeWalletStore(userID uuid.UUID, coins int) *fakeWalletStore {
	return &fakeWalletStore{
		wallet: models.Wallet{ID: uuid.New(), UserID: userID, Coins: coins},
	}
}

func (s *fakeWalletStore) GetOrCreateByUser(_ context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if s.wallet.UserID != userID {
		return nil, fmt.Errorf("unexpected user %s", userID)
	}
	copied := s.wallet
	return &copied, nil
}

func (s *fakeWalletStore) GrantWelcomeBonus(_ context.Context, userID uuid.UUID, coins int) (*models.Wallet, error) {
	if s.wallet.UserID != userID {
		return nil, fmt.Errorf("unexpected user %s", userID)
	}
	if !s.wallet.BonusClaimed {
		s.wallet.Coins += coins
		s.wallet.BonusClaimed = true
		s.transactions = append(s.transactions, models.WalletTransaction{
			WalletID: s.wallet.ID, Type: models.WalletEarn, Coins: coins, Note: "welcome bonus",
		})
	}
	copied := s.wallet
	return &copied, nil
}

func (s *fakeWalletStore) Redeem(_ context.Context, walletID uuid.UUID, coins int, rupees float64, orderID uuid.UUID) error {
	if s.drainOnRedeem > 0 {
		s.drainOnRedeem--
		s.wallet.Coins -= s.drainAmount
		if s.wallet.Coins < 0 {
			s.wallet.Coins = 0
		}
		return db.ErrInsufficientCoins
	}
	if s.wallet.Coins < coins {
		return db.ErrInsufficientCoins
	}
	s.wallet.Coins -= coins
	s.transactions = append(s.transactions, models.WalletTransaction{
		WalletID: walletID, Type: models.WalletRedeem, Coins: coins, Rupees: rupees, OrderID: orderID,
	})
	return nil
}

func (s *fakeWalletStore) Earn(_ context.Context, walletID uuid.UUID, coins int, rupees float64, orderID uuid.UUID) error {
	s.wallet.Coins += coins
	s.transactions = append(s.transactions, models.WalletTransaction{
		WalletID: walletID, Type: models.WalletEarn, Coins: coins, Rupees: rupees, OrderID: orderID,
	})
	return nil
}

func (s *fakeWalletStore) Transactions(_ context.Context, _ uuid.UUID, _ int) ([]models.WalletTransaction, error) {
	return s.transactions, nil
}

type fakeReturnStore struct {
	requests []*models.ReturnRequest
}

func (s *fakeReturnStore) Create(_ context.Context, request *models.ReturnRequest) error {
	request.ID = uuid.New()
	request.Status = models.ReturnRequested
	stored := *request
	s.requests = append(s.requests, &stored)
	return nil
}

func (s *fakeReturnStore) ListByOrder(_ context.Context, orderID uuid.UUID) ([]models.ReturnRequest, error) {
	var out []models.ReturnRequest
	for _, request := range s.requests {
		if request.OrderID == orderID {
			out = append(out, *request)
		}
	}
	return out, nil
}

func (s *fakeReturnStore) ListByStore(_ context.Context, _ uuid.UUID, _ int) ([]models.ReturnRequest, error) {
	var out []models.ReturnRequest
	for _, request := range s.requests {
		out = append(out, *request)
	}
	return out, nil
}

func (s *fakeReturnStore) find(id uuid.UUID) *models.ReturnRequest {
	for _, request := range s.requests {
		if request.ID == id {
			return request
		}
	}
	return nil
}

func (s *fakeReturnStore) Approve(_ context.Context, id uuid.UUID) error {
	request := s.find(id)
	if request == nil {
		return db.ErrNotFound
	}
	if request.Status != models.ReturnRequested {
		return db.ErrReturnConflict
	}
	request.Status = models.ReturnApproved
	return nil
}

func (s *fakeReturnStore) Reject(_ context.Context, id uuid.UUID, reason string) error {
	request := s.find(id)
	if request == nil {
		return db.ErrNotFound
	}
	if request.Status != models.ReturnRequested {
		return db.ErrReturnConflict
	}
	request.Status = models.ReturnRejected
	request.RejectionReason = reason
	return nil
}

type fakeCampaignStore struct {
	sends []db.CampaignSend
}

func (s *fakeCampaignStore) Create(_ context.Context, _ uuid.UUID, _, _ string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (s *fakeCampaignStore) RecordSend(_ context.Context, send db.CampaignSend) error {
	s.sends = append(s.sends, send)
	return nil
}

type fakeRecipients struct {
	emails []string
}

func (s *fakeRecipients) DistinctCustomerEmails(_ context.Context, _ uuid.UUID) ([]string, error) {
	return s.emails, nil
}

type fakePaymentClient struct {
	lastParams payments.IntentParams
	calls      int
}

func (c *fakePaymentClient) CreateIntent(_ context.Context, params payments.IntentParams) (*payments.Intent, error) {
	c.calls++
	c.lastParams = params
	return &payments.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

type emailCall struct {
	kind  string
	order uuid.UUID
}

type fakeEmailSender struct {
	calls []emailCall
}

func (s *fakeEmailSender) SendOrderConfirmation(_ context.Context, _ *models.Store, order *models.Order) error {
	s.calls = append(s.calls, emailCall{kind: "confirmation", order: order.ID})
	return nil
}

func (s *fakeEmailSender) SendOrderShipped(_ context.Context, _ *models.Store, order *models.Order) error {
	s.calls = append(s.calls, emailCall{kind: "shipped", order: order.ID})
	return nil
}

func (s *fakeEmailSender) SendOrderDelivered(_ context.Context, _ *models.Store, order *models.Order) error {
	s.calls = append(s.calls, emailCall{kind: "delivered", order: order.ID})
	return nil
}

func (s *fakeEmailSender) SendReturnUpdate(_ context.Context, _ *models.Store, order *models.Order, _ *models.ReturnRequest) error {
	s.calls = append(s.calls, emailCall{kind: "return_update", order: order.ID})
	return nil
}
