package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/db"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/shipping"
)

type orderServiceFixture struct {
	service  *OrderService
	orders   *fakeOrderStore
	products *fakeProductStore
	store    *models.Store
	wallets  *fakeWalletStore
	returns  *fakeReturnStore
	payments *fakePaymentClient
	emails   *fakeEmailSender
	identity *auth.Identity
	product  *models.Product
}

func newOrderServiceFixture(walletCoins int) *orderServiceFixture {
	store := &models.Store{
		ID:              uuid.New(),
		Name:            "Spice Bazaar",
		ShippingFlatFee: 50,
		FreeShippingMin: 2000,
	}
	product := &models.Product{
		ID:        uuid.New(),
		StoreID:   store.ID,
		Name:      "Masala Tin",
		UnitPrice: 500,
		Stock:     10,
		Active:    true,
	}

	identity := &auth.Identity{
		UserID: uuid.New(),
		Email:  "asha@example.com",
		Name:   "Asha",
		Role:   models.RoleCustomer,
	}

	f := &orderServiceFixture{
		orders:   newFakeOrderStore(),
		products: newFakeProductStore(product),
		store:    store,
		wallets:  newFakeWalletStore(identity.UserID, walletCoins),
		returns:  &fakeReturnStore{},
		payments: &fakePaymentClient{},
		emails:   &fakeEmailSender{},
		identity: identity,
		product:  product,
	}
	f.service = NewOrderService(
		f.orders,
		f.products,
		&fakeStoreStore{store: store},
		f.wallets,
		f.returns,
		shipping.NewCalculator(nil),
		f.payments,
		f.emails,
		discardLogger(),
	)
	return f
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validAddress() models.Address {
	return models.Address{
		Name:       "Asha",
		Phone:      "9999999999",
		Line1:      "12 MG Road",
		City:       "Pune",
		State:      "Maharashtra",
		PostalCode: "411001",
		Country:    "IN",
	}
}

func TestPlaceOrderWithRedemption(t *testing.T) {
	f := newOrderServiceFixture(300)

	result, err := f.service.PlaceOrder(context.Background(), f.identity, PlaceOrderInput{
		StoreID:         f.store.ID,
		Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 2}},
		ShippingAddress: validAddress(),
		PaymentMethod:   "cod",
		RedeemCoins:     300,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	order := result.Order
	if order.Subtotal != 1000 {
		t.Errorf("Subtotal = %v, want 1000", order.Subtotal)
	}
	if order.ShippingFee != 50 {
		t.Errorf("ShippingFee = %v, want 50", order.ShippingFee)
	}
	if order.CoinsRedeemed != 300 {
		t.Errorf("CoinsRedeemed = %d, want 300", order.CoinsRedeemed)
	}
	if order.WalletDiscount != 150 {
		t.Errorf("WalletDiscount = %v, want 150", order.WalletDiscount)
	}
	if order.Total != 900 {
		t.Errorf("Total = %v, want 900", order.Total)
	}
	if order.Status != models.StatusPlaced {
		t.Errorf("Status = %q, want placed", order.Status)
	}
	if f.wallets.wallet.Coins != 0 {
		t.Errorf("wallet balance = %d, want 0", f.wallets.wallet.Coins)
	}
	if len(f.emails.calls) != 1 || f.emails.calls[0].kind != "confirmation" {
		t.Errorf("emails = %+v, want one confirmation", f.emails.calls)
	}
	if result.Payment != nil {
		t.Errorf("cod order should not carry a payment intent")
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newOrderServiceFixture(0)

	otherStoreProduct := &models.Product{
		ID: uuid.New(), StoreID: uuid.New(), Name: "Elsewhere", UnitPrice: 10, Stock: 5, Active: true,
	}
	f.products.products[otherStoreProduct.ID] = otherStoreProduct

	tests := []struct {
		name     string
		identity *auth.Identity
		input    PlaceOrderInput
	}{
		{
			name:     "empty cart",
			identity: f.identity,
			input: PlaceOrderInput{
				StoreID:         f.store.ID,
				ShippingAddress: validAddress(),
			},
		},
		{
			name:     "zero quantity",
			identity: f.identity,
			input: PlaceOrderInput{
				StoreID:         f.store.ID,
				Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 0}},
				ShippingAddress: validAddress(),
			},
		},
		{
			name:     "product from another store",
			identity: f.identity,
			input: PlaceOrderInput{
				StoreID:         f.store.ID,
				Items:           []OrderItemInput{{ProductID: otherStoreProduct.ID, Quantity: 1}},
				ShippingAddress: validAddress(),
			},
		},
		{
			name:     "insufficient stock",
			identity: f.identity,
			input: PlaceOrderInput{
				StoreID:         f.store.ID,
				Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 11}},
				ShippingAddress: validAddress(),
			},
		},
		{
			name:     "guest without email",
			identity: nil,
			input: PlaceOrderInput{
				StoreID:         f.store.ID,
				Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
				ShippingAddress: validAddress(),
				CustomerName:    "Guest",
			},
		},
		{
			name:     "guest cannot redeem coins",
			identity: nil,
			input: PlaceOrderInput{
				StoreID:         f.store.ID,
				Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
				ShippingAddress: validAddress(),
				CustomerEmail:   "guest@example.com",
				CustomerName:    "Guest",
				RedeemCoins:     10,
			},
		},
		{
			name:     "missing address state",
			identity: f.identity,
			input: PlaceOrderInput{
				StoreID: f.store.ID,
				Items:   []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
				ShippingAddress: models.Address{
					Name: "Asha", Phone: "9999999999", Line1: "12 MG Road",
					City: "Pune", PostalCode: "411001",
				},
			},
		},
		{
			name:     "unknown payment method",
			identity: f.identity,
			input: PlaceOrderInput{
				StoreID:         f.store.ID,
				Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
				ShippingAddress: validAddress(),
				PaymentMethod:   "upi",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.PlaceOrder(context.Background(), tt.identity, tt.input)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("PlaceOrder error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestPlaceOrderFreeShippingThreshold(t *testing.T) {
	f := newOrderServiceFixture(0)

	result, err := f.service.PlaceOrder(context.Background(), f.identity, PlaceOrderInput{
		StoreID:         f.store.ID,
		Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 4}},
		ShippingAddress: validAddress(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if result.Order.ShippingFee != 0 {
		t.Errorf("ShippingFee = %v, want 0 above threshold", result.Order.ShippingFee)
	}
	if result.Order.Total != 2000 {
		t.Errorf("Total = %v, want 2000", result.Order.Total)
	}
}

func TestPlaceOrderCardPayment(t *testing.T) {
	f := newOrderServiceFixture(0)

	result, err := f.service.PlaceOrder(context.Background(), f.identity, PlaceOrderInput{
		StoreID:         f.store.ID,
		Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if result.Payment == nil || result.Payment.ClientSecret == "" {
		t.Fatalf("expected a payment intent with client secret, got %+v", result.Payment)
	}
	if f.payments.lastParams.AmountRupees != 550 {
		t.Errorf("intent amount = %v, want 550", f.payments.lastParams.AmountRupees)
	}
	if result.Order.StripePaymentIntentID != "pi_test" {
		t.Errorf("order intent id = %q, want pi_test", result.Order.StripePaymentIntentID)
	}
}

func TestPlaceOrderCardWithoutPaymentsClient(t *testing.T) {
	f := newOrderServiceFixture(0)
	f.service.payments = nil

	_, err := f.service.PlaceOrder(context.Background(), f.identity, PlaceOrderInput{
		StoreID:         f.store.ID,
		Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("PlaceOrder error = %v, want ErrValidation", err)
	}
}

func TestPlaceOrderRedeemRetriesOnConcurrentSpend(t *testing.T) {
	f := newOrderServiceFixture(300)
	// First debit loses the race; 200 coins vanish before the re-read.
	f.wallets.drainOnRedeem = 1
	f.wallets.drainAmount = 200

	result, err := f.service.PlaceOrder(context.Background(), f.identity, PlaceOrderInput{
		StoreID:         f.store.ID,
		Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 2}},
		ShippingAddress: validAddress(),
		RedeemCoins:     300,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	order := result.Order
	if order.CoinsRedeemed != 100 {
		t.Errorf("CoinsRedeemed = %d, want 100 after re-quote", order.CoinsRedeemed)
	}
	if order.WalletDiscount != 50 {
		t.Errorf("WalletDiscount = %v, want 50", order.WalletDiscount)
	}
	if order.Total != 1000 {
		t.Errorf("Total = %v, want 1000", order.Total)
	}
	if f.wallets.wallet.Coins != 0 {
		t.Errorf("wallet balance = %d, want 0", f.wallets.wallet.Coins)
	}

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Total != 1000 || stored.CoinsRedeemed != 100 {
		t.Errorf("stored order = total %v coins %d, want 1000/100", stored.Total, stored.CoinsRedeemed)
	}
}

func TestPlaceOrderRedeemFallsBackAfterRetryBudget(t *testing.T) {
	f := newOrderServiceFixture(300)
	// Every attempt loses the race until the budget runs out.
	f.wallets.drainOnRedeem = maxRedeemAttempts + 1
	f.wallets.drainAmount = 0

	result, err := f.service.PlaceOrder(context.Background(), f.identity, PlaceOrderInput{
		StoreID:         f.store.ID,
		Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 2}},
		ShippingAddress: validAddress(),
		RedeemCoins:     300,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if result.Order.CoinsRedeemed != 0 {
		t.Errorf("CoinsRedeemed = %d, want 0 after fallback", result.Order.CoinsRedeemed)
	}
	if result.Order.Total != 1050 {
		t.Errorf("Total = %v, want full 1050 after fallback", result.Order.Total)
	}
}

func TestOrderLifecycleTransitions(t *testing.T) {
	f := newOrderServiceFixture(0)
	ctx := context.Background()

	result, err := f.service.PlaceOrder(ctx, f.identity, PlaceOrderInput{
		StoreID:         f.store.ID,
		Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 2}},
		ShippingAddress: validAddress(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	orderID := result.Order.ID

	if _, err := f.service.Confirm(ctx, f.store.ID, orderID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	order, err := f.service.Ship(ctx, f.store.ID, orderID, ShipmentInput{
		TrackingNumber: "AWB123", Carrier: "delhivery",
	})
	if err != nil {
		t.Fatalf("Ship: %v", err)
	}
	if order.Carrier != "Delhivery" {
		t.Errorf("Carrier = %q, want Delhivery", order.Carrier)
	}
	if order.TrackingURL == "" {
		t.Errorf("expected a tracking URL for a known carrier")
	}

	order, err = f.service.Deliver(ctx, f.store.ID, orderID)
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	// Total 1050 earns 1 coin per full 100 rupees.
	if order.CoinsEarned != 10 {
		t.Errorf("CoinsEarned = %d, want 10", order.CoinsEarned)
	}
	if f.wallets.wallet.Coins != 10 {
		t.Errorf("wallet balance = %d, want 10 after delivery credit", f.wallets.wallet.Coins)
	}

	// Delivered orders cannot be cancelled.
	if _, err := f.service.Cancel(ctx, f.store.ID, orderID); !errors.Is(err, db.ErrInvalidStatusTransition) {
		t.Errorf("Cancel after delivery = %v, want ErrInvalidStatusTransition", err)
	}

	var kinds []string
	for _, call := range f.emails.calls {
		kinds = append(kinds, call.kind)
	}
	want := []string{"confirmation", "shipped", "delivered"}
	if len(kinds) != len(want) {
		t.Fatalf("email calls = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("email call %d = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestOrderTransitionsScopedToStore(t *testing.T) {
	f := newOrderServiceFixture(0)
	ctx := context.Background()

	result, err := f.service.PlaceOrder(ctx, f.identity, PlaceOrderInput{
		StoreID:         f.store.ID,
		Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
		ShippingAddress: validAddress(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if _, err := f.service.Confirm(ctx, uuid.New(), result.Order.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Confirm from other store = %v, want ErrNotFound", err)
	}
}

func TestGetForCustomerOwnership(t *testing.T) {
	f := newOrderServiceFixture(0)
	ctx := context.Background()

	result, err := f.service.PlaceOrder(ctx, f.identity, PlaceOrderInput{
		StoreID:         f.store.ID,
		Items:           []OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
		ShippingAddress: validAddress(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if _, err := f.service.GetForCustomer(ctx, f.identity, result.Order.ID); err != nil {
		t.Errorf("owner fetch failed: %v", err)
	}

	stranger := &auth.Identity{UserID: uuid.New(), Email: "other@example.com"}
	if _, err := f.service.GetForCustomer(ctx, stranger, result.Order.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("stranger fetch = %v, want ErrNotFound", err)
	}
}

func TestEarnedCoins(t *testing.T) {
	tests := []struct {
		total float64
		want  int
	}{
		{total: 0, want: 0},
		{total: 99.99, want: 0},
		{total: 100, want: 1},
		{total: 1050, want: 10},
		{total: -10, want: 0},
	}
	for _, tt := range tests {
		if got := earnedCoins(tt.total); got != tt.want {
			t.Errorf("earnedCoins(%v) = %d, want %d", tt.total, got, tt.want)
		}
	}
}
