package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/checkout"
	"github.com/bazaarhq/bazaar/internal/db"
	"github.com/bazaarhq/bazaar/internal/logging"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/observability"
	"github.com/bazaarhq/bazaar/internal/payments"
	"github.com/bazaarhq/bazaar/internal/shipping"
)

const (
	// maxRedeemAttempts bounds the re-quote loop when a concurrent spend
	// invalidates the wallet balance between quote and debit.
	maxRedeemAttempts = 3

	// earnRateRupees is how much order total earns one wallet coin.
	earnRateRupees = 100

	defaultListLimit = 50
)

type OrderService struct {
	orders      orderStore
	products    productStore
	stores      storeStore
	wallets     walletStore
	returns     returnStore
	shipping    *shipping.Calculator
	payments    PaymentClient
	emailSender OrderEmailSender
	logger      *slog.Logger
}

func NewOrderService(
	orders orderStore,
	products productStore,
	stores storeStore,
	wallets walletStore,
	returns returnStore,
	shippingCalc *shipping.Calculator,
	paymentsClient PaymentClient,
	emailSender OrderEmailSender,
	logger *slog.Logger,
) *OrderService {
	if emailSender == nil {
		emailSender = noopOrderEmailSender{}
	}

	return &OrderService{
		orders:      orders,
		products:    products,
		stores:      stores,
		wallets:     wallets,
		returns:     returns,
		shipping:    shippingCalc,
		payments:    paymentsClient,
		emailSender: emailSender,
		logger:      logger,
	}
}

func (s *OrderService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type PlaceOrderInput struct {
	StoreID         uuid.UUID        `json:"store_id"`
	Items           []OrderItemInput `json:"items"`
	ShippingAddress models.Address   `json:"shipping_address"`
	PaymentMethod   string           `json:"payment_method"`
	RedeemCoins     int              `json:"redeem_coins"`

	// Guest checkout only; ignored for authenticated customers.
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
}

type PlaceOrderResult struct {
	Order   *models.Order    `json:"order"`
	Payment *payments.Intent `json:"payment,omitempty"`
}

// PlaceOrder validates and prices a cart, persists the order, debits the
// wallet, and opens a payment intent for card checkout. Prices always come
// from the catalog, never from the client.
func (s *OrderService) PlaceOrder(ctx context.Context, identity *auth.Identity, input PlaceOrderInput) (*PlaceOrderResult, error) {
	span := sentry.StartSpan(
		ctx,
		"service.order.place",
		sentry.WithOpName("service.order"),
		sentry.WithDescription("PlaceOrder"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := s.loggerFromContext(ctx)
	meter := observability.MeterFromContext(ctx)
	meter.SetAttributes(attribute.String("component", "order_service"))

	method, err := paymentMethodFromInput(input.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if method == models.PaymentCard && s.payments == nil {
		return nil, Invalidf("card payments are not enabled")
	}

	customerEmail, customerName, err := resolveCustomer(identity, input)
	if err != nil {
		return nil, err
	}
	if err := validateShippingAddress(input.ShippingAddress); err != nil {
		return nil, err
	}

	requestedCoins := input.RedeemCoins
	if requestedCoins > 0 && identity == nil {
		return nil, Invalidf("wallet redemption requires an account")
	}
	if requestedCoins < 0 {
		requestedCoins = 0
	}

	store, err := s.stores.GetByID(ctx, input.StoreID)
	if err != nil {
		return nil, err
	}

	items, lines, err := s.priceCart(ctx, input.StoreID, input.Items)
	if err != nil {
		return nil, err
	}

	var subtotal float64
	for _, line := range lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}
	settings := shipping.Settings{
		FlatFee:         store.ShippingFlatFee,
		FreeShippingMin: store.FreeShippingMin,
	}
	shippingFee := s.shipping.Fee(settings, subtotal, input.ShippingAddress.State)

	var wallet *models.Wallet
	walletBalance := 0
	if requestedCoins > 0 {
		wallet, err = s.wallets.GetOrCreateByUser(ctx, identity.UserID)
		if err != nil {
			return nil, err
		}
		walletBalance = wallet.Coins
	}

	quote := checkout.Compute(lines, shippingFee, walletBalance, requestedCoins)

	order := &models.Order{
		StoreID:         input.StoreID,
		CustomerEmail:   customerEmail,
		CustomerName:    customerName,
		Items:           items,
		ShippingAddress: addressCopy(input.ShippingAddress),
		Subtotal:        quote.Subtotal,
		ShippingFee:     quote.ShippingFee,
		CoinsRedeemed:   quote.SafeRedeemCoins,
		WalletDiscount:  quote.WalletDiscount,
		Total:           quote.TotalAfterWallet,
		PaymentMethod:   method,
		PaymentStatus:   models.PaymentPending,
		Status:          models.StatusPlaced,
	}
	if identity != nil {
		order.UserID = identity.UserID
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if quote.SafeRedeemCoins > 0 {
		quote, err = s.applyRedemption(ctx, order, identity.UserID, wallet.ID, lines, shippingFee, requestedCoins, quote)
		if err != nil {
			return nil, err
		}
		order.CoinsRedeemed = quote.SafeRedeemCoins
		order.WalletDiscount = quote.WalletDiscount
		order.Total = quote.TotalAfterWallet
	}

	result := &PlaceOrderResult{Order: order}
	if method == models.PaymentCard && order.Total > 0 {
		intent, err := s.payments.CreateIntent(ctx, payments.IntentParams{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			StoreID:       order.StoreID,
			AmountRupees:  order.Total,
			CustomerEmail: order.CustomerEmail,
		})
		if err != nil {
			return nil, err
		}
		if err := s.orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
			return nil, err
		}
		order.StripePaymentIntentID = intent.ID
		result.Payment = intent
	}

	meter.Count("checkout.order_placed", 1, sentry.WithAttributes(
		attribute.String("payment_method", string(method)),
		attribute.Bool("guest", order.IsGuest()),
	))
	logger.Info("order placed",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"store_id", order.StoreID,
		"total", order.Total,
		"coins_redeemed", order.CoinsRedeemed,
		"payment_method", method,
	)

	if err := s.emailSender.SendOrderConfirmation(ctx, store, order); err != nil {
		logger.Warn("failed to send order confirmation email", "order_id", order.ID, "error", err)
	}

	return result, nil
}

// applyRedemption debits the quoted coins, re-quoting against a fresh
// balance whenever the conditional decrement loses a race. After the retry
// budget the order falls back to no redemption rather than failing checkout.
func (s *OrderService) applyRedemption(
	ctx context.Context,
	order *models.Order,
	userID uuid.UUID,
	walletID uuid.UUID,
	lines []checkout.Line,
	shippingFee float64,
	requestedCoins int,
	quote checkout.Quote,
) (checkout.Quote, error) {
	logger := s.loggerFromContext(ctx)

	for attempt := 0; attempt < maxRedeemAttempts; attempt++ {
		if quote.SafeRedeemCoins == 0 {
			return quote, nil
		}

		err := s.wallets.Redeem(ctx, walletID, quote.SafeRedeemCoins, quote.WalletDiscount, order.ID)
		if err == nil {
			return quote, nil
		}
		if !errors.Is(err, db.ErrInsufficientCoins) {
			return quote, err
		}

		logger.Info("wallet balance moved during checkout, re-quoting",
			"order_id", order.ID, "attempt", attempt+1)

		wallet, err := s.wallets.GetOrCreateByUser(ctx, userID)
		if err != nil {
			return quote, err
		}
		walletID = wallet.ID
		quote = checkout.Compute(lines, shippingFee, wallet.Coins, requestedCoins)
		if err := s.orders.UpdateRedemption(ctx, order.ID, quote.SafeRedeemCoins, quote.WalletDiscount, quote.TotalAfterWallet); err != nil {
			return quote, err
		}
	}

	logger.Warn("wallet redemption retries exhausted, placing order without discount", "order_id", order.ID)
	quote = checkout.Compute(lines, shippingFee, 0, 0)
	if err := s.orders.UpdateRedemption(ctx, order.ID, 0, 0, quote.TotalAfterWallet); err != nil {
		return quote, err
	}
	return quote, nil
}

func (s *OrderService) priceCart(ctx context.Context, storeID uuid.UUID, items []OrderItemInput) ([]models.OrderItem, []checkout.Line, error) {
	if len(items) == 0 {
		return nil, nil, Invalidf("cart must not be empty")
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, nil, Invalidf("cart item is missing a product id")
		}
		if item.Quantity < 1 {
			return nil, nil, Invalidf("cart item quantity must be at least 1")
		}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, err
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	lines := make([]checkout.Line, 0, len(items))
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok || product.StoreID != storeID {
			return nil, nil, Invalidf("product %s is not available in this store", item.ProductID)
		}
		if !product.Active {
			return nil, nil, Invalidf("product %q is no longer available", product.Name)
		}
		if product.Stock < item.Quantity {
			return nil, nil, Invalidf("product %q has only %d in stock", product.Name, product.Stock)
		}

		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.UnitPrice,
			Quantity:  item.Quantity,
		})
		lines = append(lines, checkout.Line{
			UnitPrice: product.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	return orderItems, lines, nil
}

// GetForCustomer loads an order, including its return requests, for the
// customer who owns it.
func (s *OrderService) GetForCustomer(ctx context.Context, identity *auth.Identity, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if identity == nil || !order.OwnedBy(identity.UserID, identity.Email) {
		return nil, db.ErrNotFound
	}

	returns, err := s.returns.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Returns = returns
	return order, nil
}

func (s *OrderService) ListForCustomer(ctx context.Context, identity *auth.Identity) ([]*models.Order, error) {
	if identity == nil {
		return nil, db.ErrNotFound
	}
	return s.orders.ListByUser(ctx, identity.UserID, defaultListLimit)
}

func (s *OrderService) ListForStore(ctx context.Context, storeID uuid.UUID) ([]*models.Order, error) {
	return s.orders.ListByStore(ctx, storeID, defaultListLimit)
}

// Confirm moves a placed order to confirmed on behalf of its seller.
func (s *OrderService) Confirm(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	if _, err := s.storeOrder(ctx, storeID, orderID); err != nil {
		return nil, err
	}
	if err := s.orders.MarkConfirmed(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, orderID)
}

type ShipmentInput struct {
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
}

// Ship moves a confirmed order to shipped and notifies the customer with
// tracking details.
func (s *OrderService) Ship(ctx context.Context, storeID, orderID uuid.UUID, input ShipmentInput) (*models.Order, error) {
	if _, err := s.storeOrder(ctx, storeID, orderID); err != nil {
		return nil, err
	}

	carrier := shipping.NormalizeCarrierName(input.Carrier)
	trackingNumber := strings.TrimSpace(input.TrackingNumber)
	trackingURL := shipping.BuildTrackingURL(carrier, trackingNumber)

	if err := s.orders.MarkShipped(ctx, orderID, trackingNumber, trackingURL, carrier); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, order, s.emailSender.SendOrderShipped)
	return order, nil
}

// Deliver moves a shipped order to delivered, credits the earned coins to a
// registered customer's wallet, and sends the delivered email.
func (s *OrderService) Deliver(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.storeOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}

	coinsEarned := earnedCoins(order.Total)
	if order.IsGuest() {
		coinsEarned = 0
	}

	if err := s.orders.MarkDelivered(ctx, orderID, coinsEarned); err != nil {
		return nil, err
	}

	if coinsEarned > 0 {
		wallet, err := s.wallets.GetOrCreateByUser(ctx, order.UserID)
		if err != nil {
			return nil, err
		}
		if err := s.wallets.Earn(ctx, wallet.ID, coinsEarned, checkout.CoinsToRupees(coinsEarned), orderID); err != nil {
			return nil, err
		}
	}

	order, err = s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, order, s.emailSender.SendOrderDelivered)
	return order, nil
}

// Cancel cancels an order that has not shipped yet.
func (s *OrderService) Cancel(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	if _, err := s.storeOrder(ctx, storeID, orderID); err != nil {
		return nil, err
	}
	if err := s.orders.MarkCancelled(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, orderID)
}

// storeOrder loads an order and hides it from sellers of other stores.
func (s *OrderService) storeOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.StoreID != storeID {
		return nil, db.ErrNotFound
	}
	return order, nil
}

func (s *OrderService) notify(ctx context.Context, order *models.Order, send func(context.Context, *models.Store, *models.Order) error) {
	store, err := s.stores.GetByID(ctx, order.StoreID)
	if err != nil {
		s.loggerFromContext(ctx).Warn("failed to load store for order email", "order_id", order.ID, "error", err)
		return
	}
	if err := send(ctx, store, order); err != nil {
		s.loggerFromContext(ctx).Warn("failed to send order email", "order_id", order.ID, "error", err)
	}
}

func earnedCoins(total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(total / earnRateRupees))
}

func paymentMethodFromInput(raw string) (models.PaymentMethod, error) {
	switch models.PaymentMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case "", models.PaymentCOD:
		return models.PaymentCOD, nil
	case models.PaymentCard:
		return models.PaymentCard, nil
	default:
		return "", Invalidf("payment method must be cod or card")
	}
}

func resolveCustomer(identity *auth.Identity, input PlaceOrderInput) (string, string, error) {
	if identity != nil {
		return identity.Email, identity.Name, nil
	}

	email := strings.TrimSpace(input.CustomerEmail)
	name := strings.TrimSpace(input.CustomerName)
	if email == "" || !strings.Contains(email, "@") {
		return "", "", Invalidf("guest checkout requires a valid email")
	}
	if name == "" {
		return "", "", Invalidf("guest checkout requires a name")
	}
	return email, name, nil
}

func validateShippingAddress(addr models.Address) error {
	required := map[string]string{
		"name":        addr.Name,
		"phone":       addr.Phone,
		"line1":       addr.Line1,
		"city":        addr.City,
		"state":       addr.State,
		"postal_code": addr.PostalCode,
	}
	for _, field := range []string{"name", "phone", "line1", "city", "state", "postal_code"} {
		if strings.TrimSpace(required[field]) == "" {
			return Invalidf("shipping address is missing %s", field)
		}
	}
	return nil
}

func addressCopy(addr models.Address) *models.Address {
	copied := addr
	return &copied
}
