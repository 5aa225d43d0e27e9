package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarhq/bazaar/internal/models"
)

var (
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrNotFound                = errors.New("not found")
)

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `
	id, order_number, store_id, user_id, customer_email, customer_name,
	items, shipping_address, subtotal, shipping_fee, coins_redeemed,
	wallet_discount, total, coins_earned, coupon_applied, payment_method,
	payment_status, paid, stripe_payment_intent_id, tracking_number,
	tracking_url, carrier, status, created_at, paid_at, confirmed_at,
	shipped_at, delivered_at, cancelled_at`

func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}

	var addressJSON []byte
	if order.ShippingAddress != nil {
		addressJSON, err = json.Marshal(order.ShippingAddress)
		if err != nil {
			return fmt.Errorf("failed to encode shipping address: %w", err)
		}
	}

	userID := pgtype.UUID{Bytes: order.UserID, Valid: order.UserID != uuid.Nil}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO orders (
			store_id, user_id, customer_email, customer_name, items,
			shipping_address, subtotal, shipping_fee, coins_redeemed,
			wallet_discount, total, coins_earned, coupon_applied,
			payment_method, payment_status, paid, stripe_payment_intent_id,
			status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, order_number, created_at
	`,
		order.StoreID, userID, order.CustomerEmail, order.CustomerName, itemsJSON,
		addressJSON, order.Subtotal, order.ShippingFee, order.CoinsRedeemed,
		order.WalletDiscount, order.Total, order.CoinsEarned, order.CouponApplied,
		string(order.PaymentMethod), string(order.PaymentStatus), order.Paid,
		nullText(order.StripePaymentIntentID), string(order.Status),
	)

	var createdAt pgtype.Timestamptz
	if err := row.Scan(&order.ID, &order.OrderNumber, &createdAt); err != nil {
		return err
	}
	order.CreatedAt = createdAt.Time
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, orderID)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+orderColumns+` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (s *OrderStore) ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+orderColumns+` FROM orders
		WHERE store_id = $1 ORDER BY created_at DESC LIMIT $2
	`, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// UpdateRedemption rewrites the wallet portion of a freshly placed order
// after a redeem retry settled on a different quote. Only placed orders are
// eligible; anything further along keeps its numbers.
func (s *OrderStore) UpdateRedemption(ctx context.Context, orderID uuid.UUID, coinsRedeemed int, walletDiscount, total float64) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE orders SET coins_redeemed = $2, wallet_discount = $3, total = $4
		WHERE id = $1 AND status = 'placed'
	`, orderID, coinsRedeemed, walletDiscount, total)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected placed", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) SetPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE orders SET stripe_payment_intent_id = $2 WHERE id = $1
	`, orderID, nullText(paymentIntentID))
	return err
}

func (s *OrderStore) MarkConfirmed(ctx context.Context, orderID uuid.UUID) error {
	return s.transition(ctx, `
		UPDATE orders SET status = 'confirmed', confirmed_at = NOW()
		WHERE id = $1 AND status = 'placed'
	`, "placed", orderID)
}

func (s *OrderStore) MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber, trackingURL, carrier string) error {
	query := `
		UPDATE orders
		SET status = 'shipped', tracking_number = $2, tracking_url = $3,
		    carrier = $4, shipped_at = NOW()
		WHERE id = $1 AND status = 'confirmed'
	`
	cmdTag, err := s.pool.Exec(ctx, query, orderID, nullText(trackingNumber), nullText(trackingURL), nullText(carrier))
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected confirmed", ErrInvalidStatusTransition)
	}
	return nil
}

// MarkDelivered stamps delivery and records the coins the order earns;
// crediting the wallet is the caller's responsibility.
func (s *OrderStore) MarkDelivered(ctx context.Context, orderID uuid.UUID, coinsEarned int) error {
	query := `
		UPDATE orders SET status = 'delivered', coins_earned = $2, delivered_at = NOW()
		WHERE id = $1 AND status = 'shipped'
	`
	cmdTag, err := s.pool.Exec(ctx, query, orderID, coinsEarned)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected shipped", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) MarkCancelled(ctx context.Context, orderID uuid.UUID) error {
	query := `
		UPDATE orders SET status = 'cancelled', cancelled_at = NOW()
		WHERE id = $1 AND status IN ('placed', 'confirmed')
	`
	cmdTag, err := s.pool.Exec(ctx, query, orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected placed/confirmed", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {
	query := `
		UPDATE orders
		SET paid = TRUE, payment_status = 'paid', stripe_payment_intent_id = $2, paid_at = NOW()
		WHERE id = $1 AND payment_status IN ('pending', 'failed')
	`
	cmdTag, err := s.pool.Exec(ctx, query, orderID, nullText(paymentIntentID))
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected pending/failed payment", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE orders SET payment_status = 'failed'
		WHERE id = $1 AND payment_status = 'pending'
	`, orderID)
	return err
}

// DistinctCustomerEmails returns the unique, non-empty customer emails of a
// store's orders, for campaign recipient lists.
func (s *OrderStore) DistinctCustomerEmails(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT customer_email FROM orders
		WHERE store_id = $1 AND customer_email <> ''
		ORDER BY customer_email
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// LocationStat is one row of the seller location analytics: order volume
// and revenue grouped by shipping destination.
type LocationStat struct {
	City    string  `json:"city"`
	State   string  `json:"state"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

func (s *OrderStore) LocationStats(ctx context.Context, storeID uuid.UUID) ([]LocationStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(shipping_address->>'city', ''),
		       COALESCE(shipping_address->>'state', ''),
		       COUNT(*),
		       COALESCE(SUM(total), 0)
		FROM orders
		WHERE store_id = $1 AND status <> 'cancelled' AND shipping_address IS NOT NULL
		GROUP BY 1, 2
		ORDER BY COUNT(*) DESC, 1, 2
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []LocationStat
	for rows.Next() {
		var stat LocationStat
		if err := rows.Scan(&stat.City, &stat.State, &stat.Orders, &stat.Revenue); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func (s *OrderStore) transition(ctx context.Context, query, expected string, orderID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, query, orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected %s", ErrInvalidStatusTransition, expected)
	}
	return nil
}

func scanOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order           models.Order
		userID          pgtype.UUID
		itemsJSON       []byte
		addressJSON     []byte
		paymentMethod   string
		paymentStatus   string
		paymentIntentID pgtype.Text
		trackingNumber  pgtype.Text
		trackingURL     pgtype.Text
		carrier         pgtype.Text
		status          string
		createdAt       pgtype.Timestamptz
		paidAt          pgtype.Timestamptz
		confirmedAt     pgtype.Timestamptz
		shippedAt       pgtype.Timestamptz
		deliveredAt     pgtype.Timestamptz
		cancelledAt     pgtype.Timestamptz
	)

	if err := row.Scan(
		&order.ID, &order.OrderNumber, &order.StoreID, &userID,
		&order.CustomerEmail, &order.CustomerName, &itemsJSON, &addressJSON,
		&order.Subtotal, &order.ShippingFee, &order.CoinsRedeemed,
		&order.WalletDiscount, &order.Total, &order.CoinsEarned,
		&order.CouponApplied, &paymentMethod, &paymentStatus, &order.Paid,
		&paymentIntentID, &trackingNumber, &trackingURL, &carrier, &status,
		&createdAt, &paidAt, &confirmedAt, &shippedAt, &deliveredAt, &cancelledAt,
	); err != nil {
		return nil, err
	}

	if userID.Valid {
		order.UserID = uuid.UUID(userID.Bytes)
	}
	order.PaymentMethod = models.PaymentMethod(paymentMethod)
	order.PaymentStatus = models.PaymentStatus(paymentStatus)
	order.Status = models.OrderStatus(status)
	if paymentIntentID.Valid {
		order.StripePaymentIntentID = paymentIntentID.String
	}
	if trackingNumber.Valid {
		order.TrackingNumber = trackingNumber.String
	}
	if trackingURL.Valid {
		order.TrackingURL = trackingURL.String
	}
	if carrier.Valid {
		order.Carrier = carrier.String
	}
	order.CreatedAt = createdAt.Time
	if paidAt.Valid {
		order.PaidAt = paidAt.Time
	}
	if confirmedAt.Valid {
		order.ConfirmedAt = confirmedAt.Time
	}
	if shippedAt.Valid {
		order.ShippedAt = shippedAt.Time
	}
	if deliveredAt.Valid {
		order.DeliveredAt = deliveredAt.Time
	}
	if cancelledAt.Valid {
		order.CancelledAt = cancelledAt.Time
	}

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, fmt.Errorf("failed to decode order items: %w", err)
		}
	}
	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to decode shipping address: %w", err)
		}
	}

	return &order, nil
}

func nullText(value string) pgtype.Text {
	return pgtype.Text{String: value, Valid: value != ""}
}
