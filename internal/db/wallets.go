package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarhq/bazaar/internal/models"
)

// ErrInsufficientCoins means a conditional debit found fewer coins than
// requested: the balance changed since it was read. Callers should re-read
// and re-quote rather than fail outright.
var ErrInsufficientCoins = errors.New("insufficient wallet coins")

type WalletStore struct {
	pool *pgxpool.Pool
}

func NewWalletStore(pool *pgxpool.Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// GetOrCreateByUser returns the user's wallet, creating an empty one on
// first access. Creation is idempotent under concurrency: the insert is a
// no-op when the unique user_id constraint is already satisfied.
func (s *WalletStore) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO wallets (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, coins, bonus_claimed, created_at, updated_at
		FROM wallets WHERE user_id = $1
	`, userID)
	return scanWallet(row)
}

// GrantWelcomeBonus credits the one-time signup bonus. Repeat calls are
// no-ops; the returned wallet always reflects the current balance.
func (s *WalletStore) GrantWelcomeBonus(ctx context.Context, userID uuid.UUID, coins int) (*models.Wallet, error) {
	wallet, err := s.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, `
		UPDATE wallets SET coins = coins + $1, bonus_claimed = TRUE, updated_at = NOW()
		WHERE id = $2 AND NOT bonus_claimed
	`, coins, wallet.ID)
	if err != nil {
		return nil, err
	}

	if cmdTag.RowsAffected() > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO wallet_transactions (wallet_id, type, coins, rupees, note)
			VALUES ($1, 'earn', $2, $3, 'welcome bonus')
		`, wallet.ID, coins, float64(coins)*0.5)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.GetOrCreateByUser(ctx, userID)
}

// Redeem debits coins with a conditional decrement so concurrent
// redemptions cannot overdraw: the update only applies while the balance
// still covers the debit, and the REDEEM transaction row commits with it.
func (s *WalletStore) Redeem(ctx context.Context, walletID uuid.UUID, coins int, rupees float64, orderID uuid.UUID) error {
	if coins <= 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, `
		UPDATE wallets SET coins = coins - $1, updated_at = NOW()
		WHERE id = $2 AND coins >= $1
	`, coins, walletID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrInsufficientCoins
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO wallet_transactions (wallet_id, type, coins, rupees, order_id)
		VALUES ($1, 'redeem', $2, $3, $4)
	`, walletID, coins, rupees, nullUUID(orderID))
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Earn credits coins together with an EARN transaction row.
func (s *WalletStore) Earn(ctx context.Context, walletID uuid.UUID, coins int, rupees float64, orderID uuid.UUID) error {
	if coins <= 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE wallets SET coins = coins + $1, updated_at = NOW() WHERE id = $2
	`, coins, walletID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO wallet_transactions (wallet_id, type, coins, rupees, order_id)
		VALUES ($1, 'earn', $2, $3, $4)
	`, walletID, coins, rupees, nullUUID(orderID)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func nullUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}

func (s *WalletStore) Transactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, wallet_id, type, coins, rupees, order_id, note, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2
	`, walletID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.WalletTransaction
	for rows.Next() {
		var (
			txn       models.WalletTransaction
			txnType   string
			orderID   pgtype.UUID
			note      pgtype.Text
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&txn.ID, &txn.WalletID, &txnType, &txn.Coins, &txn.Rupees,
			&orderID, &note, &createdAt); err != nil {
			return nil, err
		}
		txn.Type = models.WalletTransactionType(txnType)
		if orderID.Valid {
			txn.OrderID = uuid.UUID(orderID.Bytes)
		}
		if note.Valid {
			txn.Note = note.String
		}
		txn.CreatedAt = createdAt.Time
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

func scanWallet(row rowScanner) (*models.Wallet, error) {
	var (
		wallet    models.Wallet
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&wallet.ID, &wallet.UserID, &wallet.Coins, &wallet.BonusClaimed,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	wallet.CreatedAt = createdAt.Time
	wallet.UpdatedAt = updatedAt.Time
	return &wallet, nil
}
