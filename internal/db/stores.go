package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarhq/bazaar/internal/crypto"
	"github.com/bazaarhq/bazaar/internal/models"
)

// StoreStore persists seller stores. Email provider API keys are encrypted
// at rest and transparently decrypted on read.
type StoreStore struct {
	pool   *pgxpool.Pool
	crypto crypto.Encryptor
}

func NewStoreStore(pool *pgxpool.Pool, encryptor crypto.Encryptor) (*StoreStore, error) {
	if encryptor == nil {
		return nil, fmt.Errorf("encryptor is required")
	}
	return &StoreStore{pool: pool, crypto: encryptor}, nil
}

func (s *StoreStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, owner_email, shipping_flat_fee, free_shipping_min,
		       email_provider, email_from, email_config, created_at, updated_at
		FROM stores WHERE id = $1
	`, id)
	return s.scanStore(row)
}

func (s *StoreStore) Create(ctx context.Context, store *models.Store) error {
	emailConfig, err := s.encodeEmailConfig(store.EmailConfig)
	if err != nil {
		return err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO stores (name, owner_email, shipping_flat_fee, free_shipping_min,
		                    email_provider, email_from, email_config)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, store.Name, store.OwnerEmail, store.ShippingFlatFee, store.FreeShippingMin,
		store.EmailProvider, store.EmailFrom, emailConfig)

	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&store.ID, &createdAt, &updatedAt); err != nil {
		return err
	}
	store.CreatedAt = createdAt.Time
	store.UpdatedAt = updatedAt.Time
	return nil
}

func (s *StoreStore) UpdateShippingSettings(ctx context.Context, id uuid.UUID, flatFee, freeShippingMin float64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE stores SET shipping_flat_fee = $1, free_shipping_min = $2, updated_at = NOW()
		WHERE id = $3
	`, flatFee, freeShippingMin, id)
	return err
}

func (s *StoreStore) UpdateEmailSettings(ctx context.Context, id uuid.UUID, provider, from string, config map[string]any) error {
	encoded, err := s.encodeEmailConfig(config)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE stores SET email_provider = $1, email_from = $2, email_config = $3, updated_at = NOW()
		WHERE id = $4
	`, provider, from, encoded, id)
	return err
}

func (s *StoreStore) scanStore(row rowScanner) (*models.Store, error) {
	var (
		store       models.Store
		emailConfig []byte
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&store.ID, &store.Name, &store.OwnerEmail, &store.ShippingFlatFee,
		&store.FreeShippingMin, &store.EmailProvider, &store.EmailFrom, &emailConfig,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	store.CreatedAt = createdAt.Time
	store.UpdatedAt = updatedAt.Time

	if len(emailConfig) > 0 {
		decoded := map[string]any{}
		if err := json.Unmarshal(emailConfig, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode store email config: %w", err)
		}
		store.EmailConfig = s.decryptAPIKey(decoded)
	}

	return &store, nil
}

func (s *StoreStore) encodeEmailConfig(config map[string]any) ([]byte, error) {
	if config == nil {
		return nil, nil
	}

	encrypted := make(map[string]any, len(config))
	for k, v := range config {
		encrypted[k] = v
	}
	if apiKey, ok := encrypted["api_key"].(string); ok && apiKey != "" {
		sealed, err := s.crypto.Encrypt(apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt email api key: %w", err)
		}
		encrypted["api_key"] = sealed
	}

	payload, err := json.Marshal(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to encode store email config: %w", err)
	}
	return payload, nil
}

func (s *StoreStore) decryptAPIKey(config map[string]any) map[string]any {
	if apiKey, ok := config["api_key"].(string); ok && apiKey != "" {
		if decrypted, err := s.crypto.Decrypt(apiKey); err == nil {
			config["api_key"] = decrypted
		}
	}
	return config
}
